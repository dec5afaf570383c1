package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gruntwork-io/assetflow/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopTelemeterRunsFunction(t *testing.T) {
	t.Parallel()

	tlm := telemetry.TelemeterFromContext(context.Background())

	called := false
	err := tlm.Collect(context.Background(), "load", map[string]any{"assets": 3}, func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)

	tlm.Count(context.Background(), "cache_hit", 1)
}

func TestConsoleTracerWritesSpans(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := context.Background()
	tlm, err := telemetry.NewTelemeter(ctx, "assetflow", "test", &buf, &telemetry.Options{TraceExporter: "console"})
	require.NoError(t, err)

	expected := errors.New("compile failed")
	err = tlm.Collect(ctx, "build_step", map[string]any{"location": "textures/stone"}, func(context.Context) error {
		return expected
	})
	require.ErrorIs(t, err, expected)
	require.NoError(t, tlm.Shutdown(ctx))

	assert.Contains(t, buf.String(), "build_step")
}

func TestUnknownExporter(t *testing.T) {
	t.Parallel()

	_, err := telemetry.NewTelemeter(context.Background(), "assetflow", "test", &bytes.Buffer{}, &telemetry.Options{MetricExporter: "carrier-pigeon"})
	require.Error(t, err)

	var target telemetry.UnknownExporterError
	assert.ErrorAs(t, err, &target)
}

func TestCleanMetricName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "build_step_duration", telemetry.CleanMetricName("build step__duration"))
	assert.Equal(t, "hash.compute", telemetry.CleanMetricName("-hash.compute-"))
}
