package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	t.Parallel()

	entry := report.NewEntry("textures/stone", report.StageMigrate)
	assert.Equal(t, "textures/stone", entry.Name)
	assert.Equal(t, report.StageMigrate, entry.Stage)
	assert.False(t, entry.Started.IsZero())
	assert.True(t, entry.Ended.IsZero())
	assert.Empty(t, entry.Result)
	assert.Nil(t, entry.Reason)
}

func TestAddEntry(t *testing.T) {
	t.Parallel()

	log := report.NewLog()

	require.NoError(t, log.AddEntry(report.NewEntry("a", report.StageMigrate)))
	require.NoError(t, log.AddEntry(report.NewEntry("a", report.StageBuild)))

	err := log.AddEntry(report.NewEntry("a", report.StageMigrate))
	require.ErrorAs(t, err, &report.EntryExistsError{})

	err = log.EndEntry("b", report.StageMigrate)
	require.ErrorAs(t, err, &report.EntryNotFoundError{})
}

func TestEndEntryDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage report.Stage
		opts  []report.EndOption
		want  report.Result
	}{
		{name: "migrate defaults to up to date", stage: report.StageMigrate, want: report.ResultUpToDate},
		{name: "build defaults to built", stage: report.StageBuild, want: report.ResultBuilt},
		{name: "resolve defaults to skipped", stage: report.StageResolve, want: report.ResultSkipped},
		{name: "explicit result", stage: report.StageMigrate, opts: []report.EndOption{report.WithResult(report.ResultMigrated)}, want: report.ResultMigrated},
		{name: "error fails", stage: report.StageBuild, opts: []report.EndOption{report.WithError(errors.New("boom"))}, want: report.ResultFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log := report.NewLog()
			require.NoError(t, log.Record("x", tt.stage, tt.opts...))

			entry := log.GetEntry("x", tt.stage)
			require.NotNil(t, entry)
			assert.Equal(t, tt.want, entry.Result)
			assert.False(t, entry.Ended.IsZero())
		})
	}
}

func TestCanceledReason(t *testing.T) {
	t.Parallel()

	log := report.NewLog()
	require.NoError(t, log.Record("x", report.StageMigrate, report.WithError(context.Canceled)))

	entry := log.GetEntry("x", report.StageMigrate)
	require.NotNil(t, entry.Reason)
	assert.Equal(t, report.ReasonCanceled, *entry.Reason)
}

func TestConcurrentRecord(t *testing.T) {
	t.Parallel()

	log := report.NewLog()

	var wg sync.WaitGroup

	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, log.Record(name, report.StageMigrate, report.WithResult(report.ResultMigrated)))
		}()
	}

	wg.Wait()

	assert.Len(t, log.Entries(), 6)
	assert.Equal(t, 6, log.Summarize().Migrated)
}

func newPopulatedLog(t *testing.T) *report.Log {
	t.Helper()

	log := report.NewLog()
	require.NoError(t, log.Record("textures/stone", report.StageMigrate, report.WithResult(report.ResultMigrated), report.WithAsset("id-1", "Assets/textures/stone.afasset")))
	require.NoError(t, log.Record("textures/wood", report.StageMigrate))
	require.NoError(t, log.Record("shaders/water", report.StageBind, report.WithResult(report.ResultSkipped), report.WithReason(report.ReasonUnloadable)))
	require.NoError(t, log.Record("materials/floor", report.StageResolve, report.WithError(errors.New("cycle"))))

	return log
}

func TestSummary(t *testing.T) {
	t.Parallel()

	summary := newPopulatedLog(t).Summarize()
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 1, summary.UpToDate)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.GreaterOrEqual(t, int64(summary.TotalDuration()), int64(0))

	var buf bytes.Buffer
	require.NoError(t, summary.Write(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "Total Assets: 4")
	assert.Contains(t, out, "Migrated: 1")
	assert.Contains(t, out, "Failed: 1")
	assert.NotContains(t, out, "Built")
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	require.NoError(t, summary.Write(&buf, report.NewColorizer(true)))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newPopulatedLog(t).WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Name", "Stage", "AssetID", "Path", "Started", "Ended", "Result", "Reason", "Error"}, records[0])
	assert.Equal(t, "textures/stone", records[1][0])
	assert.Equal(t, "id-1", records[1][2])
	assert.Equal(t, "unloadable", records[3][7])
	assert.Equal(t, "cycle", records[4][8])
}

func TestWriteJSONMatchesSchema(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newPopulatedLog(t).WriteJSON(&buf))
	require.NoError(t, report.ValidateJSONReport(buf.Bytes()))

	entries, err := report.ParseJSONEntries(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	entry := entries.Find("materials/floor", report.StageResolve)
	require.NotNil(t, entry)
	assert.Equal(t, "failed", entry.Result)
	assert.Equal(t, "cycle", entry.Error)
	assert.Nil(t, entries.Find("materials/floor", report.StageBuild))

	err = report.ValidateJSONReport([]byte(`[{"Name": "x", "Stage": "unknown"}]`))
	assert.ErrorAs(t, err, &report.SchemaValidationError{})
}

func TestWriteToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := newPopulatedLog(t)

	jsonPath := filepath.Join(dir, "out", "report.json")
	require.NoError(t, log.WriteToFile(jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, report.ValidateJSONReport(data))

	csvPath := filepath.Join(dir, "report.csv")
	require.NoError(t, log.WriteToFile(csvPath))

	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name,Stage,AssetID")
}

func TestWriteFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newPopulatedLog(t).WriteFailures(&buf))
	assert.Equal(t, "resolve materials/floor: cycle\n", buf.String())
}
