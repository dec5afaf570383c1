package telemetry

import (
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	noneExporterType    exporterType = "none"
	consoleExporterType exporterType = "console"
)

type exporterType string

func (typ exporterType) orNone() exporterType {
	if typ == "" {
		return noneExporterType
	}

	return typ
}

// UnknownExporterError is returned for an exporter name that is not supported.
type UnknownExporterError struct {
	Kind string
	Name string
}

func (err UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown %s exporter %q, supported: %s, %s", err.Kind, err.Name, noneExporterType, consoleExporterType)
}

func newResource(appName, appVersion string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", appName),
			attribute.String("service.version", appVersion),
		),
	)
	if err != nil {
		return nil, errors.New(err)
	}

	return res, nil
}

// mapToAttributes converts map to attributes to pass to span.SetAttributes.
func mapToAttributes(data map[string]any) []attribute.KeyValue {
	var attrs []attribute.KeyValue

	for k, v := range data {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int64(k, int64(val)))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	return attrs
}
