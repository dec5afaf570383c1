package log

import (
	"io"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/sirupsen/logrus"
)

type Option func(logger *logger)

func WithLevel(level Level) Option {
	return func(logger *logger) {
		logger.Logger.SetLevel(level.ToLogrusLevel())
	}
}

func WithOutput(output io.Writer) Option {
	return func(logger *logger) {
		logger.Logger.SetOutput(output)
	}
}

func WithFormatter(formatter logrus.Formatter) Option {
	return func(logger *logger) {
		logger.Logger.SetFormatter(formatter)
	}
}

// WithTextFormat switches to logrus' key=value text output, optionally without colors and timestamps.
func WithTextFormat(disableColors bool) Option {
	return WithFormatter(&logrus.TextFormatter{
		DisableColors:    disableColors,
		DisableTimestamp: disableColors,
		FullTimestamp:    true,
		SortingFunc:      sortFieldKeys,
	})
}

// WithJSONFormat switches to one JSON object per log line.
func WithJSONFormat() Option {
	return WithFormatter(&logrus.JSONFormatter{})
}

// Formats accepted by WithFormat.
const (
	TextFormat = "text"
	JSONFormat = "json"
)

// WithFormat selects the output format by name. Unknown names fail with an error listing the known ones.
func WithFormat(name string, disableColors bool) (Option, error) {
	switch name {
	case "", TextFormat:
		return WithTextFormat(disableColors), nil
	case JSONFormat:
		return WithJSONFormat(), nil
	default:
		return nil, errors.Errorf("invalid log format %q, supported formats: %s, %s", name, TextFormat, JSONFormat)
	}
}
