package helpers

import (
	"io"

	"github.com/gruntwork-io/assetflow/pkg/log"
)

// CreateLogger returns a debug level logger writing plain text to w, io.Discard when w is nil.
func CreateLogger(w io.Writer) log.Logger {
	if w == nil {
		w = io.Discard
	}

	return log.New(log.WithLevel(log.DebugLevel), log.WithOutput(w), log.WithTextFormat(true))
}
