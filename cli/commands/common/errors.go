package common

import (
	"fmt"
	"strings"
)

// FailuresError is returned by a command whose report holds failed assets.
type FailuresError struct {
	Count int
}

func (err FailuresError) Error() string {
	return fmt.Sprintf("%d asset(s) failed, see the summary above", err.Count)
}

// RootManifestError is returned when no root manifest is configured and the working directory
// does not hold exactly one.
type RootManifestError struct {
	Dir   string
	Found []string
}

func (err RootManifestError) Error() string {
	if len(err.Found) == 0 {
		return fmt.Sprintf("no package manifest in %s, pass --manifest", err.Dir)
	}

	return fmt.Sprintf("more than one package manifest in %s, pass --manifest: %s", err.Dir, strings.Join(err.Found, ", "))
}
