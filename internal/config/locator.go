// Package config loads the assetflow.hcl project file and applies it below flags and
// environment variables.
package config

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

const (
	// ConfigFileName is the project file name.
	ConfigFileName = "assetflow.hcl"

	// maxTraversalDepth prevents infinite loops during directory traversal.
	maxTraversalDepth = 100
)

// FindConfigFile searches startDir and its parents for the project file.
// It returns an empty path when there is none; only filesystem failures are errors.
func FindConfigFile(l log.Logger, startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.New(err)
	}

	for range maxTraversalDepth {
		path := filepath.Join(currentDir, ConfigFileName)

		stat, err := os.Stat(path)

		switch {
		case err == nil && !stat.IsDir():
			l.Debugf("Found project file %s", path)
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", errors.New(err)
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	l.Debugf("No %s found above %s", ConfigFileName, startDir)

	return "", nil
}
