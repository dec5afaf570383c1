package config

import "fmt"

// ConfigError is returned for a project file that cannot be read or decoded.
type ConfigError struct {
	Err     error
	Path    string
	Setting string
}

func (err ConfigError) Error() string {
	if err.Setting != "" {
		return fmt.Sprintf("project file %s: %s: %v", err.Path, err.Setting, err.Err)
	}

	return fmt.Sprintf("project file %s: %v", err.Path, err.Err)
}

func (err ConfigError) Unwrap() error {
	return err.Err
}
