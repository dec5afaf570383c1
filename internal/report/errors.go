package report

import "fmt"

// EntryExistsError is returned when an entry with the same name and stage is already logged.
type EntryExistsError struct {
	Name  string
	Stage Stage
}

func (err EntryExistsError) Error() string {
	return fmt.Sprintf("entry %s already exists for stage %s", err.Name, err.Stage)
}

// EntryNotFoundError is returned when ending an entry that was never added.
type EntryNotFoundError struct {
	Name  string
	Stage Stage
}

func (err EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry %s not found for stage %s", err.Name, err.Stage)
}
