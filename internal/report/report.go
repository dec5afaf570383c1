// Package report collects per-asset results of a load, resolve or build pass and renders
// them as a summary or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gruntwork-io/assetflow/internal/errors"
)

// Log captures the entries of one command invocation. Safe for concurrent use.
type Log struct {
	entries []*Entry
	mu      sync.RWMutex
}

// Entry captures the outcome of one asset at one stage.
type Entry struct {
	Started time.Time
	Ended   time.Time
	Err     error
	Reason  *Reason
	Name    string
	AssetID string
	Path    string
	Stage   Stage
	Result  Result

	mu sync.RWMutex
}

// Stage names the pipeline stage an entry belongs to.
type Stage string

// Result captures the result of an entry.
type Result string

// Reason explains a result that is not self-explanatory.
type Reason string

const (
	StageLoad    Stage = "load"
	StageMigrate Stage = "migrate"
	StageBind    Stage = "bind"
	StageResolve Stage = "resolve"
	StageBuild   Stage = "build"
)

const (
	ResultMigrated Result = "migrated"
	ResultUpToDate Result = "up to date"
	ResultSkipped  Result = "skipped"
	ResultFailed   Result = "failed"
	ResultBuilt    Result = "built"
	ResultReused   Result = "reused"
	ResultExcluded Result = "excluded"
)

const (
	ReasonCanceled         Reason = "canceled"
	ReasonUnloadable       Reason = "unloadable"
	ReasonDependencyFailed Reason = "dependency failed"
	ReasonUnreachable      Reason = "not reachable from roots"
	ReasonEarlyExit        Reason = "early exit"
	ReasonDeleted          Reason = "deleted by upgrader"
)

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{
		entries: make([]*Entry, 0),
	}
}

// NewEntry creates a new entry started now.
func NewEntry(name string, stage Stage) *Entry {
	return &Entry{
		Name:    name,
		Stage:   stage,
		Started: time.Now(),
	}
}

// AddEntry adds an entry to the log.
// If an entry with the same name and stage exists, it returns EntryExistsError.
func (log *Log) AddEntry(entry *Entry) error {
	log.mu.Lock()
	defer log.mu.Unlock()

	if log.find(entry.Name, entry.Stage) != nil {
		return errors.New(EntryExistsError{Name: entry.Name, Stage: entry.Stage})
	}

	log.entries = append(log.entries, entry)

	return nil
}

// GetEntry returns the entry of name at stage, nil when there is none.
func (log *Log) GetEntry(name string, stage Stage) *Entry {
	log.mu.RLock()
	defer log.mu.RUnlock()

	return log.find(name, stage)
}

func (log *Log) find(name string, stage Stage) *Entry {
	for _, entry := range log.entries {
		if entry.Name == name && entry.Stage == stage {
			return entry
		}
	}

	return nil
}

// EndEntry ends an entry.
// If the entry does not exist, it returns EntryNotFoundError.
// The entry is assumed to have succeeded for its stage unless WithResult or WithError says otherwise.
func (log *Log) EndEntry(name string, stage Stage, endOptions ...EndOption) error {
	entry := log.GetEntry(name, stage)
	if entry == nil {
		return errors.New(EntryNotFoundError{Name: name, Stage: stage})
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.Ended = time.Now()
	entry.Result = defaultResult(stage)

	for _, endOption := range endOptions {
		endOption(entry)
	}

	return nil
}

// Record adds an entry and ends it immediately.
func (log *Log) Record(name string, stage Stage, endOptions ...EndOption) error {
	if err := log.AddEntry(NewEntry(name, stage)); err != nil {
		return err
	}

	return log.EndEntry(name, stage, endOptions...)
}

// Entries returns the entries in the order they were added.
func (log *Log) Entries() []*Entry {
	log.mu.RLock()
	defer log.mu.RUnlock()

	return append([]*Entry(nil), log.entries...)
}

// Failures returns the entries that carry an error.
func (log *Log) Failures() []*Entry {
	var failures []*Entry

	for _, entry := range log.Entries() {
		if entry.Error() != nil {
			failures = append(failures, entry)
		}
	}

	return failures
}

// Error returns the error recorded for the entry.
func (entry *Entry) Error() error {
	entry.mu.RLock()
	defer entry.mu.RUnlock()

	return entry.Err
}

func defaultResult(stage Stage) Result {
	switch stage {
	case StageMigrate:
		return ResultUpToDate
	case StageBuild:
		return ResultBuilt
	default:
		return ResultSkipped
	}
}

// EndOption are optional configurations for ending an entry.
type EndOption func(*Entry)

// WithResult sets the result of an entry.
func WithResult(result Result) EndOption {
	return func(entry *Entry) {
		entry.Result = result
	}
}

// WithReason sets the reason of an entry.
func WithReason(reason Reason) EndOption {
	return func(entry *Entry) {
		entry.Reason = &reason
	}
}

// WithError marks the entry failed with err.
func WithError(err error) EndOption {
	return func(entry *Entry) {
		entry.Err = err
		entry.Result = ResultFailed

		if errors.IsCanceled(err) {
			reason := ReasonCanceled
			entry.Reason = &reason
		}
	}
}

// WithAsset sets the asset id and the file path of an entry.
func WithAsset(id, path string) EndOption {
	return func(entry *Entry) {
		entry.AssetID = id
		entry.Path = path
	}
}

// WriteCSV writes the log to a writer in CSV format.
func (log *Log) WriteCSV(w io.Writer) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"Name", "Stage", "AssetID", "Path", "Started", "Ended", "Result", "Reason", "Error"}); err != nil {
		return errors.New(err)
	}

	for _, entry := range log.Entries() {
		if err := csvWriter.Write(entry.row()); err != nil {
			return errors.New(err)
		}
	}

	csvWriter.Flush()

	return errors.New(csvWriter.Error())
}

func (entry *Entry) row() []string {
	entry.mu.RLock()
	defer entry.mu.RUnlock()

	reason := ""
	if entry.Reason != nil {
		reason = string(*entry.Reason)
	}

	errStr := ""
	if entry.Err != nil {
		errStr = entry.Err.Error()
	}

	return []string{
		entry.Name,
		string(entry.Stage),
		entry.AssetID,
		entry.Path,
		entry.Started.Format(time.RFC3339),
		entry.Ended.Format(time.RFC3339),
		string(entry.Result),
		reason,
		errStr,
	}
}

// WriteSummary writes the summary to a writer.
func (log *Log) WriteSummary(w io.Writer, c *Colorizer) error {
	return log.Summarize().Write(w, c)
}

// WriteFailures writes the failures of the log, one per line, prefixed by stage and name.
func (log *Log) WriteFailures(w io.Writer) error {
	for _, entry := range log.Failures() {
		if _, err := fmt.Fprintf(w, "%s %s: %v\n", entry.Stage, entry.Name, entry.Error()); err != nil {
			return errors.New(err)
		}
	}

	return nil
}
