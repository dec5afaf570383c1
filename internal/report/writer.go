package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Format is the file format of a written log.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension, CSV unless it is ".json".
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatCSV
}

// JSONEntry represents an entry in JSON format.
type JSONEntry struct {
	// Started is the time when the entry started.
	Started time.Time `json:"Started" jsonschema:"required"`
	// Ended is the time when the entry ended.
	Ended time.Time `json:"Ended" jsonschema:"required"`
	// Reason is the reason for the result, if any.
	Reason *string `json:"Reason,omitempty" jsonschema:"enum=canceled,enum=unloadable,enum=dependency failed,enum=not reachable from roots,enum=early exit,enum=deleted by upgrader"`
	// Error is the message of the error that failed the entry.
	Error string `json:"Error,omitempty"`
	// Name is the asset location or file path.
	Name string `json:"Name" jsonschema:"required"`
	// AssetID is the id of the asset, when known.
	AssetID string `json:"AssetID,omitempty"`
	// Path is the asset file path.
	Path string `json:"Path,omitempty"`
	// Stage is the pipeline stage.
	Stage string `json:"Stage" jsonschema:"required,enum=load,enum=migrate,enum=bind,enum=resolve,enum=build"`
	// Result is the result of the entry.
	Result string `json:"Result" jsonschema:"required,enum=migrated,enum=up to date,enum=skipped,enum=failed,enum=built,enum=reused,enum=excluded"`
}

// JSONEntries is a slice of JSONEntry with helper methods.
type JSONEntries []JSONEntry

// ParseJSONEntries parses a JSON log.
func ParseJSONEntries(data []byte) (JSONEntries, error) {
	var entries JSONEntries
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Errorf("failed to parse JSON report: %w", err)
	}

	return entries, nil
}

// Find searches for an entry by name and stage.
func (entries JSONEntries) Find(name string, stage Stage) *JSONEntry {
	for i := range entries {
		if entries[i].Name == name && entries[i].Stage == string(stage) {
			return &entries[i]
		}
	}

	return nil
}

func (entry *Entry) toJSON() JSONEntry {
	entry.mu.RLock()
	defer entry.mu.RUnlock()

	out := JSONEntry{
		Name:    entry.Name,
		AssetID: entry.AssetID,
		Path:    entry.Path,
		Stage:   string(entry.Stage),
		Started: entry.Started,
		Ended:   entry.Ended,
		Result:  string(entry.Result),
	}

	if entry.Reason != nil {
		reason := string(*entry.Reason)
		out.Reason = &reason
	}

	if entry.Err != nil {
		out.Error = entry.Err.Error()
	}

	return out
}

// WriteJSON writes the log to a writer in JSON format.
func (log *Log) WriteJSON(w io.Writer) error {
	entries := log.Entries()
	out := make(JSONEntries, 0, len(entries))

	for _, entry := range entries {
		out = append(out, entry.toJSON())
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	jsonBytes = append(jsonBytes, '\n')

	if _, err := w.Write(jsonBytes); err != nil {
		return errors.New(err)
	}

	return nil
}

// WriteToFile writes the log to path, in the format its extension names.
// The file is written to a temp file first and moved into place.
func (log *Log) WriteToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.New(err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".assetflow-report-*")
	if err != nil {
		return errors.New(err)
	}

	defer os.Remove(tmpFile.Name()) //nolint:errcheck

	switch FormatFromPath(path) {
	case FormatJSON:
		err = log.WriteJSON(tmpFile)
	default:
		err = log.WriteCSV(tmpFile)
	}

	if err != nil {
		tmpFile.Close()
		return errors.Errorf("failed to write report: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Errorf("failed to close report file: %w", err)
	}

	return errors.New(os.Rename(tmpFile.Name(), path))
}

// SchemaValidationError represents a schema validation error with details.
type SchemaValidationError struct {
	Errors []string
}

func (err SchemaValidationError) Error() string {
	return "schema validation failed: " + strings.Join(err.Errors, "; ")
}

// ValidateJSONReport validates a JSON log against the schema.
func ValidateJSONReport(data []byte) error {
	schemaBytes, err := json.Marshal(generateReportSchema())
	if err != nil {
		return errors.Errorf("failed to generate schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Errorf("failed to validate report: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, len(result.Errors()))
		for i, validationErr := range result.Errors() {
			messages[i] = validationErr.String()
		}

		return errors.New(SchemaValidationError{Errors: messages})
	}

	return nil
}

// WriteSchema writes the JSON schema of the log to a writer.
func WriteSchema(w io.Writer) error {
	jsonBytes, err := json.MarshalIndent(generateReportSchema(), "", "  ")
	if err != nil {
		return errors.New(err)
	}

	jsonBytes = append(jsonBytes, '\n')

	if _, err := w.Write(jsonBytes); err != nil {
		return errors.New(err)
	}

	return nil
}

func generateReportSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(&JSONEntry{})
	schema.Description = "Schema for an assetflow report entry"
	schema.Title = "Assetflow Report Entry"

	return &jsonschema.Schema{
		Type:        "array",
		Title:       "Assetflow Report Schema",
		Description: "Array of assetflow report entries",
		Items:       schema,
	}
}
