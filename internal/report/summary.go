package report

import (
	"fmt"
	"io"
	"time"

	"github.com/gruntwork-io/assetflow/internal/errors"
)

// Summary formats data from a log for output as a summary.
type Summary struct {
	firstStart *time.Time
	lastEnd    *time.Time

	Total    int
	Migrated int
	UpToDate int
	Skipped  int
	Failed   int
	Built    int
	Reused   int
	Excluded int
}

// Summarize returns a summary of the log.
func (log *Log) Summarize() *Summary {
	entries := log.Entries()

	summary := &Summary{
		Total: len(entries),
	}

	for _, entry := range entries {
		summary.Update(entry)
	}

	return summary
}

// Update counts one entry.
func (s *Summary) Update(entry *Entry) {
	entry.mu.RLock()
	defer entry.mu.RUnlock()

	switch entry.Result {
	case ResultMigrated:
		s.Migrated++
	case ResultUpToDate:
		s.UpToDate++
	case ResultSkipped:
		s.Skipped++
	case ResultFailed:
		s.Failed++
	case ResultBuilt:
		s.Built++
	case ResultReused:
		s.Reused++
	case ResultExcluded:
		s.Excluded++
	}

	if s.firstStart == nil || entry.Started.Before(*s.firstStart) {
		s.firstStart = &entry.Started
	}

	if s.lastEnd == nil || entry.Ended.After(*s.lastEnd) {
		s.lastEnd = &entry.Ended
	}
}

// TotalDuration is the time between the first start and the last end.
func (s *Summary) TotalDuration() time.Duration {
	if s.firstStart == nil || s.lastEnd == nil {
		return 0
	}

	return s.lastEnd.Sub(*s.firstStart)
}

// Write writes the summary to a writer. Zero counters are left out. A nil colorizer writes plain text.
func (s *Summary) Write(w io.Writer, c *Colorizer) error {
	if c == nil {
		c = NewColorizer(false)
	}

	lines := []struct {
		label string
		count int
	}{
		{"Migrated", s.Migrated},
		{"Up To Date", s.UpToDate},
		{"Skipped", s.Skipped},
		{"Built", s.Built},
		{"Reused", s.Reused},
		{"Excluded", s.Excluded},
		{"Failed", s.Failed},
	}

	if _, err := fmt.Fprintf(w, "%s\nTotal Assets: %d\nTotal Duration: %s\n", c.heading("❯❯ Summary"), s.Total, c.colorDuration(s.TotalDuration())); err != nil {
		return errors.New(err)
	}

	for _, line := range lines {
		if line.count == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s: %s\n", line.label, c.result(line.label)(fmt.Sprint(line.count))); err != nil {
			return errors.New(err)
		}
	}

	return nil
}
