package report

import (
	"fmt"
	"time"

	"github.com/mgutz/ansi"
)

// Colorizer colors the summary output. A disabled colorizer returns its input unchanged.
type Colorizer struct {
	heading  func(string) string
	success  func(string) string
	failure  func(string) string
	neutral  func(string) string
	duration func(string) string
}

// NewColorizer creates a new Colorizer.
func NewColorizer(shouldColor bool) *Colorizer {
	if !shouldColor {
		plain := func(s string) string { return s }

		return &Colorizer{heading: plain, success: plain, failure: plain, neutral: plain, duration: plain}
	}

	return &Colorizer{
		heading:  ansi.ColorFunc("yellow+bh"),
		success:  ansi.ColorFunc("green+bh"),
		failure:  ansi.ColorFunc("red+bh"),
		neutral:  ansi.ColorFunc("blue+bh"),
		duration: ansi.ColorFunc("cyan+bh"),
	}
}

func (c *Colorizer) result(label string) func(string) string {
	switch label {
	case "Failed":
		return c.failure
	case "Skipped", "Excluded", "Up To Date":
		return c.neutral
	default:
		return c.success
	}
}

func (c *Colorizer) colorDuration(duration time.Duration) string {
	if duration < 0 {
		return c.neutral("N/A")
	}

	switch {
	case duration < time.Millisecond:
		return c.duration(fmt.Sprintf("%dµs", duration.Microseconds()))
	case duration < time.Second:
		return c.duration(fmt.Sprintf("%dms", duration.Milliseconds()))
	case duration < time.Minute:
		return c.duration(fmt.Sprintf("%ds", int(duration.Seconds())))
	}

	return c.duration(fmt.Sprintf("%dm", int(duration.Minutes())))
}
