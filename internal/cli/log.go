// Package cli implements the polagram command-line interface.
//
// The commands are built with cobra and share one [CLI] value holding the
// logger and the global flags. Artifacts are written to standard output or
// to the file named by -o; status lines, spinners and logs go to standard
// error.
//
// # Commands
//
//   - parse: diagram source to its JSON tree
//   - view: one view of a diagram through a named or ad-hoc lens
//   - build: every lens of the project for each diagram, concurrently
//   - convert: Mermaid to PlantUML and back
//   - schema, diff: the JSON Schema of trees and patches between them
//   - lens: list and validate the lenses of polagram.toml
//   - cache: clear the cache or print its location
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports pipeline stages and cache hits through charmbracelet/log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Wrote 6 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
