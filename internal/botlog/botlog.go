// Package botlog appends stage events to a flat text log file.
package botlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Stage names every pipeline step that gets logged.
type Stage string

const (
	StageLoad     Stage = "load"
	StageSplit    Stage = "split"
	StageEmbed    Stage = "embed"
	StageRetrieve Stage = "retrieve"
	StageAnswer   Stage = "answer"
	StageFeedback Stage = "feedback"
	StageFinal    Stage = "final"
)

// Logger is a best-effort append-only sink: one line per event with
// timestamp, stage and payload. It never fails query processing; if the log
// file cannot be opened the logger degrades to a no-op sink.
type Logger struct {
	logger *log.Logger
	closer io.Closer
}

// Open creates a logger appending to path. Errors are reported once but the
// returned logger is always usable.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{logger: log.New(io.Discard, "", 0)}, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{
		logger: log.New(f, "", log.LstdFlags),
		closer: f,
	}, nil
}

// Discard returns a logger that drops everything, for tests and callers
// that opt out of logging.
func Discard() *Logger {
	return &Logger{logger: log.New(io.Discard, "", 0)}
}

// Event appends one log line for the given stage.
func (l *Logger) Event(stage Stage, format string, args ...any) {
	l.logger.Printf("[%s] %s", stage, fmt.Sprintf(format, args...))
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
