// Package logging configures the charmbracelet/log logger shared by the CLI
// and the dashboard.
package logging

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "taskdeck"

// Options holds configuration for the logger.
type Options struct {
	Level           log.Level
	ReportTimestamp bool
}

// ParseLevel maps a settings value to a level. Unknown values map to Info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// New creates a text logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return log.WithContext(ctx, l)
}

// From returns the logger carried by ctx, or a discarding logger.
func From(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(log.ContextKey).(*log.Logger); ok && l != nil {
		return l
	}
	return Discard()
}
