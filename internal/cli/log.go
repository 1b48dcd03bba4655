// Package cli implements the xyflow command-line interface.
//
// The commands drive the engine headlessly or interactively:
//   - render: fit a flow to a container and draw it as SVG, PNG, PDF, scene JSON or DOT
//   - layout: position nodes with Graphviz and write the flow back out
//   - inspect: print bounds, the fitted viewport and node and edge tables
//   - replay: apply a TOML gesture script through the interaction machine
//   - view: explore and edit a flow in a bubbletea terminal UI
//   - cache, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/xyflow/config.toml (see internal/config);
// explicit flags win over the file.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs an operation's completion with its elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Replayed 12 steps (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
