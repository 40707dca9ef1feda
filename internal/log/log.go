// Package log builds the slog logger used for progress and diagnostics.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log level and sinks.
type Options struct {
	// Quiet drops everything below error on the terminal sink.
	Quiet bool
	// Debug enables debug records on every sink.
	Debug bool
	// File, when set, receives JSON records through a rotating writer.
	File string
	// Writer is the terminal sink. Defaults to stderr.
	Writer io.Writer
}

// New returns a logger and a func that flushes and closes the file sink.
func New(opts Options) (*slog.Logger, func() error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := charmlog.InfoLevel
	switch {
	case opts.Debug:
		level = charmlog.DebugLevel
	case opts.Quiet:
		level = charmlog.ErrorLevel
	}
	term := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: opts.Debug,
		TimeFormat:      time.TimeOnly,
	})

	if opts.File == "" {
		return slog.New(term), func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename: opts.File,
		MaxSize:  10, // MB
		MaxAge:   30, // days
	}
	fileLevel := slog.LevelInfo
	if opts.Debug {
		fileLevel = slog.LevelDebug
	}
	file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     fileLevel,
		AddSource: opts.Debug,
	})
	return slog.New(tee{term, file}), rotator.Close
}

// tee fans records out to every handler that accepts their level.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// RecoverPanic writes a panic and its stack to a timestamped file in the
// working directory, then runs cleanup. Call it deferred.
func RecoverPanic(name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}
	filename := fmt.Sprintf("tokenchar-panic-%s-%s.log", name, time.Now().Format("20060102-150405"))
	if f, err := os.Create(filename); err == nil {
		fmt.Fprintf(f, "Panic in %s: %v\n\n", name, r)
		fmt.Fprintf(f, "Time: %s\n\n", time.Now().Format(time.RFC3339))
		fmt.Fprintf(f, "Stack Trace:\n%s\n", debug.Stack())
		_ = f.Close()
	}
	if cleanup != nil {
		cleanup()
	}
}
