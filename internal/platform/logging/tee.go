package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// tee sends records to the console and mirrors them into the rolling log
// file. Each side keeps its own level, so the file can hold trace-level wire
// logs while the console stays at info.
type tee struct {
	console slog.Handler
	file    slog.Handler
}

func newTee(console, file slog.Handler) *tee {
	return &tee{console: console, file: file}
}

func (t *tee) Enabled(ctx context.Context, level slog.Level) bool {
	return t.console.Enabled(ctx, level) || t.file.Enabled(ctx, level)
}

// Handle writes to the console first. A failed file write does not stop the
// console record but is reported alongside any console error.
func (t *tee) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var consoleErr error
	if t.console.Enabled(ctx, r.Level) {
		consoleErr = t.console.Handle(ctx, r.Clone())
	}

	if !t.file.Enabled(ctx, r.Level) {
		return consoleErr
	}

	if err := t.file.Handle(ctx, r); err != nil {
		return errors.Join(consoleErr, fmt.Errorf("writing log file: %w", err))
	}

	return consoleErr
}

func (t *tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newTee(t.console.WithAttrs(attrs), t.file.WithAttrs(attrs))
}

func (t *tee) WithGroup(name string) slog.Handler {
	return newTee(t.console.WithGroup(name), t.file.WithGroup(name))
}
