package main

import (
	"context"
	"log/slog"
)

type nullHandler struct{}

// Enabled implements slog.Handler
func (*nullHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

// Handle implements slog.Handler
func (*nullHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

// WithAttrs implements slog.Handler
func (nh *nullHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return nh
}

// WithGroup implements slog.Handler
func (nh *nullHandler) WithGroup(name string) slog.Handler {
	return nh
}

var _ slog.Handler = (*nullHandler)(nil)
