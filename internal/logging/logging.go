// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the process logger and a slog handler that tags
// records with the request id of the HTTP request being served.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ParseLevel maps a configured level name to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing text records in development and JSON
// records otherwise.
func New(w io.Writer, level slog.Level, isDev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if isDev {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(NewRequestHandler(h))
}

// RequestHandler is a slog.Handler that adds a request_id attribute to
// records logged with a request context.
type RequestHandler struct {
	inner slog.Handler
}

// NewRequestHandler wraps inner.
func NewRequestHandler(inner slog.Handler) *RequestHandler {
	return &RequestHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *RequestHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RequestHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := chimw.GetReqID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *RequestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RequestHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *RequestHandler) WithGroup(name string) slog.Handler {
	return &RequestHandler{inner: h.inner.WithGroup(name)}
}
