// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout cancels the request context after timeout and answers 503 if the
// handler has not written a response by then. Writes attempted by the
// handler after the deadline fail with http.ErrHandlerTimeout.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicked := make(chan any, 1)
			tw := newTimeoutWriter(w)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				if !tw.wroteHeader {
					tw.copyHeader()
				}
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.wroteHeader {
					WriteAPIError(w, http.StatusServiceUnavailable, "timeout", "Request timeout", nil)
				}
			}
		})
	}
}

// timeoutWriter wraps http.ResponseWriter to track if headers have been
// written. The handler edits a private header map that is copied to the
// real one when the header is sent, so a timeout response never shares a
// map with the still running handler.
type timeoutWriter struct {
	http.ResponseWriter
	h           http.Header
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{ResponseWriter: w, h: w.Header().Clone()}
}

// Header returns the handler's header map.
func (tw *timeoutWriter) Header() http.Header { return tw.h }

// copyHeader replaces the real header map with the handler's. Callers hold mu.
func (tw *timeoutWriter) copyHeader() {
	dst := tw.ResponseWriter.Header()
	clear(dst)
	for k, v := range tw.h {
		dst[k] = v
	}
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.copyHeader()
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.copyHeader()
		tw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}
