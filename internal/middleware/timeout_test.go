// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestTimeoutWriter() (*timeoutWriter, *httptest.ResponseRecorder) {
	rr := httptest.NewRecorder()
	return newTimeoutWriter(rr), rr
}

func TestTimeoutMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := Timeout(5 * time.Second)(handler)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body != "OK" {
		t.Errorf("Body = %q, want %q", body, "OK")
	}
}

func TestTimeoutMiddlewareTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	wrapped := Timeout(20 * time.Millisecond)(handler)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if body := rr.Body.String(); !strings.Contains(body, `"timeout"`) {
		t.Errorf("Body = %q, want JSON timeout error", body)
	}
}

func TestTimeoutMiddlewareWithHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	wrapped := Timeout(5 * time.Second)(handler)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if h := rr.Header().Get("X-Custom-Header"); h != "test-value" {
		t.Errorf("X-Custom-Header = %q, want %q", h, "test-value")
	}
}

func TestTimeoutMiddlewarePanicPropagates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	wrapped := Timeout(time.Second)(handler)

	defer func() {
		if p := recover(); p != "boom" {
			t.Errorf("recover() = %v, want boom", p)
		}
	}()
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestTimeoutWriterWriteHeader(t *testing.T) {
	tw, rr := newTestTimeoutWriter()

	tw.WriteHeader(http.StatusOK)
	if !tw.wroteHeader {
		t.Error("wroteHeader should be true after WriteHeader")
	}

	// Second WriteHeader is ignored.
	tw.WriteHeader(http.StatusNotFound)
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestTimeoutWriterWrite(t *testing.T) {
	tw, rr := newTestTimeoutWriter()

	n, err := tw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() = %d, want 5", n)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestTimeoutWriterWriteAfterTimeout(t *testing.T) {
	tw, rr := newTestTimeoutWriter()
	tw.timedOut = true

	if _, err := tw.Write([]byte("late")); !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("Write() error = %v, want ErrHandlerTimeout", err)
	}
	tw.WriteHeader(http.StatusCreated)
	if rr.Body.Len() != 0 || tw.wroteHeader {
		t.Error("late writes should not reach the client")
	}
}

func TestTimeoutMiddlewareLateHeadersStayPrivate(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		<-r.Context().Done()
		for i := 0; i < 100; i++ {
			w.Header().Set("X-Late", "yes")
		}
		<-release
	})

	rr := httptest.NewRecorder()
	rr.Header().Set("X-Request-ID", "abc")
	Timeout(20*time.Millisecond)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	close(release)
	<-finished

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if got := rr.Header().Get("X-Late"); got != "" {
		t.Errorf("X-Late = %q, want it absent from the timeout response", got)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}
}

func TestTimeoutMiddlewareHeadersWithoutWrite(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Only-Header", "set")
	})

	rr := httptest.NewRecorder()
	Timeout(time.Second)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("X-Only-Header"); got != "set" {
		t.Errorf("X-Only-Header = %q, want set", got)
	}
}
