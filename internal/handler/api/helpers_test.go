// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/ocms-pages/internal/i18n"
	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/store"
)

const testMaxUpload = 1 << 20

var (
	adminCaller      = model.Caller{Authenticated: true, Profile: model.ProfileAdministrator}
	registeredCaller = model.Caller{Authenticated: true, Profile: model.ProfileRegistered}
)

// testDB creates an in-memory SQLite database with the application schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// testSetup creates a test database and pages handler.
func testSetup(t *testing.T) (*sql.DB, *PagesHandler) {
	t.Helper()
	db := testDB(t)

	langs, err := i18n.NewLanguages([]string{"eng", "fre"})
	if err != nil {
		t.Fatalf("NewLanguages: %v", err)
	}
	mgr := service.NewPageManager(store.NewPageStore(db), langs, nil)
	return db, NewPagesHandler(mgr, testMaxUpload, nil)
}

// testFile is a document attached to a multipart request.
type testFile struct {
	name string
	body string
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withCaller runs the request on behalf of caller.
func withCaller(r *http.Request, caller model.Caller) *http.Request {
	return r.WithContext(middleware.WithCaller(r.Context(), caller))
}

// pageParams returns the URL params of a page route.
func pageParams(language, pageID string) map[string]string {
	return map[string]string{"language": language, "pageId": pageID}
}

// newMultipartRequest builds a multipart POST with fields and an optional
// document under the "data" part.
func newMultipartRequest(t *testing.T, path string, fields map[string][]string, file *testFile, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("WriteField: %v", err)
			}
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile("data", file.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte(file.body)); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return withCaller(req, adminCaller)
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string, caller model.Caller) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return withCaller(req, caller)
}

// newDeleteRequest creates an HTTP DELETE request with optional URL params.
func newDeleteRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return withCaller(req, adminCaller)
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// listResponse is a generic wrapper for API list responses with data and meta.
type listResponse[T any] struct {
	Data []T  `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data
}

// unmarshalList unmarshals a JSON list response body into the specified type.
func unmarshalList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, *Meta) {
	t.Helper()
	var resp listResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

// unmarshalError unmarshals a JSON error response.
func unmarshalError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	return resp.Error
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// createTestPage creates a page through the handler and fails the test
// unless it succeeds.
func createTestPage(t *testing.T, h *PagesHandler, fields map[string][]string, file *testFile) PageResponse {
	t.Helper()
	w := executeHandler(t, h.CreatePage, newMultipartRequest(t, "/api/v1/pages", fields, file, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("CreatePage status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	return unmarshalData[PageResponse](t, w)
}
