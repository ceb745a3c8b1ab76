// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

// multipartOverhead is the allowance for form fields and part headers on
// top of the document itself.
const multipartOverhead = 64 << 10

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 1 << 20

// PagesHandler serves the /api/v1/pages routes.
type PagesHandler struct {
	pages         *service.PageManager
	maxUploadSize int64
	logger        *slog.Logger
}

// NewPagesHandler creates a PagesHandler. Documents larger than
// maxUploadSize bytes are rejected with 413.
func NewPagesHandler(pages *service.PageManager, maxUploadSize int64, logger *slog.Logger) *PagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PagesHandler{pages: pages, maxUploadSize: maxUploadSize, logger: logger}
}

// PageResponse represents a page in API responses. Document bytes are only
// served by the content endpoint.
type PageResponse struct {
	Language      string          `json:"language"`
	PageID        string          `json:"pageId"`
	Format        model.Format    `json:"format"`
	Sections      []model.Section `json:"sections"`
	Status        model.Status    `json:"status"`
	Link          string          `json:"link,omitempty"`
	ContentLength int             `json:"contentLength,omitempty"`
	HasContent    bool            `json:"hasContent"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func pageToResponse(p model.Page) PageResponse {
	resp := PageResponse{
		Language:   p.Identity.Language,
		PageID:     p.Identity.PageID,
		Format:     p.Format,
		Sections:   p.Sections,
		Status:     p.Status,
		Link:       p.Content.Link(),
		HasContent: p.Content.HasData(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if resp.Sections == nil {
		resp.Sections = []model.Section{}
	}
	if resp.HasContent {
		resp.ContentLength = len(p.Content.Data())
	}
	return resp
}

// pageForm is the decoded form of a create or update request.
type pageForm struct {
	language    string
	pageID      string
	newLanguage string
	newPageID   string
	sections    []model.Section
	status      model.Status
	format      model.Format
	link        string
	upload      *service.Upload
	file        multipart.File
}

func (f *pageForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

// CreatePage handles POST /api/v1/pages
func (h *PagesHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parsePageForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	page, err := h.pages.Create(r.Context(), service.CreatePageParams{
		Language: form.language,
		PageID:   form.pageID,
		Sections: form.sections,
		Status:   form.status,
		Format:   form.format,
		Upload:   form.upload,
		Link:     form.link,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteCreated(w, pageToResponse(page))
}

// UpdatePage handles POST /api/v1/pages/{language}/{pageId}
func (h *PagesHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parsePageForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	page, err := h.pages.Update(r.Context(), chi.URLParam(r, "language"), chi.URLParam(r, "pageId"),
		service.UpdatePageParams{
			NewLanguage: form.newLanguage,
			NewPageID:   form.newPageID,
			Sections:    form.sections,
			Status:      form.status,
			Format:      form.format,
			Upload:      form.upload,
			Link:        form.link,
		})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, pageToResponse(page), nil)
}

// DeletePage handles DELETE /api/v1/pages/{language}/{pageId}
func (h *PagesHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id := model.PageIdentity{
		Language: chi.URLParam(r, "language"),
		PageID:   chi.URLParam(r, "pageId"),
	}
	if err := h.pages.Delete(r.Context(), id.Language, id.PageID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, id, nil)
}

// GetPage handles GET /api/v1/pages/{language}/{pageId}
func (h *PagesHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Get(r.Context(), chi.URLParam(r, "language"), chi.URLParam(r, "pageId"),
		middleware.GetCaller(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, pageToResponse(page), nil)
}

// GetPageContent handles GET /api/v1/pages/{language}/{pageId}/content
func (h *PagesHandler) GetPageContent(w http.ResponseWriter, r *http.Request) {
	text, err := h.pages.GetContent(r.Context(), chi.URLParam(r, "language"), chi.URLParam(r, "pageId"),
		middleware.GetCaller(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteText(w, text)
}

// ListPages handles GET /api/v1/pages?language=&section=
func (h *PagesHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var section model.Section
	if raw := strings.TrimSpace(q.Get("section")); raw != "" {
		s, err := model.ParseSection(raw)
		if err != nil {
			WriteBadRequest(w, err.Error(), map[string]string{"section": raw})
			return
		}
		section = s
	}

	pages, err := h.pages.List(r.Context(), strings.TrimSpace(q.Get("language")), section, middleware.GetCaller(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]PageResponse, len(pages))
	for i := range pages {
		resp[i] = pageToResponse(pages[i])
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// ListFormats handles GET /api/v1/pages/config/formats
func (h *PagesHandler) ListFormats(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.pages.Formats(), nil)
}

// ListSections handles GET /api/v1/pages/config/sections
func (h *PagesHandler) ListSections(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.pages.Sections(), nil)
}

// ListStatuses handles GET /api/v1/pages/config/status
func (h *PagesHandler) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.pages.Statuses(), nil)
}

// parsePageForm decodes a multipart (or urlencoded) page form. On failure
// the error response has been written and ok is false.
func (h *PagesHandler) parsePageForm(w http.ResponseWriter, r *http.Request) (form *pageForm, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteRequestTooLarge(w, h.maxUploadSize)
			return nil, false
		}
		WriteBadRequest(w, "Invalid form data", nil)
		return nil, false
	}

	form = &pageForm{
		language:    strings.TrimSpace(r.FormValue("language")),
		pageID:      strings.TrimSpace(r.FormValue("pageId")),
		newLanguage: strings.TrimSpace(r.FormValue("newLanguage")),
		newPageID:   strings.TrimSpace(r.FormValue("newPageId")),
		link:        strings.TrimSpace(r.FormValue("link")),
	}

	details := map[string]string{}
	if raw := strings.TrimSpace(r.FormValue("status")); raw != "" {
		if form.status, err = model.ParseStatus(raw); err != nil {
			details["status"] = err.Error()
		}
	}
	if raw := strings.TrimSpace(r.FormValue("format")); raw != "" {
		if form.format, err = model.ParseFormat(raw); err != nil {
			details["format"] = err.Error()
		}
	}
	if values, present := r.Form["section"]; present {
		form.sections = make([]model.Section, 0, len(values))
		for _, raw := range values {
			if raw = strings.TrimSpace(raw); raw == "" {
				continue
			}
			s, err := model.ParseSection(raw)
			if err != nil {
				details["section"] = err.Error()
				break
			}
			form.sections = append(form.sections, s)
		}
	}
	if len(details) > 0 {
		WriteBadRequest(w, "Invalid page attributes", details)
		return nil, false
	}

	file, header, err := r.FormFile("data")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		WriteBadRequest(w, "Invalid document upload", nil)
		return nil, false
	default:
		if header.Size > h.maxUploadSize {
			_ = file.Close()
			WriteRequestTooLarge(w, h.maxUploadSize)
			return nil, false
		}
		form.file = file
		form.upload = &service.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Body:     file,
		}
	}

	return form, true
}

// writeServiceError maps PageManager errors to HTTP responses.
func (h *PagesHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		WriteForbidden(w, err.Error())
	case errors.Is(err, service.ErrAlreadyExists):
		WriteConflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidLanguage),
		errors.Is(err, service.ErrInvalidPageID),
		errors.Is(err, service.ErrMissingContent),
		errors.Is(err, service.ErrConflictingContent),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrInvalidLink):
		WriteBadRequest(w, err.Error(), nil)
	default:
		h.logger.ErrorContext(r.Context(), "page request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteInternalError(w, "Internal server error")
	}
}
