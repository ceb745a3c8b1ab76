// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the page management rules shared by every transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
)

// PageStore is durable keyed storage of pages. Implementations report a
// missing record with store.ErrNotFound and an occupied identity with
// store.ErrDuplicate.
type PageStore interface {
	Get(ctx context.Context, id model.PageIdentity) (model.Page, error)
	Create(ctx context.Context, p model.Page) (model.Page, error)
	Save(ctx context.Context, p model.Page) (model.Page, error)
	Rename(ctx context.Context, from model.PageIdentity, p model.Page) (model.Page, error)
	Delete(ctx context.Context, id model.PageIdentity) error
	List(ctx context.Context, language string) ([]model.Page, error)
}

// LanguageValidator supplies the currently supported UI languages.
type LanguageValidator interface {
	IsSupported(code string) bool
	Codes() []string
}

// Upload is a document sent by the client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (u *Upload) present() bool {
	return u != nil && u.Size > 0
}

// CreatePageParams holds the input of PageManager.Create. Zero values mean
// "not supplied".
type CreatePageParams struct {
	Language string
	PageID   string
	Sections []model.Section
	Status   model.Status
	Format   model.Format
	Upload   *Upload
	Link     string
}

// UpdatePageParams holds the input of PageManager.Update. Zero values mean
// "not supplied"; a nil Sections leaves the sections alone while an empty
// non-nil slice clears them.
type UpdatePageParams struct {
	NewLanguage string
	NewPageID   string
	Sections    []model.Section
	Status      model.Status
	Format      model.Format
	Upload      *Upload
	Link        string
}

// PageManager validates and applies page operations on a PageStore.
type PageManager struct {
	store  PageStore
	langs  LanguageValidator
	logger *slog.Logger
}

// NewPageManager creates a PageManager. A nil logger uses slog.Default.
func NewPageManager(store PageStore, langs LanguageValidator, logger *slog.Logger) *PageManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageManager{store: store, langs: langs, logger: logger}
}

// Create validates the request and stores a new page.
func (m *PageManager) Create(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	id := model.PageIdentity{Language: arg.Language, PageID: arg.PageID}
	if err := m.checkIdentity(id); err != nil {
		return model.Page{}, err
	}

	format := arg.Format
	link := strings.TrimSpace(arg.Link)
	if link != "" {
		format = model.FormatLink
	}

	hasUpload := arg.Upload.present()
	switch {
	case !hasUpload && link == "":
		return model.Page{}, ErrMissingContent
	case hasUpload && link != "":
		return model.Page{}, ErrConflictingContent
	}

	if format == model.FormatLink && hasUpload {
		return model.Page{}, fmt.Errorf("%w: %s pages take a link, not a document", ErrInvalidFormat, format)
	}

	if hasUpload {
		ext, err := checkExtension(arg.Upload)
		if err != nil {
			return model.Page{}, err
		}
		if format == "" {
			format = ext.Format()
		}
	}
	if link != "" && !util.IsSafeRedirectURL(link) {
		return model.Page{}, fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}

	if _, err := m.store.Get(ctx, id); err == nil {
		return model.Page{}, fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.Page{}, err
	}

	page := newPlaceholderPage(id)
	content, err := readContent(arg.Upload, link)
	if err != nil {
		return model.Page{}, err
	}
	page.Content = content
	page.Format = format
	if arg.Sections != nil {
		page.Sections = dedupeSections(arg.Sections)
	}
	if arg.Status != "" {
		page.Status = arg.Status
	}

	created, err := m.store.Create(ctx, page)
	if err != nil {
		return model.Page{}, translate(err, id)
	}

	m.logger.InfoContext(ctx, "page created",
		"language", id.Language,
		"page_id", id.PageID,
		"format", created.Format,
		"status", created.Status,
	)
	return created, nil
}

// Update applies the supplied changes to an existing page, moving it to a
// new identity when NewLanguage or NewPageID differ from the current one.
func (m *PageManager) Update(ctx context.Context, language, pageID string, arg UpdatePageParams) (model.Page, error) {
	id := model.PageIdentity{Language: language, PageID: pageID}
	if err := m.checkLanguage(language); err != nil {
		return model.Page{}, err
	}

	page, err := m.store.Get(ctx, id)
	if err != nil {
		return model.Page{}, translate(err, id)
	}

	link := strings.TrimSpace(arg.Link)
	hasUpload := arg.Upload.present()
	if hasUpload && link != "" {
		return model.Page{}, ErrConflictingContent
	}

	format := arg.Format
	switch {
	case link != "":
		if !util.IsSafeRedirectURL(link) {
			return model.Page{}, fmt.Errorf("%w: %q", ErrInvalidLink, link)
		}
		format = model.FormatLink
	case hasUpload:
		ext, err := checkExtension(arg.Upload)
		if err != nil {
			return model.Page{}, err
		}
		if format == "" {
			format = ext.Format()
		}
	}

	target := model.PageIdentity{Language: arg.NewLanguage, PageID: arg.NewPageID}
	if target.Language == "" {
		target.Language = id.Language
	}
	if target.PageID == "" {
		target.PageID = id.PageID
	}
	renamed := target != id
	if renamed {
		if err := m.checkIdentity(target); err != nil {
			return model.Page{}, err
		}
	}

	if hasUpload || link != "" {
		content, err := readContent(arg.Upload, link)
		if err != nil {
			return model.Page{}, err
		}
		page.Content = content
	}
	if format != "" {
		page.Format = format
	}
	if !page.FormatMatchesContent() {
		return model.Page{}, fmt.Errorf("%w: %s", ErrInvalidFormat, page.Format)
	}
	if arg.Sections != nil {
		page.Sections = dedupeSections(arg.Sections)
	}
	if arg.Status != "" {
		page.Status = arg.Status
	}

	if !renamed {
		saved, err := m.store.Save(ctx, page)
		if err != nil {
			return model.Page{}, translate(err, id)
		}
		m.logger.InfoContext(ctx, "page updated",
			"language", id.Language,
			"page_id", id.PageID,
		)
		return saved, nil
	}

	if _, err := m.store.Get(ctx, target); err == nil {
		return model.Page{}, fmt.Errorf("%w: %s", ErrAlreadyExists, target)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.Page{}, err
	}

	moved, err := m.store.Rename(ctx, id, page.WithIdentity(target))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Page{}, translate(err, target)
		}
		return model.Page{}, translate(err, id)
	}

	m.logger.InfoContext(ctx, "page moved",
		"language", id.Language,
		"page_id", id.PageID,
		"new_language", target.Language,
		"new_page_id", target.PageID,
	)
	return moved, nil
}

// Delete removes a page.
func (m *PageManager) Delete(ctx context.Context, language, pageID string) error {
	id := model.PageIdentity{Language: language, PageID: pageID}
	if err := m.store.Delete(ctx, id); err != nil {
		return translate(err, id)
	}
	m.logger.InfoContext(ctx, "page deleted",
		"language", id.Language,
		"page_id", id.PageID,
	)
	return nil
}

// Get returns a page if caller may view it.
func (m *PageManager) Get(ctx context.Context, language, pageID string, caller model.Caller) (model.Page, error) {
	id := model.PageIdentity{Language: language, PageID: pageID}
	page, err := m.store.Get(ctx, id)
	if err != nil {
		return model.Page{}, translate(err, id)
	}
	if !caller.CanView(page.Status) {
		return model.Page{}, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	return page, nil
}

// GetContent returns the page document as text, or its link.
func (m *PageManager) GetContent(ctx context.Context, language, pageID string, caller model.Caller) (string, error) {
	page, err := m.Get(ctx, language, pageID, caller)
	if err != nil {
		return "", err
	}
	return page.Content.Text(), nil
}

// List returns the pages caller may see in the list, in store order.
// An empty language lists every language; an empty section or
// model.SectionAll disables the section filter.
func (m *PageManager) List(ctx context.Context, language string, section model.Section, caller model.Caller) ([]model.Page, error) {
	pages, err := m.store.List(ctx, language)
	if err != nil {
		return nil, err
	}

	filterSection := section != "" && section != model.SectionAll
	out := make([]model.Page, 0, len(pages))
	for i := range pages {
		p := &pages[i]
		if !caller.CanList(p.Status) {
			continue
		}
		if filterSection && !p.HasSection(section) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Formats returns every page format.
func (m *PageManager) Formats() []model.Format { return model.Formats() }

// Sections returns every page section.
func (m *PageManager) Sections() []model.Section { return model.Sections() }

// Statuses returns every page status.
func (m *PageManager) Statuses() []model.Status { return model.Statuses() }

func (m *PageManager) checkIdentity(id model.PageIdentity) error {
	if err := m.checkLanguage(id.Language); err != nil {
		return err
	}
	if strings.TrimSpace(id.PageID) == "" || strings.Contains(id.PageID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPageID, id.PageID)
	}
	return nil
}

func (m *PageManager) checkLanguage(language string) error {
	if !m.langs.IsSupported(language) {
		return fmt.Errorf("%w: %q is not one of %s",
			ErrInvalidLanguage, language, strings.Join(m.langs.Codes(), ", "))
	}
	return nil
}

// newPlaceholderPage returns the hidden draft every new page starts from.
func newPlaceholderPage(id model.PageIdentity) model.Page {
	return model.Page{
		Identity: id,
		Status:   model.StatusHidden,
		Sections: []model.Section{model.SectionDraft},
	}
}

func checkExtension(u *Upload) (model.Extension, error) {
	name, err := util.SanitizeFilename(u.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
	}
	ext, ok := model.ParseExtension(name)
	if !ok {
		return "", fmt.Errorf("%w: %q, expected html, txt or md", ErrUnsupportedFileType, name)
	}
	return ext, nil
}

func readContent(u *Upload, link string) (model.Content, error) {
	if link != "" {
		return model.LinkedContent(link), nil
	}
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return model.Content{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return model.UploadedContent(data), nil
}

func dedupeSections(sections []model.Section) []model.Section {
	out := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func translate(err error, id model.PageIdentity) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	return err
}
