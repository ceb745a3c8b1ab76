// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types of the pages service: pages and
// their identity, content, format, sections and status, plus the caller
// identity used for visibility decisions.
package model

import (
	"slices"
	"time"
)

// PageIdentity is the composite key of a page.
type PageIdentity struct {
	Language string `json:"language"`
	PageID   string `json:"pageId"`
}

// String returns "language/pageId", the form used in log lines and errors.
func (id PageIdentity) String() string {
	return id.Language + "/" + id.PageID
}

// Page is a static content record keyed by language and page identifier.
type Page struct {
	Identity  PageIdentity
	Content   Content
	Format    Format
	Sections  []Section
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSection reports whether the page may be surfaced in section s.
// A page carrying SectionAll matches every section.
func (p *Page) HasSection(s Section) bool {
	return slices.Contains(p.Sections, SectionAll) || slices.Contains(p.Sections, s)
}

// FormatMatchesContent reports whether the format is consistent with the
// content: LINK if and only if the page is linked.
func (p *Page) FormatMatchesContent() bool {
	if p.Format == FormatLink {
		return !p.Content.HasData()
	}
	return !p.Content.IsLink()
}

// WithIdentity returns a copy of the page moved to a new identity.
func (p Page) WithIdentity(id PageIdentity) Page {
	p.Identity = id
	p.Sections = slices.Clone(p.Sections)
	return p
}
