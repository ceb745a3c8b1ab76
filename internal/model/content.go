// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

type contentKind uint8

const (
	contentNone contentKind = iota
	contentUploaded
	contentLinked
)

// Content is either an uploaded document or an external link, never both.
// The zero value holds no content.
type Content struct {
	kind contentKind
	data []byte
	link string
}

// UploadedContent returns content backed by an uploaded document.
func UploadedContent(data []byte) Content {
	return Content{kind: contentUploaded, data: data}
}

// LinkedContent returns content pointing at url.
func LinkedContent(url string) Content {
	return Content{kind: contentLinked, link: url}
}

// IsEmpty reports whether no content has been set.
func (c Content) IsEmpty() bool {
	switch c.kind {
	case contentUploaded:
		return len(c.data) == 0
	case contentLinked:
		return c.link == ""
	}
	return true
}

// IsLink reports whether the content is a non-empty link.
func (c Content) IsLink() bool {
	return c.kind == contentLinked && c.link != ""
}

// HasData reports whether the content is a non-empty uploaded document.
func (c Content) HasData() bool {
	return c.kind == contentUploaded && len(c.data) > 0
}

// Data returns the uploaded bytes, or nil for linked content.
func (c Content) Data() []byte {
	if c.kind != contentUploaded {
		return nil
	}
	return c.data
}

// Link returns the link, or "" for uploaded content.
func (c Content) Link() string {
	if c.kind != contentLinked {
		return ""
	}
	return c.link
}

// Text returns the content as served by the content endpoint: the data
// decoded as UTF-8 if present, the link otherwise.
func (c Content) Text() string {
	if c.HasData() {
		return string(c.data)
	}
	return c.link
}
