// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "errors"

// Errors returned by PageManager. They are wrapped with detail, so match
// them with errors.Is.
var (
	ErrInvalidLanguage     = errors.New("invalid language")
	ErrInvalidPageID       = errors.New("invalid page id")
	ErrMissingContent      = errors.New("a document or a link is required")
	ErrConflictingContent  = errors.New("provide either a document or a link, not both")
	ErrInvalidFormat       = errors.New("format does not match content")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidLink         = errors.New("invalid link")
	ErrAlreadyExists       = errors.New("page already exists")
	ErrNotFound            = errors.New("page not found")
	ErrForbidden           = errors.New("access to page denied")
	ErrIOFailure           = errors.New("reading uploaded content failed")
)
