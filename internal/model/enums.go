// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"slices"
	"strings"
)

// Format describes how the content of a page is interpreted by clients.
type Format string

// Page formats
const (
	FormatHTML     Format = "HTML"
	FormatText     Format = "TEXT"
	FormatMarkdown Format = "MARKDOWN"
	FormatLink     Format = "LINK"
)

var allFormats = []Format{FormatHTML, FormatText, FormatMarkdown, FormatLink}

// Formats returns every valid page format.
func Formats() []Format {
	return slices.Clone(allFormats)
}

// ParseFormat converts a request value (case-insensitive) into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(allFormats, f) {
		return "", fmt.Errorf("unknown page format %q", s)
	}
	return f, nil
}

// Section is a place in the host UI where a page may be surfaced.
type Section string

// Page sections. SectionAll is a wildcard matching every section.
const (
	SectionAll     Section = "ALL"
	SectionTop     Section = "TOP"
	SectionHeader  Section = "HEADER"
	SectionFooter  Section = "FOOTER"
	SectionMenu    Section = "MENU"
	SectionSubmenu Section = "SUBMENU"
	SectionDraft   Section = "DRAFT"
)

var allSections = []Section{
	SectionAll, SectionTop, SectionHeader, SectionFooter,
	SectionMenu, SectionSubmenu, SectionDraft,
}

// Sections returns every valid page section.
func Sections() []Section {
	return slices.Clone(allSections)
}

// ParseSection converts a request value (case-insensitive) into a Section.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(allSections, sec) {
		return "", fmt.Errorf("unknown page section %q", s)
	}
	return sec, nil
}

// Status is the visibility tier of a page.
type Status string

// Page statuses
const (
	StatusHidden     Status = "HIDDEN"
	StatusDraft      Status = "DRAFT"
	StatusPrivate    Status = "PRIVATE"
	StatusPublic     Status = "PUBLIC"
	StatusPublicOnly Status = "PUBLIC_ONLY"
)

var allStatuses = []Status{StatusHidden, StatusDraft, StatusPrivate, StatusPublic, StatusPublicOnly}

// Statuses returns every valid page status.
func Statuses() []Status {
	return slices.Clone(allStatuses)
}

// ParseStatus converts a request value (case-insensitive) into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(allStatuses, st) {
		return "", fmt.Errorf("unknown page status %q", s)
	}
	return st, nil
}

// Extension is a file extension accepted for uploaded page documents.
type Extension string

// Accepted upload extensions
const (
	ExtensionHTML     Extension = "html"
	ExtensionText     Extension = "txt"
	ExtensionMarkdown Extension = "md"
)

// ParseExtension returns the Extension of filename, or false if the
// extension is not in the allow-list.
func ParseExtension(filename string) (Extension, bool) {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return "", false
	}
	ext := Extension(strings.ToLower(filename[dot+1:]))
	switch ext {
	case ExtensionHTML, ExtensionText, ExtensionMarkdown:
		return ext, true
	}
	return "", false
}

// Format returns the page format implied by the extension.
func (e Extension) Format() Format {
	switch e {
	case ExtensionText:
		return FormatText
	case ExtensionMarkdown:
		return FormatMarkdown
	default:
		return FormatHTML
	}
}
