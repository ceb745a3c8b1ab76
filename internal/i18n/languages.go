// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n holds the set of UI languages the catalog supports. Page
// identities must use one of these codes whenever a page is written.
package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Languages is the set of supported UI language codes (for example the
// ISO 639-2 codes "eng", "fre"). It is safe for concurrent use.
type Languages struct {
	mu    sync.RWMutex
	codes []string
	tags  map[string]language.Tag
}

// NewLanguages validates codes and returns the supported set.
// Every code must be a well-formed BCP 47 / ISO 639 language code.
func NewLanguages(codes []string) (*Languages, error) {
	l := &Languages{}
	if err := l.Set(codes); err != nil {
		return nil, err
	}
	return l, nil
}

// Set replaces the supported set. Removing a language does not affect
// pages already stored under it; they stay readable.
func (l *Languages) Set(codes []string) error {
	normalized := make([]string, 0, len(codes))
	tags := make(map[string]language.Tag, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || slices.Contains(normalized, c) {
			continue
		}
		// Well-formed but unregistered subtags (bibliographic codes such
		// as "fre" on older tables) are accepted with a partial tag.
		tag, err := language.Parse(c)
		var unknown language.ValueError
		if err != nil && !errors.As(err, &unknown) {
			return fmt.Errorf("invalid language code %q: %w", c, err)
		}
		normalized = append(normalized, c)
		tags[c] = tag
	}
	if len(normalized) == 0 {
		return errors.New("at least one UI language is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.codes = normalized
	l.tags = tags
	return nil
}

// IsSupported reports whether code is one of the supported UI languages.
// The comparison is exact on the configured code, not on the language it
// denotes: "en" is not accepted when only "eng" is configured.
func (l *Languages) IsSupported(code string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Contains(l.codes, code)
}

// Codes returns the supported codes in configuration order.
func (l *Languages) Codes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.codes)
}

// Tag returns the parsed language tag of a supported code.
func (l *Languages) Tag(code string) (language.Tag, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tag, ok := l.tags[code]
	return tag, ok
}
