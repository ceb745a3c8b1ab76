// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNewLanguages(t *testing.T) {
	l, err := NewLanguages([]string{"eng", " FRE ", "eng", ""})
	if err != nil {
		t.Fatalf("NewLanguages: %v", err)
	}

	codes := l.Codes()
	if len(codes) != 2 || codes[0] != "eng" || codes[1] != "fre" {
		t.Errorf("Codes() = %v, want [eng fre]", codes)
	}

	if !l.IsSupported("eng") {
		t.Error("eng should be supported")
	}
	if l.IsSupported("en") {
		t.Error("en should not be supported when only eng is configured")
	}
	if l.IsSupported("ENG") {
		t.Error("lookup is exact on the configured code")
	}

	tag, ok := l.Tag("eng")
	if !ok {
		t.Fatal("Tag(eng) not found")
	}
	if base, _ := tag.Base(); base != language.MustParseBase("en") {
		t.Errorf("Tag(eng) base = %v, want en", base)
	}
}

func TestNewLanguages_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
	}{
		{"empty", nil},
		{"blank only", []string{" ", ""}},
		{"malformed", []string{"eng", "not a language"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLanguages(tt.codes); err == nil {
				t.Errorf("NewLanguages(%v) expected error", tt.codes)
			}
		})
	}
}

func TestLanguagesSet(t *testing.T) {
	l, err := NewLanguages([]string{"eng"})
	if err != nil {
		t.Fatalf("NewLanguages: %v", err)
	}
	if err := l.Set([]string{"ger", "spa"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if l.IsSupported("eng") {
		t.Error("eng should no longer be supported")
	}
	if !l.IsSupported("spa") {
		t.Error("spa should be supported")
	}

	if err := l.Set([]string{"??"}); err == nil {
		t.Error("Set with invalid code should fail")
	}
	if !l.IsSupported("ger") {
		t.Error("failed Set must keep the previous set")
	}
}
