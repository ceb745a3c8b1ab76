// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestParseEnums(t *testing.T) {
	if f, err := ParseFormat("markdown"); err != nil || f != FormatMarkdown {
		t.Errorf("ParseFormat(markdown) = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat(pdf) should fail")
	}
	if s, err := ParseSection(" footer "); err != nil || s != SectionFooter {
		t.Errorf("ParseSection(footer) = %q, %v", s, err)
	}
	if _, err := ParseSection("sidebar"); err == nil {
		t.Error("ParseSection(sidebar) should fail")
	}
	if s, err := ParseStatus("public_only"); err != nil || s != StatusPublicOnly {
		t.Errorf("ParseStatus(public_only) = %q, %v", s, err)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("ParseStatus(archived) should fail")
	}
}

func TestEnumListsAreCopies(t *testing.T) {
	f := Formats()
	f[0] = "BROKEN"
	if Formats()[0] != FormatHTML {
		t.Error("Formats() must return a copy")
	}
	if len(Sections()) != 7 {
		t.Errorf("len(Sections()) = %d, want 7", len(Sections()))
	}
	if len(Statuses()) != 5 {
		t.Errorf("len(Statuses()) = %d, want 5", len(Statuses()))
	}
}

func TestParseExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     Extension
		ok       bool
		format   Format
	}{
		{"about.html", ExtensionHTML, true, FormatHTML},
		{"README.MD", ExtensionMarkdown, true, FormatMarkdown},
		{"notes.v2.txt", ExtensionText, true, FormatText},
		{"image.png", "", false, ""},
		{"noext", "", false, ""},
		{"trailing.", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := ParseExtension(tt.filename)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseExtension(%q) = %q, %v, want %q, %v", tt.filename, got, ok, tt.want, tt.ok)
			}
			if ok && got.Format() != tt.format {
				t.Errorf("Format() = %q, want %q", got.Format(), tt.format)
			}
		})
	}
}
