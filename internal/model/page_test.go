// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestPageHasSection(t *testing.T) {
	footer := Page{Sections: []Section{SectionFooter}}
	all := Page{Sections: []Section{SectionAll}}
	none := Page{}

	if !footer.HasSection(SectionFooter) {
		t.Error("footer page should match FOOTER")
	}
	if footer.HasSection(SectionHeader) {
		t.Error("footer page should not match HEADER")
	}
	if !all.HasSection(SectionHeader) {
		t.Error("ALL page should match HEADER")
	}
	if none.HasSection(SectionTop) {
		t.Error("page without sections should not match TOP")
	}
}

func TestPageFormatMatchesContent(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want bool
	}{
		{"link with LINK", Page{Format: FormatLink, Content: LinkedContent("/x")}, true},
		{"link with HTML", Page{Format: FormatHTML, Content: LinkedContent("/x")}, false},
		{"data with HTML", Page{Format: FormatHTML, Content: UploadedContent([]byte("<p>"))}, true},
		{"data with LINK", Page{Format: FormatLink, Content: UploadedContent([]byte("<p>"))}, false},
		{"empty with LINK", Page{Format: FormatLink}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.FormatMatchesContent(); got != tt.want {
				t.Errorf("FormatMatchesContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPageWithIdentity(t *testing.T) {
	p := Page{
		Identity: PageIdentity{Language: "eng", PageID: "about"},
		Sections: []Section{SectionFooter},
		Status:   StatusPublic,
	}
	moved := p.WithIdentity(PageIdentity{Language: "fre", PageID: "a-propos"})
	moved.Sections[0] = SectionHeader

	if moved.Identity.String() != "fre/a-propos" {
		t.Errorf("Identity = %q, want %q", moved.Identity, "fre/a-propos")
	}
	if p.Sections[0] != SectionFooter {
		t.Error("WithIdentity must not share the sections slice")
	}
	if moved.Status != StatusPublic {
		t.Errorf("Status = %q, want %q", moved.Status, StatusPublic)
	}
}

func TestContent(t *testing.T) {
	up := UploadedContent([]byte("hello"))
	if !up.HasData() || up.IsLink() || up.IsEmpty() {
		t.Error("uploaded content flags are wrong")
	}
	if up.Text() != "hello" || up.Link() != "" {
		t.Errorf("Text() = %q, Link() = %q", up.Text(), up.Link())
	}

	ln := LinkedContent("https://example.org")
	if ln.HasData() || !ln.IsLink() || ln.Data() != nil {
		t.Error("linked content flags are wrong")
	}
	if ln.Text() != "https://example.org" {
		t.Errorf("Text() = %q, want link", ln.Text())
	}

	var zero Content
	if !zero.IsEmpty() || zero.Text() != "" {
		t.Error("zero content should be empty")
	}
	if !UploadedContent(nil).IsEmpty() {
		t.Error("empty upload should be empty")
	}
}
