// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "simple", filename: "about.html", want: "about.html"},
		{name: "unix traversal", filename: "../../../etc/passwd.txt", want: "passwd.txt"},
		{name: "windows path", filename: `C:\Users\me\about.md`, want: "about.md"},
		{name: "nested", filename: "docs/pages/help.txt", want: "help.txt"},
		{name: "empty", filename: "", wantErr: true},
		{name: "dot dot", filename: "..", wantErr: true},
		{name: "slash", filename: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SanitizeFilename(%q) expected error, got %q", tt.filename, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFilename(%q) unexpected error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
