// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by the HTTP and service layers:
// filename sanitizing and redirect URL safety checks.
package util

import (
	"fmt"
	"path"
	"strings"
)

// SanitizeFilename extracts only the base filename of an uploaded file,
// dropping any directory components sent by the client (both "/" and "\"
// separators). Returns an error if nothing usable remains.
func SanitizeFilename(filename string) (string, error) {
	safe := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if safe == "." || safe == ".." || safe == "" || safe == "/" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}
