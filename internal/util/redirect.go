// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net/url"
	"strings"
)

// MaxRedirectURLLength is the maximum accepted length of a page link.
const MaxRedirectURLLength = 2048

// IsSafeRedirectURL reports whether link may be used as a redirect target
// without opening the application to open redirects (CWE-601).
//
// Accepted are site-local absolute paths ("/catalog/search") and absolute
// http(s) URLs with a host. Protocol-relative URLs ("//evil.example"),
// backslash tricks, control characters and any other scheme are rejected.
func IsSafeRedirectURL(link string) bool {
	if link == "" || len(link) > MaxRedirectURLLength {
		return false
	}
	if strings.ContainsAny(link, "\\") {
		return false
	}
	for _, r := range link {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	if strings.HasPrefix(link, "/") {
		if strings.HasPrefix(link, "//") {
			return false
		}
		u, err := url.Parse(link)
		return err == nil && u.Host == "" && u.Scheme == ""
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != "" && u.User == nil
}
