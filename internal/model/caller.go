// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Profile is the privilege tier of a caller.
type Profile string

// Caller profiles. ProfileNone means the caller has no profile at all.
const (
	ProfileNone          Profile = ""
	ProfileGuest         Profile = "guest"
	ProfileRegistered    Profile = "registered"
	ProfileAdministrator Profile = "administrator"
)

// Caller is the identity on whose behalf an operation runs.
// The zero value is an anonymous caller.
type Caller struct {
	Authenticated bool
	Profile       Profile
}

// Anonymous is the caller used when no session is present.
var Anonymous = Caller{}

// IsAdmin reports whether the caller is an administrator.
func (c Caller) IsAdmin() bool {
	return c.Profile == ProfileAdministrator
}

// IsRegistered reports whether the caller is authenticated with a
// profile other than guest.
func (c Caller) IsRegistered() bool {
	return c.Authenticated && c.Profile != ProfileNone && c.Profile != ProfileGuest
}

// CanView applies the single-page visibility rule used by get and
// getContent.
func (c Caller) CanView(s Status) bool {
	switch s {
	case StatusHidden:
		return c.IsAdmin()
	case StatusPrivate:
		return c.IsRegistered()
	default:
		return true
	}
}

// CanList applies the list visibility rule. It intentionally differs from
// CanView for DRAFT (never listed) and PUBLIC_ONLY (listed only for
// unauthenticated callers).
func (c Caller) CanList(s Status) bool {
	switch s {
	case StatusHidden:
		return c.IsAdmin()
	case StatusPrivate:
		return c.IsRegistered()
	case StatusPublic:
		return true
	case StatusPublicOnly:
		return !c.Authenticated
	default:
		return false
	}
}
