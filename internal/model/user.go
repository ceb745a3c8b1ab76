// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleGuest  = "guest"
)

// User is an account able to sign in to the pages API.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Caller returns the caller identity of a signed-in user.
func (u *User) Caller() Caller {
	c := Caller{Authenticated: true}
	switch u.Role {
	case RoleAdmin:
		c.Profile = ProfileAdministrator
	case RoleGuest:
		c.Profile = ProfileGuest
	default:
		c.Profile = ProfileRegistered
	}
	return c
}
