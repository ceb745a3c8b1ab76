// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "editor role", role: RoleEditor, want: false},
		{name: "guest role", role: RoleGuest, want: false},
		{name: "empty role", role: "", want: false},
		{name: "Admin uppercase", role: "Admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserCaller(t *testing.T) {
	tests := []struct {
		role string
		want Profile
	}{
		{RoleAdmin, ProfileAdministrator},
		{RoleEditor, ProfileRegistered},
		{RoleGuest, ProfileGuest},
		{"reviewer", ProfileRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			u := &User{Role: tt.role}
			c := u.Caller()
			if !c.Authenticated {
				t.Error("Authenticated = false, want true")
			}
			if c.Profile != tt.want {
				t.Errorf("Profile = %q, want %q", c.Profile, tt.want)
			}
		})
	}
}
