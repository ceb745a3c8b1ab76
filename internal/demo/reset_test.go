// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupDemoDir creates a data dir holding a fake database with WAL files.
func setupDemoDir(t *testing.T) (dataDir, dbPath string) {
	t.Helper()
	dataDir = t.TempDir()
	dbPath = filepath.Join(dataDir, "pages.db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.WriteFile(dbPath+suffix, []byte("test"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dataDir, dbPath
}

func writeTestTimestamp(t *testing.T, dataDir string, at time.Time) {
	t.Helper()
	data := []byte(strconv.FormatInt(at.Unix(), 10))
	if err := os.WriteFile(filepath.Join(dataDir, timestampFile), data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func assertDBRemoved(t *testing.T, dbPath string, want bool) {
	t.Helper()
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_, err := os.Stat(dbPath + suffix)
		if removed := os.IsNotExist(err); removed != want {
			t.Errorf("%s removed = %v, want %v", dbPath+suffix, removed, want)
		}
	}
}

func TestResetIfNeeded(t *testing.T) {
	tests := []struct {
		name      string
		lastReset *time.Time
		garbage   bool
		wantReset bool
	}{
		{name: "missing timestamp", wantReset: true},
		{name: "stale timestamp", lastReset: ptr(testNow.Add(-25 * time.Hour)), wantReset: true},
		{name: "fresh timestamp", lastReset: ptr(testNow.Add(-time.Hour)), wantReset: false},
		{name: "unparsable timestamp", garbage: true, wantReset: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir, dbPath := setupDemoDir(t)
			switch {
			case tt.lastReset != nil:
				writeTestTimestamp(t, dataDir, *tt.lastReset)
			case tt.garbage:
				if err := os.WriteFile(filepath.Join(dataDir, timestampFile), []byte("yesterday"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			reset, err := ResetIfNeeded(dbPath, dataDir, testNow)
			if err != nil {
				t.Fatalf("ResetIfNeeded() error = %v", err)
			}
			if reset != tt.wantReset {
				t.Errorf("ResetIfNeeded() = %v, want %v", reset, tt.wantReset)
			}
			assertDBRemoved(t, dbPath, tt.wantReset)
		})
	}
}

func TestReset_WritesTimestamp(t *testing.T) {
	dataDir, dbPath := setupDemoDir(t)

	if err := Reset(dbPath, dataDir, testNow); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, timestampFile))
	if err != nil {
		t.Fatalf("reading timestamp: %v", err)
	}
	if got := string(data); got != strconv.FormatInt(testNow.Unix(), 10) {
		t.Errorf("timestamp = %q, want %d", got, testNow.Unix())
	}
}

func TestReset_MissingDatabase(t *testing.T) {
	dataDir := t.TempDir()

	if err := Reset(filepath.Join(dataDir, "absent.db"), dataDir, testNow); err != nil {
		t.Errorf("Reset() error = %v, want nil for a missing database", err)
	}
}

func ptr[T any](v T) *T { return &v }
