// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo restores demo deployments to their seeded state.
package demo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// timestampFile is the name of the file storing the last reset time.
	timestampFile = ".last_reset"

	// ResetInterval is how often demo data is discarded.
	ResetInterval = 24 * time.Hour
)

// ResetIfNeeded discards the demo database when the last reset is older
// than ResetInterval, or was never recorded. It runs at startup, before the
// database is opened, so the following migrations and seeding start clean.
// It reports whether a reset happened.
func ResetIfNeeded(dbPath, dataDir string, now time.Time) (bool, error) {
	tsPath := filepath.Join(dataDir, timestampFile)

	data, err := os.ReadFile(tsPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading reset timestamp: %w", err)
	}

	if err == nil {
		if unixSec, parseErr := strconv.ParseInt(string(data), 10, 64); parseErr == nil {
			lastReset := time.Unix(unixSec, 0)
			if now.Sub(lastReset) < ResetInterval {
				slog.Info("demo reset not needed",
					"last_reset", lastReset.UTC().Format(time.RFC3339),
					"next_reset", lastReset.Add(ResetInterval).UTC().Format(time.RFC3339),
				)
				return false, nil
			}
		}
	}

	slog.Info("demo reset overdue, discarding database", "path", dbPath)
	if err := Reset(dbPath, dataDir, now); err != nil {
		return false, err
	}
	return true, nil
}

// Reset deletes the SQLite database files (main, WAL, SHM) and records now
// as the last reset time.
func Reset(dbPath, dataDir string, now time.Time) error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", dbPath+suffix, err)
		}
	}

	if err := writeTimestamp(dataDir, now); err != nil {
		return fmt.Errorf("writing reset timestamp: %w", err)
	}

	slog.Info("demo reset complete", "path", dbPath)
	return nil
}

func writeTimestamp(dataDir string, now time.Time) error {
	tsPath := filepath.Join(dataDir, timestampFile)
	data := []byte(strconv.FormatInt(now.UTC().Unix(), 10))
	return os.WriteFile(tsPath, data, 0o600)
}
