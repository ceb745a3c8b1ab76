// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the process-level HTTP handlers; the pages API
// itself lives in handler/api.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/version"
)

// checkTimeout bounds each dependency probe.
const checkTimeout = 2 * time.Second

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks    map[string]PingFunc
	dataDir   string
	info      version.Info
	startTime time.Time
}

// NewHealthHandler creates a health handler probing checks (for example
// "database" and "page_store"). dataDir is where the database lives and is
// watched for free disk space.
func NewHealthHandler(checks map[string]PingFunc, dataDir string, info version.Info) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		dataDir:   dataDir,
		info:      info,
		startTime: time.Now(),
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatusPublic is the minimal health response for non-admin callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (administrators only).
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Commit    string           `json:"commit,omitempty"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health requests.
// Returns minimal status to everyone but administrators.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())
	checks["disk"] = h.checkDiskSpace()

	overallStatus := StatusHealthy
	for _, c := range checks {
		if c.Status != StatusHealthy {
			overallStatus = StatusDegraded
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !middleware.GetCaller(r).IsAdmin() {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.versionString(),
		Commit:    h.info.GitCommit,
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	w.Header().Set("Content-Type", "application/json")

	var failed []string
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		if checks[name].Status != StatusHealthy {
			failed = append(failed, name)
		}
	}
	if len(failed) == 0 {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]any{"status": "not_ready"}
	// Failure details only for administrators.
	if middleware.GetCaller(r).IsAdmin() {
		resp["failed"] = failed
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) versionString() string {
	if h.info.Version == "" {
		return "dev"
	}
	return h.info.Version
}

// runChecks probes every dependency.
func (h *HealthHandler) runChecks(ctx context.Context) map[string]Check {
	results := make(map[string]Check, len(h.checks)+1)
	for name, ping := range h.checks {
		results[name] = runCheck(ctx, ping)
	}
	return results
}

func runCheck(ctx context.Context, ping PingFunc) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  StatusUnhealthy,
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  StatusHealthy,
		Message: "Connected",
		Latency: latency.String(),
	}
}

// checkDiskSpace checks available disk space in the data directory.
func (h *HealthHandler) checkDiskSpace() Check {
	dir := filepath.Clean(h.dataDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return Check{
			Status:  StatusHealthy,
			Message: "Data directory does not exist yet",
		}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return Check{
			Status:  StatusUnhealthy,
			Message: "Failed to check disk space: " + err.Error(),
		}
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	available := formatBytes(availableBytes)

	const minSpace = 100 * 1024 * 1024 // 100MB
	if availableBytes < minSpace {
		return Check{
			Status:  StatusDegraded,
			Message: "Low disk space: " + available + " available",
		}
	}

	return Check{
		Status:  StatusHealthy,
		Message: available + " available",
	}
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
