// audit_test.go - Unit tests for the invocation audit trail
//
// Test Philosophy:
// - CI-friendly: every backend writes under t.TempDir()
// - OS-aware: no hard-coded path separators
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempAuditConfig(t *testing.T, filename string) AuditConfig {
	t.Helper()
	config := DefaultAuditConfig()
	config.OutputFile = filepath.Join(t.TempDir(), filename)
	config.FlushInterval = 0 // flush explicitly in tests
	return config
}

func readJSONLEvents(t *testing.T, path string) []AuditEvent {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit file: %v", err)
	}
	defer f.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line: %v", err)
		}
		events = append(events, e)
	}
	return events
}

func TestAuditLoggerJSONLRoundTrip(t *testing.T) {
	config := tempAuditConfig(t, "invocations.jsonl")

	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	logger.LogExecution("image pull", []string{"--tag"}, []string{"myrepo"})
	logger.LogFailure("unknown_command", "image", "'foo' is not a valid command of 'image'")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readJSONLEvents(t, config.OutputFile)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Event != "command_execute" || events[0].Command != "image pull" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[0].Checksum == "" {
		t.Error("events must carry a tamper-detection checksum")
	}
	if events[1].Level != AuditWarn {
		t.Errorf("failures must be logged at warn level, got %v", events[1].Level)
	}
}

func TestAuditLoggerMinLevelFilters(t *testing.T) {
	config := tempAuditConfig(t, "invocations.jsonl")
	config.MinLevel = AuditWarn

	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	logger.LogExecution("image pull", nil, nil) // info, filtered
	logger.LogFailure("parse_error", "image pull", "truncated")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readJSONLEvents(t, config.OutputFile)
	if len(events) != 1 {
		t.Fatalf("expected only the warn event, got %d", len(events))
	}
	if events[0].Event != "parse_error" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestAuditLoggerNilIsNoOp(t *testing.T) {
	var logger *AuditLogger
	logger.LogExecution("image pull", nil, nil)
	if err := logger.Flush(); err != nil {
		t.Errorf("nil logger Flush must be a no-op, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger Close must be a no-op, got %v", err)
	}
}

func TestAuditSQLiteBackend(t *testing.T) {
	config := tempAuditConfig(t, "invocations.db")

	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Skipf("SQLite backend unavailable: %v", err)
	}

	logger.LogExecution("image push", []string{"--tag", "-q"}, []string{"myrepo"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", config.OutputFile)
	if err != nil {
		t.Fatalf("failed to reopen audit database: %v", err)
	}
	defer db.Close()

	var count int
	var command, options string
	err = db.QueryRow(
		"SELECT COUNT(*), command, options FROM invocation_events").Scan(&count, &command, &options)
	if err != nil {
		t.Fatalf("failed to query audit database: %v", err)
	}
	if count != 1 || command != "image push" || options != "--tag -q" {
		t.Errorf("unexpected row: count=%d command=%q options=%q", count, command, options)
	}
}

func TestDispatchAuditsExecution(t *testing.T) {
	config := tempAuditConfig(t, "invocations.jsonl")
	logger, err := NewAuditLogger(config)
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	var pull, push captured
	app, _ := imageApp(&pull, &push)
	app.WithAudit(logger)

	if err := app.Run(context.Background(), []string{"pull", "--tag", "latest", "myrepo"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readJSONLEvents(t, config.OutputFile)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Command != "image pull" {
		t.Errorf("expected command path 'image pull', got %q", events[0].Command)
	}
	if len(events[0].Options) != 1 || events[0].Options[0] != "--tag" {
		t.Errorf("expected literal option tokens, got %v", events[0].Options)
	}
}

func TestLoadAuditConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yaml")
	content := `
enabled: true
output_file: /tmp/trail.db
min_level: warn
buffer_size: 64
flush_interval: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadAuditConfig(path)
	if err != nil {
		t.Fatalf("LoadAuditConfig failed: %v", err)
	}
	if !config.Enabled {
		t.Error("enabled not applied")
	}
	if config.OutputFile != "/tmp/trail.db" {
		t.Errorf("output_file = %q", config.OutputFile)
	}
	if config.MinLevel != AuditWarn {
		t.Errorf("min_level = %v", config.MinLevel)
	}
	if config.BufferSize != 64 {
		t.Errorf("buffer_size = %d", config.BufferSize)
	}
	if config.FlushInterval != 500*time.Millisecond {
		t.Errorf("flush_interval = %v", config.FlushInterval)
	}
}

func TestLoadAuditConfigDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yaml")
	if err := os.WriteFile(path, []byte("min_level: critical\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadAuditConfig(path)
	if err != nil {
		t.Fatalf("LoadAuditConfig failed: %v", err)
	}
	defaults := DefaultAuditConfig()
	if config.MinLevel != AuditCritical {
		t.Errorf("min_level = %v", config.MinLevel)
	}
	if config.OutputFile != defaults.OutputFile || config.BufferSize != defaults.BufferSize {
		t.Errorf("omitted fields must keep defaults: %+v", config)
	}
}

func TestLoadAuditConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad level":    "min_level: loud\n",
		"bad interval": "flush_interval: soon\n",
		"bad yaml":     "enabled: [\n",
		"bad buffer":   "buffer_size: -5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadAuditConfig(path); err == nil {
				t.Error("expected configuration error")
			}
		})
	}

	if _, err := LoadAuditConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file must be an error")
	}
}
