// audit_backend.go: Storage backends for the cli-helper audit trail
//
// Two backends implement the same minimal contract: JSONL for
// human-readable, grep-able trails that ship easily to log aggregators,
// and SQLite for queryable single-node history. Selection is driven by the
// configured output file extension; there is no fallback chain, since a
// CLI invocation either audits where it was told to or reports why not.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend is the minimal storage contract: batch write, flush, close.
// Backends must tolerate concurrent Write calls.
type auditBackend interface {
	Write(events []AuditEvent) error
	Flush() error
	Close() error
}

// createAuditBackend selects the backend from the output file extension:
// ".db" selects SQLite, everything else JSONL.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if filepath.Ext(config.OutputFile) == ".db" {
		return newSQLiteBackend(config)
	}
	return newJSONLBackend(config)
}

// jsonlAuditBackend appends one JSON document per line.
type jsonlAuditBackend struct {
	file *os.File
	mu   sync.Mutex
}

func newJSONLBackend(config AuditConfig) (*jsonlAuditBackend, error) {
	if config.OutputFile == "" {
		return nil, fmt.Errorf("audit output file cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return &jsonlAuditBackend{file: file}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to encode audit event: %w", err)
		}
	}
	if _, err := j.file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append audit events: %w", err)
	}
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Sync()
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// sqliteAuditBackend stores events in a single SQLite database.
//
// WAL mode keeps concurrent CLI processes from blocking each other on the
// shared trail; NORMAL synchronous is acceptable for audit data where
// losing the final second on a crash is tolerable.
type sqliteAuditBackend struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	mu         sync.Mutex
	closed     bool
}

const auditSchemaSQL = `
CREATE TABLE IF NOT EXISTS invocation_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	level TEXT NOT NULL,
	event TEXT NOT NULL,
	command TEXT NOT NULL,
	options TEXT,
	args TEXT,
	detail TEXT,
	process_id INTEGER NOT NULL,
	process_name TEXT NOT NULL,
	checksum TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocation_timestamp ON invocation_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_invocation_command ON invocation_events(command);
CREATE INDEX IF NOT EXISTS idx_invocation_event ON invocation_events(event);
`

func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	if config.OutputFile == "" {
		return nil, fmt.Errorf("audit output file cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf(
		"%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", config.OutputFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	if _, err := db.Exec(auditSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	stmt, err := db.Prepare(`
		INSERT INTO invocation_events
			(timestamp, level, event, command, options, args, detail, process_id, process_name, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit insert: %w", err)
	}

	return &sqliteAuditBackend{db: db, insertStmt: stmt}, nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("audit backend is closed")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}

	stmt := tx.Stmt(s.insertStmt)
	for _, event := range events {
		_, err := stmt.Exec(
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.999999999Z"),
			event.Level.String(),
			event.Event,
			event.Command,
			strings.Join(event.Options, " "),
			strings.Join(event.Args, " "),
			event.Detail,
			event.ProcessID,
			event.ProcessName,
			event.Checksum,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit events: %w", err)
	}
	return nil
}

// Flush is a no-op: writes are transactional, nothing is buffered here.
func (s *sqliteAuditBackend) Flush() error {
	return nil
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}
