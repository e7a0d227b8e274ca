// audit.go: Invocation audit trail for cli-helper
//
// Optional audit logging of command dispatch: which commands ran, with
// which option tokens and arguments, and which invocations failed. Events
// are buffered and flushed in the background to a pluggable storage
// backend (JSONL or SQLite), with a tamper-detection checksum per event.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// parseAuditLevel maps a configuration string to a level.
func parseAuditLevel(s string) (AuditLevel, bool) {
	switch strings.ToLower(s) {
	case "", "info":
		return AuditInfo, true
	case "warn", "warning":
		return AuditWarn, true
	case "critical":
		return AuditCritical, true
	default:
		return AuditInfo, false
	}
}

// AuditEvent represents a single auditable command invocation event
type AuditEvent struct {
	Timestamp   time.Time  `json:"timestamp"`
	Level       AuditLevel `json:"level"`
	Event       string     `json:"event"`
	Command     string     `json:"command"`
	Options     []string   `json:"options,omitempty"`
	Args        []string   `json:"args,omitempty"`
	Detail      string     `json:"detail,omitempty"`
	ProcessID   int        `json:"process_id"`
	ProcessName string     `json:"process_name"`
	Checksum    string     `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	OutputFile    string        `json:"output_file" yaml:"output_file"`
	MinLevel      AuditLevel    `json:"min_level" yaml:"-"`
	BufferSize    int           `json:"buffer_size" yaml:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval" yaml:"flush_interval"`
}

// DefaultAuditConfig returns the default audit configuration: JSONL output
// next to the user cache directory, info level, small buffer with periodic
// background flushing. Set OutputFile to a path ending in .db to select
// the SQLite backend instead.
func DefaultAuditConfig() AuditConfig {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return AuditConfig{
		Enabled:       true,
		OutputFile:    filepath.Join(dir, "cli-helper", "invocations.jsonl"),
		MinLevel:      AuditInfo,
		BufferSize:    256,
		FlushInterval: 2 * time.Second,
	}
}

// AuditLogger provides buffered invocation audit logging with pluggable
// storage backends. A nil *AuditLogger is a valid no-op logger, so callers
// can thread it unconditionally.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger with the backend selected by the
// configured output file extension: .db selects SQLite, anything else
// JSONL.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, err
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: processName(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event.
func (al *AuditLogger) Log(level AuditLevel, event, command string, options, args []string, detail string) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	// Cached timestamp: audit must never dominate dispatch cost.
	auditEvent := AuditEvent{
		Timestamp:   timecache.CachedTime(),
		Level:       level,
		Event:       event,
		Command:     command,
		Options:     options,
		Args:        args,
		Detail:      detail,
		ProcessID:   al.processID,
		ProcessName: al.processName,
	}
	auditEvent.Checksum = checksumEvent(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferLocked()
	}
	al.bufferMu.Unlock()
}

// LogExecution logs a successful dispatch to a leaf command action.
func (al *AuditLogger) LogExecution(command string, options, args []string) {
	al.Log(AuditInfo, "command_execute", command, options, args, "")
}

// LogFailure logs a fatal dispatch failure (parse error, unknown command,
// requirement violation).
func (al *AuditLogger) LogFailure(event, command, detail string) {
	al.Log(AuditWarn, event, command, nil, nil, detail)
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	if al == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferLocked()
}

// Close gracefully shuts down the audit logger
func (al *AuditLogger) Close() error {
	if al == nil {
		return nil
	}
	close(al.stopCh)
	if al.flushTicker != nil {
		al.flushTicker.Stop()
	}

	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}
	if al.backend != nil {
		if err := al.backend.Close(); err != nil {
			return fmt.Errorf("failed to close audit backend: %w", err)
		}
	}
	return nil
}

// flushLoop runs the background flush process
func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferLocked writes the buffer to the backend; caller holds bufferMu.
func (al *AuditLogger) flushBufferLocked() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

// checksumEvent creates a tamper-detection checksum using SHA-256.
func checksumEvent(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Command,
		strings.Join(event.Options, " "), strings.Join(event.Args, " "))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func processName() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return "cli-helper"
}
