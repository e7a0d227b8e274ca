// audit_config.go: YAML loader for audit trail configuration
//
// Command options never come from files; the audit subsystem is the one
// piece of this framework an operator configures out of band, so its
// settings are loadable from a small YAML document.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"fmt"
	"os"
	"time"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// auditConfigFile is the YAML shape of an audit configuration document:
//
//	enabled: true
//	output_file: /var/log/myapp/invocations.db
//	min_level: warn
//	buffer_size: 256
//	flush_interval: 2s
type auditConfigFile struct {
	Enabled       *bool  `yaml:"enabled"`
	OutputFile    string `yaml:"output_file"`
	MinLevel      string `yaml:"min_level"`
	BufferSize    int    `yaml:"buffer_size"`
	FlushInterval string `yaml:"flush_interval"`
}

// LoadAuditConfig reads an audit configuration from a YAML file, applying
// DefaultAuditConfig values for every omitted field.
func LoadAuditConfig(path string) (AuditConfig, error) {
	config := DefaultAuditConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, ErrCodeInvalidAuditConfig,
			"failed to read audit configuration file")
	}

	var doc auditConfigFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return config, errors.Wrap(err, ErrCodeInvalidAuditConfig,
			"failed to parse audit configuration YAML")
	}

	if doc.Enabled != nil {
		config.Enabled = *doc.Enabled
	}
	if doc.OutputFile != "" {
		config.OutputFile = doc.OutputFile
	}
	if doc.MinLevel != "" {
		level, ok := parseAuditLevel(doc.MinLevel)
		if !ok {
			return config, errors.New(ErrCodeInvalidAuditConfig,
				fmt.Sprintf("unknown audit level %q", doc.MinLevel))
		}
		config.MinLevel = level
	}
	if doc.BufferSize != 0 {
		if doc.BufferSize < 0 {
			return config, errors.New(ErrCodeInvalidAuditConfig,
				fmt.Sprintf("buffer_size must be positive, got %d", doc.BufferSize))
		}
		config.BufferSize = doc.BufferSize
	}
	if doc.FlushInterval != "" {
		interval, err := time.ParseDuration(doc.FlushInterval)
		if err != nil {
			return config, errors.Wrap(err, ErrCodeInvalidAuditConfig,
				fmt.Sprintf("invalid flush_interval %q", doc.FlushInterval))
		}
		config.FlushInterval = interval
	}

	return config, nil
}
