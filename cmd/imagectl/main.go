// imagectl: demonstration CLI built on the cli-helper framework
//
// A small container-image style tool showing hierarchical commands, typed
// options, requirement rules and the optional invocation audit trail.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	clihelper "github.com/Etherna/cli-helper"
)

func main() {
	app, audit, err := buildApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if audit != nil {
		defer func() { _ = audit.Close() }()
	}

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildApp assembles the command tree:
//
//	imagectl
//	└── image
//	    ├── pull
//	    └── push
func buildApp() (*clihelper.App, *clihelper.AuditLogger, error) {
	root := clihelper.NewCommand("imagectl", "Manage container images").
		WithHelpOnNoArgs()

	image := clihelper.NewCommand("image", "Operate on a single image")

	pull := clihelper.NewCommand("pull", "Pull an image from a registry").
		WithOption(clihelper.NewOption("tag", "t", "Tag to pull", clihelper.ArgString)).
		WithOption(clihelper.NewOption("quiet", "q", "Suppress progress output")).
		WithOption(clihelper.NewOption("verbose", "v", "Verbose progress output")).
		WithOption(clihelper.NewOption("retries", "r", "Retry attempts on failure", clihelper.ArgInt)).
		WithRequirement(clihelper.Exclusive("quiet", "verbose")).
		WithRequirement(clihelper.Range("retries", 0, 10)).
		WithAction(pullAction)

	push := clihelper.NewCommand("push", "Push an image to a registry").
		WithOption(clihelper.NewOption("tag", "t", "Tag to push", clihelper.ArgString)).
		WithOption(clihelper.NewOption("registry", "", "Target registry host", clihelper.ArgString)).
		WithRequirement(clihelper.RequireOneOf("tag")).
		WithRequiredOptions().
		WithAction(pushAction)

	app := clihelper.New(root).
		Mount("imagectl", image).
		Mount("imagectl image", pull).
		Mount("imagectl image", push)

	audit, err := setupAudit(app)
	if err != nil {
		return nil, nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, nil, err
	}
	return app, audit, nil
}

// setupAudit wires the invocation audit trail when IMAGECTL_AUDIT_CONFIG
// points at a YAML configuration file.
func setupAudit(app *clihelper.App) (*clihelper.AuditLogger, error) {
	path := os.Getenv("IMAGECTL_AUDIT_CONFIG")
	if path == "" {
		return nil, nil
	}
	config, err := clihelper.LoadAuditConfig(path)
	if err != nil {
		return nil, err
	}
	audit, err := clihelper.NewAuditLogger(config)
	if err != nil {
		return nil, err
	}
	app.WithAudit(audit)
	return audit, nil
}

func pullAction(ctx context.Context, inv *clihelper.Invocation) error {
	repo := inv.Arg(0)
	if repo == "" {
		return fmt.Errorf("a repository name is required")
	}
	tag := inv.OptionValue("tag", "latest")
	if !inv.Has("quiet") {
		inv.Console.Write(fmt.Sprintf("Pulling %s:%s\n", repo, tag))
	}
	if inv.Has("verbose") {
		inv.Console.Write(fmt.Sprintf("retries=%s\n", inv.OptionValue("retries", "0")))
	}
	return nil
}

func pushAction(ctx context.Context, inv *clihelper.Invocation) error {
	repo := inv.Arg(0)
	if repo == "" {
		return fmt.Errorf("a repository name is required")
	}
	registry := inv.OptionValue("registry", "docker.io")
	inv.Console.Write(fmt.Sprintf("Pushing %s:%s to %s\n", repo, inv.OptionValue("tag", "latest"), registry))
	return nil
}
