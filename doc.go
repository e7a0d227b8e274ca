// Package clihelper provides a framework for building hierarchical
// command-line tools: a program is modeled as a tree of named commands,
// each optionally exposing sub-commands, typed options and cross-option
// requirement rules.
//
// # Architecture Overview
//
// The framework consists of five integrated pieces:
//  1. **Option Parser**: converts the raw argument vector into parsed options
//  2. **Requirement Engine**: declarative cross-option validation (mutual
//     exclusion, conditional requirement, at-least-one, numeric range)
//  3. **Dispatcher**: recursive descent over the command tree driven by
//     positional tokens
//  4. **Help Renderer**: contextual usage, command and option listings
//  5. **Audit Trail**: optional invocation logging with JSONL/SQLite backends
//
// # Quick Start
//
// Commands are registered statically on an App and resolved on demand
// through the registry, so the whole tree never needs eager construction:
//
//	root := clihelper.NewCommand("imagectl", "Manage container images").
//		WithHelpOnNoArgs()
//
//	pull := clihelper.NewCommand("pull", "Pull an image from a registry").
//		WithOption(clihelper.NewOption("tag", "t", "Image tag to pull", clihelper.ArgString)).
//		WithRequirement(clihelper.Range("retries", 0, 10)).
//		WithAction(func(ctx context.Context, inv *clihelper.Invocation) error {
//			fmt.Println("pulling", inv.Arg(0))
//			return nil
//		})
//
//	app := clihelper.New(root)
//	app.Mount("imagectl", pull)
//
//	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
//		fmt.Fprintln(os.Stderr, err)
//		os.Exit(1)
//	}
//
// The dispatcher strips each level's option tokens, validates the node's
// requirement rules (collecting every violation before reporting), and
// either recurses into the sub-command named by the next token or executes
// the leaf action. A leading -h/--help token at any level always renders
// help and wins over parsing and dispatch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package clihelper
