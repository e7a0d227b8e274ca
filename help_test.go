// help_test.go - Unit tests for the help renderer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"strings"
	"testing"
)

func helpChain() []*Command {
	root := NewCommand("imagectl", "Manage container images").
		WithOption(NewOption("debug", "d", "Enable debug output"))
	image := NewCommand("image", "Operate on a single image")
	pull := NewCommand("pull", "Pull an image from a registry").
		WithOption(NewOption("tag", "t", "Tag to pull", ArgString)).
		WithOption(NewOption("quiet", "q", "Suppress progress output")).
		WithRequirement(Exclusive("quiet", "tag")).
		WithRequiredOptions()
	return []*Command{root, image, pull}
}

func TestRenderHelpHeaderAndUsage(t *testing.T) {
	text, err := renderHelp(helpChain(), nil, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}

	lines := strings.Split(text, "\n")
	if lines[0] != "imagectl image pull" {
		t.Errorf("first line must be the path, got %q", lines[0])
	}
	if lines[1] != "Pull an image from a registry" {
		t.Errorf("second line must be the description, got %q", lines[1])
	}

	// The root declares optional options, image none, pull required ones;
	// a leaf gets no COMMAND placeholder.
	want := "Usage: imagectl [IMAGECTL_OPTIONS] image pull PULL_OPTIONS"
	if !strings.Contains(text, want) {
		t.Errorf("usage line missing.\nwant: %s\ngot:\n%s", want, text)
	}
}

func TestRenderHelpCommandPlaceholder(t *testing.T) {
	chain := helpChain()[:2] // imagectl image
	children := []Descriptor{
		{Name: "pull", Description: "Pull an image"},
		{Name: "push", Description: "Push an image"},
	}
	text, err := renderHelp(chain, children, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}
	if !strings.Contains(text, "Usage: imagectl [IMAGECTL_OPTIONS] image COMMAND") {
		t.Errorf("parent usage must end with COMMAND, got:\n%s", text)
	}
	if !strings.Contains(text, "Run 'imagectl image COMMAND --help' for more information on a command.") {
		t.Errorf("trailing hint missing:\n%s", text)
	}
}

func TestRenderHelpCommandsBlockColumns(t *testing.T) {
	chain := []*Command{NewCommand("tool", "A tool")}
	children := []Descriptor{
		{Name: "pull", Description: "Pull an image"},
		{Name: "longername", Description: "Has a longer name"},
	}
	text, err := renderHelp(chain, children, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}

	// Column width = longest child name + 4.
	if !strings.Contains(text, "  longername    Has a longer name") {
		t.Errorf("longest child must be followed by exactly 4 spaces:\n%s", text)
	}
	if !strings.Contains(text, "  pull          Pull an image") {
		t.Errorf("shorter child must be padded to the shared column:\n%s", text)
	}
}

func TestRenderHelpOptionsBlockPreservesDeclaredOrder(t *testing.T) {
	cmd := NewCommand("run", "Run").
		WithOption(NewOption("zeta", "z", "Declared first")).
		WithOption(NewOption("alpha", "a", "Declared second", ArgInt))
	text, err := renderHelp([]*Command{cmd}, nil, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}

	zeta := strings.Index(text, "--zeta")
	alpha := strings.Index(text, "--alpha")
	if zeta < 0 || alpha < 0 {
		t.Fatalf("options block incomplete:\n%s", text)
	}
	if zeta > alpha {
		t.Errorf("declared order must be preserved verbatim:\n%s", text)
	}
	// Value-kind placeholders are lower-case.
	if !strings.Contains(text, "-a, --alpha int") {
		t.Errorf("expected lower-case value placeholder:\n%s", text)
	}
}

func TestRenderHelpRequirementsBlock(t *testing.T) {
	text, err := renderHelp(helpChain(), nil, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}
	if !strings.Contains(text, "Option requirements:") {
		t.Errorf("requirements block missing:\n%s", text)
	}
	// Help lines always use canonical long names.
	if !strings.Contains(text, "quiet, tag are mutually exclusive.") {
		t.Errorf("requirement help line missing:\n%s", text)
	}
}

func TestRenderHelpOmitsEmptyBlocks(t *testing.T) {
	cmd := NewCommand("bare", "No options, no children")
	text, err := renderHelp([]*Command{cmd}, nil, 80)
	if err != nil {
		t.Fatalf("renderHelp failed: %v", err)
	}
	for _, block := range []string{"Commands:", "Options:", "Option requirements:"} {
		if strings.Contains(text, block) {
			t.Errorf("empty %q block must be omitted:\n%s", block, text)
		}
	}
}

func TestRenderHelpUndeclaredRuleNameFailsLoudly(t *testing.T) {
	cmd := &Command{
		name:         "bad",
		description:  "Bad",
		requirements: []Requirement{RequireOneOf("ghost")},
	}
	if _, err := renderHelp([]*Command{cmd}, nil, 80); err == nil {
		t.Error("rendering a rule over an undeclared option must fail")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 10)
	if !(len(lines) == 2 && lines[0] == "one two" && lines[1] == "three four") {
		t.Errorf("wrapText = %v", lines)
	}
	if got := wrapText("", 10); got != nil {
		t.Errorf("empty text must yield no lines, got %v", got)
	}
}
