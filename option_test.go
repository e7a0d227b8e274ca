// option_test.go - Unit tests for option declaration and token parsing
//
// Test Philosophy:
// - CI-friendly: fast, no I/O
// - Unit tests: exercise the parser contract one property at a time
// - Edge cases: truncated vectors, duplicates, unknown tokens
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"reflect"
	"strings"
	"testing"
)

func pullOptions() []*OptionDefinition {
	return []*OptionDefinition{
		NewOption("tag", "t", "Tag to pull", ArgString),
		NewOption("quiet", "q", "Suppress output"),
		NewOption("point", "p", "Coordinate", ArgFloat, ArgFloat),
	}
}

func TestParseOptionsLongAndShortForms(t *testing.T) {
	defs := pullOptions()

	result, err := parseOptions(defs, []string{"--tag", "latest", "-q", "myrepo"})
	if err != nil {
		t.Fatalf("parseOptions failed: %v", err)
	}
	if result.Consumed != 3 {
		t.Fatalf("expected 3 tokens consumed, got %d", result.Consumed)
	}
	if len(result.Options) != 2 {
		t.Fatalf("expected 2 parsed options, got %d", len(result.Options))
	}

	tag := result.Option("tag")
	if tag == nil {
		t.Fatal("tag option not parsed")
	}
	if tag.Token != "--tag" {
		t.Errorf("expected literal token --tag, got %q", tag.Token)
	}
	if !reflect.DeepEqual(tag.Args, []string{"latest"}) {
		t.Errorf("expected tag args [latest], got %v", tag.Args)
	}

	quiet := result.Option("q")
	if quiet == nil {
		t.Fatal("quiet option not found by short name")
	}
	if quiet.Token != "-q" {
		t.Errorf("expected literal token -q, got %q", quiet.Token)
	}
	if len(quiet.Args) != 0 {
		t.Errorf("boolean option must have empty args, got %v", quiet.Args)
	}
}

func TestParseOptionsUnknownTokenTerminatesParsing(t *testing.T) {
	defs := pullOptions()

	result, err := parseOptions(defs, []string{"-q", "myrepo", "--tag", "latest"})
	if err != nil {
		t.Fatalf("parseOptions failed: %v", err)
	}
	// Options after the first positional token are not interleaved.
	if result.Consumed != 1 {
		t.Fatalf("expected parsing to stop at 'myrepo', consumed %d", result.Consumed)
	}
	if len(result.Options) != 1 {
		t.Fatalf("expected 1 parsed option, got %d", len(result.Options))
	}
}

func TestParseOptionsMultiValue(t *testing.T) {
	defs := pullOptions()

	result, err := parseOptions(defs, []string{"-p", "1.5", "2.5", "rest"})
	if err != nil {
		t.Fatalf("parseOptions failed: %v", err)
	}
	point := result.Option("point")
	if point == nil {
		t.Fatal("point option not parsed")
	}
	if !reflect.DeepEqual(point.Args, []string{"1.5", "2.5"}) {
		t.Errorf("expected [1.5 2.5], got %v", point.Args)
	}
	if result.Consumed != 3 {
		t.Errorf("expected 3 tokens consumed, got %d", result.Consumed)
	}
}

func TestParseOptionsNoCoercionAtParseTime(t *testing.T) {
	defs := pullOptions()

	// A non-numeric token is consumed verbatim for a float-kinded option;
	// it only becomes an error if a rule inspects it.
	result, err := parseOptions(defs, []string{"-p", "abc", "def"})
	if err != nil {
		t.Fatalf("parse must not coerce values: %v", err)
	}
	if !reflect.DeepEqual(result.Option("point").Args, []string{"abc", "def"}) {
		t.Errorf("value tokens must be kept verbatim, got %v", result.Option("point").Args)
	}
}

func TestParseOptionsTruncatedArgumentList(t *testing.T) {
	defs := pullOptions()

	for _, args := range [][]string{
		{"--tag"},
		{"-p", "1.5"},
		{"-q", "--tag"},
	} {
		if _, err := parseOptions(defs, args); err == nil {
			t.Errorf("expected truncated parse error for %v", args)
		}
	}
}

func TestParseOptionsRejectsDuplicates(t *testing.T) {
	defs := pullOptions()

	_, err := parseOptions(defs, []string{"--tag", "a", "-t", "b"})
	if err == nil {
		t.Fatal("expected duplicate option to be rejected")
	}
	if !strings.Contains(err.Error(), "more than once") {
		t.Errorf("unexpected duplicate error message: %v", err)
	}
}

func TestParseOptionsEmptyVector(t *testing.T) {
	result, err := parseOptions(pullOptions(), nil)
	if err != nil {
		t.Fatalf("parseOptions failed: %v", err)
	}
	if result.Consumed != 0 || len(result.Options) != 0 {
		t.Errorf("empty vector must parse to an empty result, got %+v", result)
	}
}

func TestMatchTokenRequiresExactName(t *testing.T) {
	def := NewOption("tag", "t", "Tag", ArgString)

	for token, want := range map[string]bool{
		"--tag":  true,
		"-t":     true,
		"--t":    false,
		"-tag":   false,
		"--tags": false,
		"tag":    false,
	} {
		if got := def.matchToken(token); got != want {
			t.Errorf("matchToken(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestOptionLabel(t *testing.T) {
	cases := []struct {
		def  *OptionDefinition
		want string
	}{
		{NewOption("tag", "t", "", ArgString), "-t, --tag string"},
		{NewOption("quiet", "", ""), "--quiet"},
		{NewOption("point", "p", "", ArgFloat, ArgInt), "-p, --point float int"},
	}
	for _, c := range cases {
		if got := c.def.label(); got != c.want {
			t.Errorf("label() = %q, want %q", got, c.want)
		}
	}
}
