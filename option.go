// option.go: Option declaration and token parsing for cli-helper
//
// This file implements the option layer of the framework: the declared
// shape of an option (names, arity, argument kinds) and the parser that
// consumes a maximal prefix of recognized option tokens from the raw
// argument vector of a single command level.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// ArgKind identifies the expected type of one option value slot.
//
// Kinds are declarative only: the parser consumes value tokens verbatim as
// strings and never coerces them. Coercion is deferred to requirement
// validation (Range) or to the executing command, so two options can
// disagree about whether a string "looks like a number" without that being
// an error until a rule inspects it.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
	ArgFloat
)

// String returns the lower-case placeholder used in help output.
func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	default:
		return "unknown"
	}
}

// OptionDefinition declares one option accepted by a command.
//
// Names are stored bare (without dash prefixes): the parser recognizes
// "--" + LongName and "-" + ShortName. The long name is canonical and must
// be unique within a command; the short name is an optional alias. An
// option with no argument kinds is a boolean flag whose presence alone
// carries meaning. Immutable once declared.
type OptionDefinition struct {
	LongName    string
	ShortName   string
	Description string
	ArgKinds    []ArgKind
}

// NewOption declares an option with a canonical long name, an optional
// short alias (empty string for none) and zero or more value slots.
func NewOption(long, short, description string, kinds ...ArgKind) *OptionDefinition {
	return &OptionDefinition{
		LongName:    long,
		ShortName:   short,
		Description: description,
		ArgKinds:    kinds,
	}
}

// Arity returns the number of value tokens the option consumes.
func (d *OptionDefinition) Arity() int {
	return len(d.ArgKinds)
}

// HasName reports whether name equals the option's short or long name.
// Rule references and lookups use bare names, never dash-prefixed tokens.
func (d *OptionDefinition) HasName(name string) bool {
	return name == d.LongName || (d.ShortName != "" && name == d.ShortName)
}

// matchToken returns true when a command-line token selects this option,
// i.e. the token is "--" + long name or "-" + short name exactly.
func (d *OptionDefinition) matchToken(token string) bool {
	if strings.HasPrefix(token, "--") {
		return token[2:] == d.LongName
	}
	if strings.HasPrefix(token, "-") {
		return d.ShortName != "" && token[1:] == d.ShortName
	}
	return false
}

// label renders the canonical help label, e.g. "-t, --tag string".
func (d *OptionDefinition) label() string {
	var b strings.Builder
	if d.ShortName != "" {
		b.WriteString("-")
		b.WriteString(d.ShortName)
		b.WriteString(", ")
	}
	b.WriteString("--")
	b.WriteString(d.LongName)
	for _, k := range d.ArgKinds {
		b.WriteString(" ")
		b.WriteString(k.String())
	}
	return b.String()
}

// ParsedOption is one concrete occurrence of an option on the command line.
//
// Token preserves the literal form the user typed (short or long) for
// diagnostics; Args holds the value tokens consumed for it, in order, empty
// for boolean flags. Read-only after parsing, scoped to one parse pass.
type ParsedOption struct {
	Definition *OptionDefinition
	Token      string
	Args       []string
}

// ParseResult is the call-scoped outcome of one option parse pass:
// the options encountered, in order, and the number of argument tokens
// consumed from the front of the vector. It is threaded explicitly through
// dispatch rather than stored on the command, so a single Command value
// stays safe to describe concurrently even though each invocation is
// single-threaded.
type ParseResult struct {
	Options  []*ParsedOption
	Consumed int
}

// Option returns the parsed occurrence of the option whose short or long
// name equals name, or nil when absent.
func (r *ParseResult) Option(name string) *ParsedOption {
	for _, p := range r.Options {
		if p.Definition.HasName(name) {
			return p
		}
	}
	return nil
}

// Has reports whether the named option was supplied.
func (r *ParseResult) Has(name string) bool {
	return r.Option(name) != nil
}

// parseOptions consumes the maximal prefix of args consisting of recognized
// option tokens, each followed by its required value tokens.
//
// The first token that matches no declared option terminates parsing; the
// remainder is sub-command or positional input. Parsing is zero-lookahead
// and never reorders tokens. A value-taking option with fewer trailing
// tokens than its arity is a fatal parse error, as is supplying the same
// option twice (duplicates are rejected rather than silently overwritten).
func parseOptions(defs []*OptionDefinition, args []string) (*ParseResult, error) {
	result := &ParseResult{}

	i := 0
	for i < len(args) {
		def := matchDefinition(defs, args[i])
		if def == nil {
			break
		}

		if result.Has(def.LongName) {
			return nil, errors.New(ErrCodeParseError,
				fmt.Sprintf("option %s supplied more than once", args[i]))
		}

		arity := def.Arity()
		if i+1+arity > len(args) {
			return nil, errors.New(ErrCodeParseError,
				fmt.Sprintf("option %s requires %d value(s) but the argument list ends after %d",
					args[i], arity, len(args)-i-1))
		}

		parsed := &ParsedOption{
			Definition: def,
			Token:      args[i],
			Args:       args[i+1 : i+1+arity],
		}
		result.Options = append(result.Options, parsed)
		i += 1 + arity
	}

	result.Consumed = i
	return result, nil
}

// matchDefinition resolves a command-line token to its declaration.
func matchDefinition(defs []*OptionDefinition, token string) *OptionDefinition {
	for _, d := range defs {
		if d.matchToken(token) {
			return d
		}
	}
	return nil
}

// findDefinition resolves a bare option name (short or long) to its
// declaration. Used by the requirement engine and help renderer; a miss is
// a configuration error surfaced by the caller, never silently ignored.
func findDefinition(defs []*OptionDefinition, name string) *OptionDefinition {
	for _, d := range defs {
		if d.HasName(name) {
			return d
		}
	}
	return nil
}
