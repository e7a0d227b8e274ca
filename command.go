// command.go: Command tree nodes for cli-helper
//
// A Command is one entry in the command tree: a derived lowercase name, a
// description, declared options and requirement rules, and an optional
// action. Commands are immutable after registration; per-invocation parse
// state lives in a call-scoped ParseResult threaded through dispatch, never
// on the node.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"context"
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// ActionFunc is the executable body of a leaf command. It receives the
// invocation's parsed options, remaining positional arguments and console.
// The dispatcher itself never blocks; only the action may.
type ActionFunc func(ctx context.Context, inv *Invocation) error

// Invocation carries everything a command action needs for one run.
type Invocation struct {
	// Path is the ordered command names from root to the executing command.
	Path []string

	// Options are the parsed options of the executing command, in the
	// order they appeared on the command line.
	Options []*ParsedOption

	// Args are the positional arguments left after option parsing.
	Args []string

	// Console is the I/O service of the running App.
	Console Console
}

// Option returns the parsed occurrence of the named option, or nil.
func (inv *Invocation) Option(name string) *ParsedOption {
	return lookupParsed(inv.Options, name)
}

// Has reports whether the named option was supplied.
func (inv *Invocation) Has(name string) bool {
	return inv.Option(name) != nil
}

// OptionValue returns the first value of the named option, or fallback
// when the option is absent or takes no value.
func (inv *Invocation) OptionValue(name, fallback string) string {
	if p := inv.Option(name); p != nil && len(p.Args) > 0 {
		return p.Args[0]
	}
	return fallback
}

// Arg returns the i-th positional argument, or the empty string when out
// of range.
func (inv *Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Command is one node of the command tree. Build it with NewCommand and
// the fluent With* setters, then register it on an App; setup problems
// (duplicate option names, rules referencing undeclared options) are
// reported as configuration errors when the App validates, before any
// user input is examined.
type Command struct {
	name               string
	description        string
	options            []*OptionDefinition
	requirements       []Requirement
	hasRequiredOptions bool
	helpOnNoArgs       bool
	action             ActionFunc
}

// NewCommand creates a command node. The name is lowercased; use
// DeriveName to map a conventional type name such as "PullCommand" to its
// command name.
func NewCommand(name, description string) *Command {
	return &Command{
		name:        strings.ToLower(name),
		description: description,
	}
}

// DeriveName strips the conventional "Command" suffix from a type name and
// lowercases the remainder: DeriveName("PullCommand") == "pull".
func DeriveName(typeName string) string {
	return strings.ToLower(strings.TrimSuffix(typeName, "Command"))
}

// Name returns the command's derived lowercase name.
func (c *Command) Name() string { return c.name }

// Description returns the command's one-line description.
func (c *Command) Description() string { return c.description }

// Options returns the declared option definitions in declaration order.
func (c *Command) Options() []*OptionDefinition { return c.options }

// Requirements returns the declared requirement rules.
func (c *Command) Requirements() []Requirement { return c.requirements }

// HasOptions reports whether the command declares any options.
func (c *Command) HasOptions() bool { return len(c.options) > 0 }

// HasRequiredOptions reports whether at least one declared option must be
// supplied; implies HasOptions.
func (c *Command) HasRequiredOptions() bool { return c.hasRequiredOptions }

// WithOption appends an option definition. Declaration order is preserved
// verbatim in help output.
func (c *Command) WithOption(def *OptionDefinition) *Command {
	c.options = append(c.options, def)
	return c
}

// WithRequirement appends a requirement rule.
func (c *Command) WithRequirement(r Requirement) *Command {
	c.requirements = append(c.requirements, r)
	return c
}

// WithRequiredOptions marks the command's options as mandatory for the
// usage line: NAME_OPTIONS instead of [NAME_OPTIONS].
func (c *Command) WithRequiredOptions() *Command {
	c.hasRequiredOptions = true
	return c
}

// WithHelpOnNoArgs makes the command render help when invoked with an
// empty argument list instead of dispatching.
func (c *Command) WithHelpOnNoArgs() *Command {
	c.helpOnNoArgs = true
	return c
}

// WithAction sets the leaf action. A leaf without an action renders help.
func (c *Command) WithAction(fn ActionFunc) *Command {
	c.action = fn
	return c
}

// validate checks the command's static configuration: a non-empty name and
// description, unique option names, required implies has, and every rule
// reference resolvable to a declared option. Violations are programming
// errors and never reach end users at runtime.
func (c *Command) validate() error {
	if c.name == "" {
		return errors.New(ErrCodeInvalidConfig, "command name cannot be empty")
	}
	if c.description == "" {
		return errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("command %q has no description", c.name))
	}

	seen := make(map[string]string, len(c.options)*2)
	for _, def := range c.options {
		if def.LongName == "" {
			return errors.New(ErrCodeInvalidConfig,
				fmt.Sprintf("command %q declares an option with an empty long name", c.name))
		}
		for _, name := range []string{def.LongName, def.ShortName} {
			if name == "" {
				continue
			}
			if other, dup := seen[name]; dup {
				return errors.New(ErrCodeInvalidConfig,
					fmt.Sprintf("command %q declares option name %q twice (also used by --%s)",
						c.name, name, other))
			}
			seen[name] = def.LongName
		}
	}

	if c.hasRequiredOptions && !c.HasOptions() {
		return errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("command %q marks options as required but declares none", c.name))
	}

	for _, r := range c.requirements {
		for _, name := range r.referencedNames() {
			if findDefinition(c.options, name) == nil {
				return errors.New(ErrCodeInvalidConfig,
					fmt.Sprintf("command %q: requirement references undeclared option %q", c.name, name))
			}
		}
	}

	return nil
}
