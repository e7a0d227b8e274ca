// requirement.go: Declarative cross-option validation for cli-helper
//
// Requirements are a tagged variant over four rule kinds. A single
// validation function dispatches on the tag, runs every top-level rule and
// collects every violation before reporting, so a user sees all problems
// in one pass. IfPresentThen is the one deliberate exception: its inner
// rule is not evaluated at all while the trigger option is absent.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// requirementKind discriminates the rule variants.
type requirementKind int

const (
	reqExclusive requirementKind = iota
	reqRequireOneOf
	reqIfPresentThen
	reqRange
)

// Requirement is one declarative cross-option constraint, evaluated after
// parsing against the options actually supplied. Rules reference options by
// bare short or long name; a reference to a name the command never declared
// is a configuration error, not a runtime input error, and fails loudly at
// setup, validation or help-render time.
type Requirement struct {
	kind     requirementKind
	names    []string
	min, max float64
	inner    *Requirement
}

// RequirementError describes one violated rule instance as a single
// human-readable message. Violations are accumulated in rule evaluation
// order and surfaced together, never truncated to the first.
type RequirementError struct {
	Message string
}

// RequirementViolationError aggregates every violation found in one
// validation pass. It is the error value Run returns when parsing succeeds
// but the supplied options break one or more declared requirements.
type RequirementViolationError struct {
	Violations []RequirementError
}

// Error joins the individual violation messages, one per line.
func (e *RequirementViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "\n")
}

// Exclusive declares that at most one of the named options may be supplied.
// It is violated when two or more are present; the message lists the
// literal tokens the user actually typed.
func Exclusive(names ...string) Requirement {
	return Requirement{kind: reqExclusive, names: names}
}

// RequireOneOf declares that at least one of the named options must be
// supplied. With a single name the message reads "<name> is required.";
// with several, "<names> at least one is required."
func RequireOneOf(names ...string) Requirement {
	return Requirement{kind: reqRequireOneOf, names: names}
}

// IfPresentThen makes inner conditional on the named option: while the
// option is absent the inner rule is never evaluated; once present, every
// inner violation is wrapped as "If <name> is present then <message>".
// Inner may be any variant, including another IfPresentThen.
func IfPresentThen(name string, inner Requirement) Requirement {
	return Requirement{kind: reqIfPresentThen, names: []string{name}, inner: &inner}
}

// Range declares that the named option's first value, when the option is
// supplied, must parse as a floating-point number inside the closed
// interval [min, max].
//
// min must be strictly less than max; anything else is a programming
// error and panics at construction, in the same register as
// regexp.MustCompile.
func Range(name string, min, max float64) Requirement {
	if min >= max {
		panic(errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("range requirement for %q: min (%g) must be less than max (%g)", name, min, max)))
	}
	return Requirement{kind: reqRange, names: []string{name}, min: min, max: max}
}

// validateRequirements evaluates every rule against the parsed options and
// returns the full ordered violation list. The returned error is reserved
// for configuration errors (a rule referencing an undeclared option) and is
// never produced by user input.
func validateRequirements(defs []*OptionDefinition, reqs []Requirement, parsed []*ParsedOption) ([]RequirementError, error) {
	var violations []RequirementError
	for _, r := range reqs {
		msgs, err := r.validate(defs, parsed)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			violations = append(violations, RequirementError{Message: m})
		}
	}
	return violations, nil
}

// validate evaluates one rule and returns its violation messages.
func (r Requirement) validate(defs []*OptionDefinition, parsed []*ParsedOption) ([]string, error) {
	switch r.kind {
	case reqExclusive:
		return r.validateExclusive(defs, parsed)
	case reqRequireOneOf:
		return r.validateRequireOneOf(defs, parsed)
	case reqIfPresentThen:
		return r.validateIfPresentThen(defs, parsed)
	case reqRange:
		return r.validateRange(defs, parsed)
	default:
		return nil, errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown requirement kind %d", r.kind))
	}
}

func (r Requirement) validateExclusive(defs []*OptionDefinition, parsed []*ParsedOption) ([]string, error) {
	var tokens []string
	for _, name := range r.names {
		if _, err := r.definitionFor(defs, name); err != nil {
			return nil, err
		}
		if p := lookupParsed(parsed, name); p != nil {
			tokens = append(tokens, p.Token)
		}
	}
	if len(tokens) >= 2 {
		return []string{fmt.Sprintf("%s are mutually exclusive.", strings.Join(tokens, ", "))}, nil
	}
	return nil, nil
}

func (r Requirement) validateRequireOneOf(defs []*OptionDefinition, parsed []*ParsedOption) ([]string, error) {
	longNames, err := r.longNames(defs)
	if err != nil {
		return nil, err
	}
	for _, name := range r.names {
		if lookupParsed(parsed, name) != nil {
			return nil, nil
		}
	}
	if len(longNames) == 1 {
		return []string{fmt.Sprintf("%s is required.", longNames[0])}, nil
	}
	return []string{fmt.Sprintf("%s at least one is required.", strings.Join(longNames, ", "))}, nil
}

func (r Requirement) validateIfPresentThen(defs []*OptionDefinition, parsed []*ParsedOption) ([]string, error) {
	def, err := r.definitionFor(defs, r.names[0])
	if err != nil {
		return nil, err
	}
	if lookupParsed(parsed, r.names[0]) == nil {
		return nil, nil
	}
	inner, err := r.inner.validate(defs, parsed)
	if err != nil {
		return nil, err
	}
	wrapped := make([]string, len(inner))
	for i, msg := range inner {
		wrapped[i] = fmt.Sprintf("If %s is present then %s", def.LongName, msg)
	}
	return wrapped, nil
}

func (r Requirement) validateRange(defs []*OptionDefinition, parsed []*ParsedOption) ([]string, error) {
	def, err := r.definitionFor(defs, r.names[0])
	if err != nil {
		return nil, err
	}
	p := lookupParsed(parsed, r.names[0])
	if p == nil {
		return nil, nil
	}
	if len(p.Args) == 0 {
		return nil, errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("range requirement references option %q which takes no value", r.names[0]))
	}
	value, parseErr := strconv.ParseFloat(p.Args[0], 64)
	if parseErr != nil {
		return []string{fmt.Sprintf("%s has an invalid value: %s.", p.Token, p.Args[0])}, nil
	}
	if value < r.min || value > r.max {
		return []string{fmt.Sprintf("%s must be in range [%g, %g].", def.LongName, r.min, r.max)}, nil
	}
	return nil, nil
}

// helpLine renders the rule for the "Option requirements:" help block,
// always using canonical long names regardless of what the user typed.
func (r Requirement) helpLine(defs []*OptionDefinition) (string, error) {
	switch r.kind {
	case reqExclusive:
		longNames, err := r.longNames(defs)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s are mutually exclusive.", strings.Join(longNames, ", ")), nil

	case reqRequireOneOf:
		longNames, err := r.longNames(defs)
		if err != nil {
			return "", err
		}
		if len(longNames) == 1 {
			return fmt.Sprintf("%s is required.", longNames[0]), nil
		}
		return fmt.Sprintf("%s at least one is required.", strings.Join(longNames, ", ")), nil

	case reqIfPresentThen:
		def, err := r.definitionFor(defs, r.names[0])
		if err != nil {
			return "", err
		}
		inner, err := r.inner.helpLine(defs)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("If %s is present then %s", def.LongName, inner), nil

	case reqRange:
		def, err := r.definitionFor(defs, r.names[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s must be in range [%g, %g].", def.LongName, r.min, r.max), nil

	default:
		return "", errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown requirement kind %d", r.kind))
	}
}

// longNames maps every referenced name to its canonical long form.
func (r Requirement) longNames(defs []*OptionDefinition) ([]string, error) {
	longNames := make([]string, len(r.names))
	for i, name := range r.names {
		def, err := r.definitionFor(defs, name)
		if err != nil {
			return nil, err
		}
		longNames[i] = def.LongName
	}
	return longNames, nil
}

// referencedNames returns every option name the rule (including nested
// rules) refers to, for setup-time validation against the declared options.
func (r Requirement) referencedNames() []string {
	names := append([]string(nil), r.names...)
	if r.inner != nil {
		names = append(names, r.inner.referencedNames()...)
	}
	return names
}

// definitionFor resolves a referenced name, failing loudly when the rule
// points at an option the command never declared.
func (r Requirement) definitionFor(defs []*OptionDefinition, name string) (*OptionDefinition, error) {
	if def := findDefinition(defs, name); def != nil {
		return def, nil
	}
	return nil, errors.New(ErrCodeInvalidConfig,
		fmt.Sprintf("requirement references undeclared option %q", name))
}

// lookupParsed finds the parsed occurrence of the option named name.
// At most one occurrence per logical option exists per invocation since the
// parser rejects duplicates.
func lookupParsed(parsed []*ParsedOption, name string) *ParsedOption {
	for _, p := range parsed {
		if p.Definition.HasName(name) {
			return p
		}
	}
	return nil
}
