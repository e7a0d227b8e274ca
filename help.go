// help.go: Contextual help rendering for cli-helper
//
// Rendering is a pure function of the resolved ancestor chain, the node's
// child descriptors and the output width. Block order and column policy:
// path and description, usage line, Commands block, Options block (declared
// order preserved verbatim), Option requirements block, trailing hints.
// Column width for each block is computed independently as the longest
// label plus four spaces.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"fmt"
	"strings"
)

const columnGap = 4

// renderHelp formats the full help text for the last command of chain.
// chain is the ordered ancestor list from root to the node; children are
// its resolved child descriptors.
func renderHelp(chain []*Command, children []Descriptor, width int) (string, error) {
	if len(chain) == 0 {
		return "", nil
	}
	node := chain[len(chain)-1]

	names := make([]string, len(chain))
	for i, c := range chain {
		names[i] = c.Name()
	}
	path := strings.Join(names, " ")

	var b strings.Builder

	// Path and description.
	b.WriteString(path)
	b.WriteString("\n")
	b.WriteString(node.Description())
	b.WriteString("\n\n")

	// Usage line.
	b.WriteString("Usage: ")
	b.WriteString(usageLine(chain, len(children) > 0))
	b.WriteString("\n")

	// Commands block.
	if len(children) > 0 {
		b.WriteString("\nCommands:\n")
		colWidth := 0
		for _, d := range children {
			if len(d.Name) > colWidth {
				colWidth = len(d.Name)
			}
		}
		colWidth += columnGap
		for _, d := range children {
			writeColumns(&b, d.Name, d.Description, colWidth, width)
		}
	}

	// Options block, declared order preserved verbatim.
	if node.HasOptions() {
		b.WriteString("\nOptions:\n")
		colWidth := 0
		for _, def := range node.Options() {
			if len(def.label()) > colWidth {
				colWidth = len(def.label())
			}
		}
		colWidth += columnGap
		for _, def := range node.Options() {
			writeColumns(&b, def.label(), def.Description, colWidth, width)
		}
	}

	// Option requirements block.
	if len(node.Requirements()) > 0 {
		b.WriteString("\nOption requirements:\n")
		for _, r := range node.Requirements() {
			line, err := r.helpLine(node.Options())
			if err != nil {
				return "", err
			}
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	// Trailing hints.
	if len(children) > 0 {
		fmt.Fprintf(&b, "\nRun '%s COMMAND --help' for more information on a command.\n", path)
	}

	return b.String(), nil
}

// usageLine builds the usage string: each command of the chain contributes
// its name plus, when it declares options, NAME_OPTIONS (required) or
// [NAME_OPTIONS] (optional); a node with sub-commands ends with the
// COMMAND placeholder.
func usageLine(chain []*Command, hasChildren bool) string {
	var parts []string
	for _, c := range chain {
		parts = append(parts, c.Name())
		if c.HasOptions() {
			placeholder := strings.ToUpper(c.Name()) + "_OPTIONS"
			if c.HasRequiredOptions() {
				parts = append(parts, placeholder)
			} else {
				parts = append(parts, "["+placeholder+"]")
			}
		}
	}
	if hasChildren {
		parts = append(parts, "COMMAND")
	}
	return strings.Join(parts, " ")
}

// writeColumns emits one two-column row, wrapping the description to the
// output width with a hanging indent aligned to the second column.
func writeColumns(b *strings.Builder, label, desc string, colWidth, width int) {
	b.WriteString("  ")
	b.WriteString(label)
	b.WriteString(strings.Repeat(" ", colWidth-len(label)))

	avail := width - colWidth - 2
	if avail < 20 {
		avail = 20
	}
	lines := wrapText(desc, avail)
	for i, line := range lines {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", colWidth+2))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(lines) == 0 {
		b.WriteString("\n")
	}
}

// wrapText breaks text into lines of at most limit columns on word
// boundaries. Words longer than the limit are emitted unbroken.
func wrapText(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > limit {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
