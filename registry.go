// registry.go: Static command registry for cli-helper
//
// The registry is the single source of truth for parent/child
// relationships between command nodes. It is populated explicitly at
// startup (no reflection, no type scanning) and resolves descriptors to
// runnable Commands on demand through factory closures, so registering a
// deep tree never forces eager construction of every node.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agilira/go-errors"
)

// Descriptor identifies a registered command without constructing it.
type Descriptor struct {
	Name        string
	Description string
}

// Factory produces (or fetches) the runnable Command for a descriptor.
// It runs at most once per registration; the result is memoized.
type Factory func() (*Command, error)

// Registry supplies child command descriptors per parent node and the
// inverse parent relation. Ordering of children is deterministic
// (lexicographic by name) since it governs help listing order.
type Registry interface {
	// ChildrenOf returns the ordered child descriptors of the command at
	// the given path (space-joined names from root).
	ChildrenOf(path string) []Descriptor

	// ParentOf returns the descriptor owning the level above the command
	// at the given path, or false at the root.
	ParentOf(path string) (Descriptor, bool)
}

// registration pairs a descriptor with its factory and memoized result.
type registration struct {
	descriptor Descriptor
	factory    Factory
	resolved   *Command
}

// resolve constructs the command on first use and validates its static
// configuration before it can see any user input.
func (r *registration) resolve() (*Command, error) {
	if r.resolved != nil {
		return r.resolved, nil
	}
	cmd, err := r.factory()
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig,
			fmt.Sprintf("factory for command %q failed", r.descriptor.Name))
	}
	if cmd == nil {
		return nil, errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("factory for command %q returned no command", r.descriptor.Name))
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	r.resolved = cmd
	return cmd, nil
}

// treeRegistry is the statically-registered Registry implementation used
// by App. Not safe for concurrent mutation; populate it fully before
// dispatching.
type treeRegistry struct {
	rootPath string
	byPath   map[string]*registration
	children map[string][]*registration
	parent   map[string]string
}

func newTreeRegistry(root *registration) *treeRegistry {
	rootPath := root.descriptor.Name
	return &treeRegistry{
		rootPath: rootPath,
		byPath:   map[string]*registration{rootPath: root},
		children: make(map[string][]*registration),
		parent:   make(map[string]string),
	}
}

// add registers a command under the parent path, keeping each sibling list
// sorted lexicographically.
func (t *treeRegistry) add(parentPath string, reg *registration) error {
	if _, ok := t.byPath[parentPath]; !ok {
		return errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("cannot mount %q: parent path %q is not registered",
				reg.descriptor.Name, parentPath))
	}
	path := parentPath + " " + reg.descriptor.Name
	if _, dup := t.byPath[path]; dup {
		return errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("command path %q registered twice", path))
	}

	t.byPath[path] = reg
	t.parent[path] = parentPath

	siblings := append(t.children[parentPath], reg)
	sort.Slice(siblings, func(i, j int) bool {
		return siblings[i].descriptor.Name < siblings[j].descriptor.Name
	})
	t.children[parentPath] = siblings
	return nil
}

// ChildrenOf implements Registry.
func (t *treeRegistry) ChildrenOf(path string) []Descriptor {
	regs := t.children[path]
	out := make([]Descriptor, len(regs))
	for i, r := range regs {
		out[i] = r.descriptor
	}
	return out
}

// ParentOf implements Registry.
func (t *treeRegistry) ParentOf(path string) (Descriptor, bool) {
	parentPath, ok := t.parent[path]
	if !ok {
		return Descriptor{}, false
	}
	return t.byPath[parentPath].descriptor, true
}

// child locates the registration of the named direct child.
func (t *treeRegistry) child(parentPath, name string) *registration {
	for _, r := range t.children[parentPath] {
		if r.descriptor.Name == name {
			return r
		}
	}
	return nil
}

// commandPath recomputes the ordered ancestor chain from root to the node
// at path by walking the parent relation one level at a time, stopping at
// the first level with no owning command. The chain is derived on every
// call, never cached across structural changes; it is used only for
// display.
func (t *treeRegistry) commandPath(path string) []string {
	var names []string
	for cur := path; cur != ""; {
		reg, ok := t.byPath[cur]
		if !ok {
			break
		}
		names = append([]string{reg.descriptor.Name}, names...)
		parentPath, ok := t.parent[cur]
		if !ok {
			break
		}
		cur = parentPath
	}
	return names
}

// displayPath renders the chain for diagnostics and help headers.
func (t *treeRegistry) displayPath(path string) string {
	return strings.Join(t.commandPath(path), " ")
}
