// clihelper.go: Application root and recursive command dispatcher
//
// The App owns the statically-registered command tree and the dispatch
// state machine. Each level of the recursion intercepts a leading help
// token, strips its own option prefix, validates requirement rules
// (collecting every violation), and either recurses into the sub-command
// named by the next token or executes the leaf action.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"context"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for cli-helper operations
const (
	ErrCodeParseError     = "CLIHELPER_PARSE_ERROR"
	ErrCodeUnknownCommand = "CLIHELPER_UNKNOWN_COMMAND"
	ErrCodeInvalidConfig  = "CLIHELPER_INVALID_CONFIG"

	// ErrCodeInvalidAuditConfig covers audit subsystem setup failures.
	ErrCodeInvalidAuditConfig = "CLIHELPER_INVALID_AUDIT_CONFIG"
)

// App is a runnable command-line application: a command tree plus the
// console and optional audit trail shared by every invocation.
//
// Populate the tree fully before calling Run. An App value is not meant
// for concurrent invocations; run one argument vector at a time.
type App struct {
	registry *treeRegistry
	console  Console
	audit    *AuditLogger
	setupErr error
}

// New creates an App rooted at the given command.
func New(root *Command) *App {
	app := &App{console: NewConsole()}
	if root == nil {
		app.setupErr = errors.New(ErrCodeInvalidConfig, "root command cannot be nil")
		return app
	}
	app.registry = newTreeRegistry(&registration{
		descriptor: Descriptor{Name: root.Name(), Description: root.Description()},
		factory:    func() (*Command, error) { return root, nil },
	})
	return app
}

// Mount registers a pre-built command under the parent path (space-joined
// names from root, e.g. "imagectl image"). Returns the App for chaining;
// registration problems are deferred configuration errors reported by
// Validate or the next Run.
func (a *App) Mount(parentPath string, cmd *Command) *App {
	if cmd == nil {
		a.recordSetupErr(errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("cannot mount nil command under %q", parentPath)))
		return a
	}
	return a.MountFactory(parentPath,
		Descriptor{Name: cmd.Name(), Description: cmd.Description()},
		func() (*Command, error) { return cmd, nil })
}

// MountFactory registers a command lazily: the factory runs the first time
// dispatch (or help) reaches the descriptor, enabling explicit dependency
// injection without eager construction of the whole tree.
func (a *App) MountFactory(parentPath string, d Descriptor, f Factory) *App {
	if a.registry == nil {
		return a
	}
	if f == nil {
		a.recordSetupErr(errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("command %q registered without a factory", d.Name)))
		return a
	}
	if err := a.registry.add(parentPath, &registration{descriptor: d, factory: f}); err != nil {
		a.recordSetupErr(err)
	}
	return a
}

// recordSetupErr keeps the first configuration error hit while building
// the tree; fluent mounting stays chainable and the error surfaces from
// Validate or the next Run.
func (a *App) recordSetupErr(err error) {
	if a.setupErr == nil {
		a.setupErr = err
	}
}

// WithConsole replaces the I/O service (useful for tests and embedding).
func (a *App) WithConsole(c Console) *App {
	if c != nil {
		a.console = c
	}
	return a
}

// WithAudit enables invocation audit logging for all dispatched commands.
func (a *App) WithAudit(logger *AuditLogger) *App {
	a.audit = logger
	return a
}

// Registry exposes the populated command registry for read access.
func (a *App) Registry() Registry {
	return a.registry
}

// Validate checks the tree's static configuration: registration errors
// recorded during mounting plus the root command's own declaration.
// Lazily-registered commands are validated when their factory first runs.
func (a *App) Validate() error {
	if a.setupErr != nil {
		return a.setupErr
	}
	root := a.registry.byPath[a.registry.rootPath]
	_, err := root.resolve()
	return err
}

// Run resolves the argument vector against the command tree and executes
// the selected command, rendering help where requested. This is the sole
// entry point; args excludes the program name. Exit-code mapping and
// top-level error printing are left to the caller.
func (a *App) Run(ctx context.Context, args []string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	root, _ := a.registry.byPath[a.registry.rootPath].resolve()
	return a.dispatch(ctx, root, a.registry.rootPath, args)
}

// isHelpToken reports whether the token requests help. -h/--help as the
// head of the remaining vector always wins, before option parsing begins.
func isHelpToken(token string) bool {
	return token == "-h" || token == "--help"
}

// dispatch runs the per-node state machine: AwaitingInput, then Helping or
// ParsingOptions, then Dispatching into a child or Executing the action.
func (a *App) dispatch(ctx context.Context, cmd *Command, path string, args []string) error {
	// AwaitingInput -> Helping
	if (len(args) == 0 && cmd.helpOnNoArgs) || (len(args) > 0 && isHelpToken(args[0])) {
		return a.renderHelp(path)
	}

	// AwaitingInput -> ParsingOptions
	result, err := parseOptions(cmd.options, args)
	if err != nil {
		a.auditFailure("parse_error", path, err.Error())
		return err
	}

	violations, cfgErr := validateRequirements(cmd.options, cmd.requirements, result.Options)
	if cfgErr != nil {
		return cfgErr
	}
	if len(violations) > 0 {
		verr := &RequirementViolationError{Violations: violations}
		a.auditFailure("requirement_violation", path, verr.Error())
		return verr
	}

	// ParsingOptions -> Dispatching
	rest := args[result.Consumed:]
	children := a.registry.ChildrenOf(path)

	if len(children) == 0 {
		// Dispatching -> Executing
		inv := &Invocation{
			Path:    a.registry.commandPath(path),
			Options: result.Options,
			Args:    rest,
			Console: a.console,
		}
		if cmd.action == nil {
			return a.renderHelp(path)
		}
		a.auditExecute(path, inv)
		return cmd.action(ctx, inv)
	}

	if len(rest) == 0 {
		err := errors.New(ErrCodeUnknownCommand,
			fmt.Sprintf("'%s' requires a command", a.registry.displayPath(path)))
		a.auditFailure("unknown_command", path, err.Error())
		return err
	}

	childReg := a.registry.child(path, rest[0])
	if childReg == nil {
		err := errors.New(ErrCodeUnknownCommand,
			fmt.Sprintf("'%s' is not a valid command of '%s'", rest[0], a.registry.displayPath(path)))
		a.auditFailure("unknown_command", path, err.Error())
		return err
	}

	child, err := childReg.resolve()
	if err != nil {
		return err
	}

	// Dispatching -> Dispatching (recursion)
	return a.dispatch(ctx, child, path+" "+rest[0], rest[1:])
}

// renderHelp resolves the node's ancestor chain and children through the
// registry and writes the formatted help text to the console.
func (a *App) renderHelp(path string) error {
	chain, err := a.resolveChain(path)
	if err != nil {
		return err
	}
	text, err := renderHelp(chain, a.registry.ChildrenOf(path), a.console.Width())
	if err != nil {
		return err
	}
	a.console.Write(text)
	return nil
}

// resolveChain materializes the Commands from root to the node at path,
// recomputed from the registry's parent relation on every call.
func (a *App) resolveChain(path string) ([]*Command, error) {
	names := a.registry.commandPath(path)
	chain := make([]*Command, 0, len(names))

	cur := ""
	for _, name := range names {
		if cur == "" {
			cur = name
		} else {
			cur = cur + " " + name
		}
		cmd, err := a.registry.byPath[cur].resolve()
		if err != nil {
			return nil, err
		}
		chain = append(chain, cmd)
	}
	return chain, nil
}

// auditExecute records a successful dispatch to a leaf action.
func (a *App) auditExecute(path string, inv *Invocation) {
	if a.audit == nil {
		return
	}
	tokens := make([]string, len(inv.Options))
	for i, p := range inv.Options {
		tokens[i] = p.Token
	}
	a.audit.LogExecution(a.registry.displayPath(path), tokens, inv.Args)
}

// auditFailure records a fatal dispatch failure.
func (a *App) auditFailure(event, path, detail string) {
	if a.audit == nil {
		return
	}
	a.audit.LogFailure(event, a.registry.displayPath(path), detail)
}
