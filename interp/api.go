// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements an interpreter that executes Ben programs.
//
// Statements run strictly in order against a single flat store of variables.
// Commands are either builtins, implemented in this package, or external
// programs, which are run via a chain of [ExecHandlerFunc] middlewares so that
// they can be replaced or extended.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/syntax"
)

// A Runner interprets Ben programs. It can be reused, but it is not safe for
// concurrent use. Use [New] to build a new Runner.
//
// Runner's exported fields are meant to be configured via [RunnerOption];
// once a Runner has been created, the fields should be treated as read-only.
type Runner struct {
	// Env specifies the environment of the host, which must not be nil.
	// It is used to resolve references which are not program variables,
	// for the env builtin, and as the environment of spawned programs.
	// It can only be set via [Env].
	Env expand.Environ

	// Dir specifies the working directory of spawned programs, and the
	// directory which relative paths are resolved against. It must be an
	// absolute path. It can only be set via [Dir].
	Dir string

	// Vars holds the variables bound by the program, such as by "let"
	// declarations and for loops. It is emptied by [Runner.Reset].
	Vars map[string]string

	// execHandler is responsible for executing programs. It must not be nil.
	execHandler ExecHandlerFunc

	// execMiddlewares grows with calls to [ExecHandlers],
	// and is used to construct execHandler when Reset is first called.
	// The slice is needed to preserve the relative order of middlewares.
	execMiddlewares []func(ExecHandlerFunc) ExecHandlerFunc

	// knownPrograms are command names which run the program of the same
	// name, as if prefixed by "run".
	knownPrograms map[string]bool

	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	trace bool

	ecfg *expand.Config

	// didReset remembers whether the runner has ever been reset. This is
	// used so that Reset is automatically called when running any program
	// or node for the first time on a Runner.
	didReset bool

	usedNew bool

	filename string // only if Node was a Program

	// exit is the state of the statement being run.
	exit exitStatus
}

// exitStatus holds the state of the runner after running one command.
// Beyond the exit status code, it also holds whether the command produced a
// status at all, and whether a fatal error should stop the program.
type exitStatus struct {
	// code is the exit status code. Only meaningful if set is true.
	code uint8

	// set is false for builtins which do not report a status, such as
	// the text manipulation commands.
	set bool

	fatalExit bool // whether the program is stopping due to a fatal error; err below must not be nil

	err error
}

func (e *exitStatus) setCode(code uint8) {
	e.code = code
	e.set = true
}

func (e *exitStatus) oneIf(b bool) {
	if b {
		e.setCode(1)
	} else {
		e.setCode(0)
	}
}

func (e *exitStatus) fatal(err error) {
	if !e.fatalExit && err != nil {
		e.fatalExit = true
		e.err = err
	}
}

func (e *exitStatus) fromHandlerError(err error) {
	var es ExitStatus
	switch {
	case err == nil:
		e.setCode(0)
	case errors.As(err, &es):
		e.setCode(uint8(es))
	default:
		e.fatal(err) // handler's custom fatal error
	}
}

// New creates a new Runner, applying a number of options. If applying any of
// the options results in an error, it is returned.
//
// Any unset options fall back to their defaults. For example, not supplying the
// environment falls back to the process's environment, and not supplying the
// standard output writer means that the output will be discarded.
func New(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{usedNew: true}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	// Set the default fallbacks, if necessary.
	if r.Env == nil {
		Env(nil)(r)
	}
	if r.Dir == "" {
		if err := Dir("")(r); err != nil {
			return nil, err
		}
	}
	if r.stdout == nil || r.stderr == nil {
		StdIO(r.stdin, r.stdout, r.stderr)(r)
	}
	return r, nil
}

// RunnerOption can be passed to [New] to alter a [Runner]'s behaviour.
// It can also be applied directly on an existing Runner,
// such as interp.Trace(true)(runner).
// Note that options cannot be applied once Run or Reset have been called.
type RunnerOption func(*Runner) error

// Env sets the interpreter's environment. If nil, a copy of the current
// process's environment is used.
//
// Spawned programs receive the variables listed by [expand.Environ.Each],
// so an environment built with [expand.FuncEnviron] gives them an empty
// environment.
func Env(env expand.Environ) RunnerOption {
	return func(r *Runner) error {
		if env == nil {
			env = expand.ListEnviron(os.Environ()...)
		}
		r.Env = env
		return nil
	}
}

// Dir sets the interpreter's working directory. If empty, the process's current
// directory is used.
func Dir(path string) RunnerOption {
	return func(r *Runner) error {
		if path == "" {
			path, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get current dir: %w", err)
			}
			r.Dir = path
			return nil
		}
		path, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("could not get absolute dir: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("could not stat: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		r.Dir = path
		return nil
	}
}

// ExecHandlers appends middlewares to handle the execution of programs.
// The middlewares are chained from first to last, and the first is called by the runner.
// Each middleware is expected to call the "next" middleware at most once.
//
// For example, a middleware may implement only some programs.
// For those programs, it can run its logic and avoid calling "next".
// For any other programs, it can call "next" with the original parameters.
//
// The last exec handler is always [DefaultExecHandler].
func ExecHandlers(middlewares ...func(next ExecHandlerFunc) ExecHandlerFunc) RunnerOption {
	return func(r *Runner) error {
		r.execMiddlewares = append(r.execMiddlewares, middlewares...)
		return nil
	}
}

// KnownPrograms adds command names which run the program of the same name,
// like "run NAME ARGS...", but without parsing environment pairs. Builtins
// take precedence over known programs.
//
// The defaults are cargo, git, gh, hyperfine, jq, yq, node, deno, bun,
// sqlite3, python, npm and bat.
func KnownPrograms(names ...string) RunnerOption {
	return func(r *Runner) error {
		if r.knownPrograms == nil {
			r.knownPrograms = make(map[string]bool, len(defaultKnownPrograms)+len(names))
			for _, name := range defaultKnownPrograms {
				r.knownPrograms[name] = true
			}
		}
		for _, name := range names {
			if name == "" {
				return fmt.Errorf("known program names cannot be empty")
			}
			r.knownPrograms[name] = true
		}
		return nil
	}
}

// Trace enables printing each command before it runs to standard error,
// prefixed by "+ " and with its arguments as written in the source.
func Trace(enabled bool) RunnerOption {
	return func(r *Runner) error {
		r.trace = enabled
		return nil
	}
}

func stdinFile(r io.Reader) (*os.File, error) {
	switch r := r.(type) {
	case *os.File:
		return r, nil
	case nil:
		return nil, nil
	default:
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, err
		}
		go func() {
			io.Copy(pw, r)
			pw.Close()
		}()
		return pr, nil
	}
}

// StdIO configures an interpreter's standard input, standard output, and
// standard error. If out or err are nil, they default to a writer that discards
// the output.
//
// Standard input is only used by spawned programs. Providing a non-nil
// standard input other than [*os.File] will require an [os.Pipe] and spawning
// a goroutine to copy into it, as an [os.File] is the only way to share a
// reader with subprocesses.
func StdIO(in io.Reader, out, err io.Writer) RunnerOption {
	return func(r *Runner) error {
		stdin, _err := stdinFile(in)
		if _err != nil {
			return _err
		}
		r.stdin = stdin
		if out == nil {
			out = io.Discard
		}
		r.stdout = out
		if err == nil {
			err = io.Discard
		}
		r.stderr = err
		return nil
	}
}

// Reset returns a runner to its initial state, right before the first call to
// Run or Reset.
//
// Typically, this function only needs to be called if a runner is reused to run
// multiple programs non-incrementally. Not calling Reset between each run will
// mean that the variables are kept.
func (r *Runner) Reset() {
	if !r.usedNew {
		panic("use interp.New to construct a Runner")
	}
	if !r.didReset {
		r.execHandler = DefaultExecHandler()
		// Middlewares are chained from first to last, and each can call the
		// next in the chain, so we need to construct the chain backwards.
		for _, mw := range slices.Backward(r.execMiddlewares) {
			r.execHandler = mw(r.execHandler)
		}
		if r.knownPrograms == nil {
			KnownPrograms()(r)
		}
	}
	if r.Vars == nil {
		r.Vars = make(map[string]string)
	} else {
		clear(r.Vars)
	}
	r.ecfg = &expand.Config{
		Vars:   expand.MapEnviron(r.Vars),
		Env:    r.Env,
		Stderr: r.stderr,
	}
	r.exit = exitStatus{}
	r.filename = ""
	r.didReset = true
}

// ExitStatus is a non-zero status code resulting from running a program.
// An [ExecHandlerFunc] returns it to report the program's status.
type ExitStatus uint8

func (s ExitStatus) Error() string { return fmt.Sprintf("exit status %d", s) }

// FatalError is returned by [Runner.Run] when a command fails in a way that
// stops the whole program, such as when a program cannot be started or
// a required argument is missing. Statements after it are not run.
type FatalError struct {
	Filename string
	Line     int
	Command  string
	Err      error
}

func (e *FatalError) Error() string {
	prefix := ""
	if e.Filename != "" {
		prefix = e.Filename + ":"
	}
	return fmt.Sprintf("%s%d: %s: %v", prefix, e.Line, e.Command, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Run interprets a node, which can be a [*syntax.Program] or a
// [syntax.Stmt]. Failing commands only produce diagnostics and set the
// exit_code variable; the returned error is non-nil only if the program
// was stopped by a fatal error, in which case it is a [*FatalError].
//
// Run can be called multiple times synchronously to interpret programs
// incrementally. To reuse a [Runner] without keeping the variables,
// call Reset.
func (r *Runner) Run(ctx context.Context, node syntax.Node) error {
	if !r.didReset {
		r.Reset()
	}
	r.exit = exitStatus{}
	r.filename = ""
	switch node := node.(type) {
	case *syntax.Program:
		r.filename = node.Name
		r.stmts(ctx, node.Stmts)
	case syntax.Stmt:
		r.stmt(ctx, node)
	default:
		return fmt.Errorf("node can only be Program or Stmt: %T", node)
	}
	if r.exit.fatalExit {
		return r.exit.err
	}
	return nil
}

