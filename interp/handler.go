// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/benshell/ben/expand"
)

// HandlerCtx returns HandlerContext value stored in ctx.
// It panics if ctx has no HandlerContext stored.
func HandlerCtx(ctx context.Context) HandlerContext {
	hc, ok := ctx.Value(handlerCtxKey{}).(HandlerContext)
	if !ok {
		panic("interp.HandlerCtx: no HandlerContext in ctx")
	}
	return hc
}

type handlerCtxKey struct{}

// HandlerContext is the data passed to all the handler functions via [context.WithValue].
// It contains some of the current state of the [Runner].
type HandlerContext struct {
	// Env is the environment of the program to run: the interpreter's
	// environment plus any pairs given to "with". Program variables are not
	// included.
	Env expand.Environ

	// Dir is the interpreter's directory.
	Dir string

	// Stdin is the interpreter's standard input reader, which may be nil.
	Stdin io.Reader

	// Stdout receives the program's output, which becomes the output text
	// of the command. Both the standard output and standard error streams
	// of a program should be written here, in the order they were produced.
	Stdout io.Writer

	// Stderr is the interpreter's standard error writer, for diagnostics.
	Stderr io.Writer
}

// ExecHandlerFunc is a handler which executes programs.
// It is called by "run", "with", and the known program commands,
// with the program name or path as args[0].
//
// Returning a nil error means a zero exit status.
// Other exit statuses can be set by returning an [ExitStatus].
// Any other error will halt the Runner with a [*FatalError].
type ExecHandlerFunc func(ctx context.Context, args []string) error

func (r *Runner) handlerCtx(ctx context.Context, env expand.Environ, stdout io.Writer) context.Context {
	hc := HandlerContext{
		Env:    env,
		Dir:    r.Dir,
		Stdout: stdout,
		Stderr: r.stderr,
	}
	if r.stdin != nil { // do not leave hc.Stdin as a typed nil
		hc.Stdin = r.stdin
	}
	return context.WithValue(ctx, handlerCtxKey{}, hc)
}

// DefaultExecHandler returns the [ExecHandlerFunc] used by default.
// It finds binaries in PATH and executes them, capturing both of their output
// streams through a single pipe so that their relative order is kept.
//
// The program's output is read until the pipe is closed before waiting for
// the program to exit; there is no timeout. A program killed by a signal
// reports the status 128 plus the signal number. A program which cannot be
// found or started is an error, which stops the Runner.
func DefaultExecHandler() ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := HandlerCtx(ctx)
		path, err := LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			return err
		}
		pr, pw, err := os.Pipe()
		if err != nil {
			return err
		}
		defer pr.Close()
		cmd := exec.Cmd{
			Path:   path,
			Args:   args,
			Env:    expand.Pairs(hc.Env),
			Dir:    hc.Dir,
			Stdin:  hc.Stdin,
			Stdout: pw,
			Stderr: pw,
		}
		err = cmd.Start()
		// Our copy of the write end must be closed, or reading would never
		// reach EOF.
		pw.Close()
		if err != nil {
			return fmt.Errorf("could not start %s: %w", args[0], err)
		}
		if _, err := io.Copy(hc.Stdout, pr); err != nil {
			pr.Close() // unblock the program's writes
			cmd.Wait()
			return err
		}
		err = cmd.Wait()

		switch err := err.(type) {
		case *exec.ExitError:
			// Windows and Plan9 do not have support for [syscall.WaitStatus]
			// with methods like Signaled and Signal, so for those, [waitStatus] is a no-op.
			if status, ok := err.Sys().(waitStatus); ok && status.Signaled() {
				return ExitStatus(uint8(128 + int(status.Signal())))
			}
			return ExitStatus(uint8(err.ExitCode()))
		default:
			return err
		}
	}
}

// statExecutable returns path, resolved against dir, if it is an executable
// file.
func statExecutable(dir, path string) (string, error) {
	if filepath.IsAbs(path) {
		path = filepath.Clean(path)
	} else {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("is a directory")
	}
	if err := checkExecutable(path, info); err != nil {
		return "", err
	}
	return path, nil
}

// findExecutable tries each of the names which path may have on disk,
// returning the error for the first one if none is executable.
func findExecutable(dir, path string, env expand.Environ) (string, error) {
	var firstErr error
	for _, name := range executableNames(env, path) {
		found, err := statExecutable(dir, name)
		if err == nil {
			return found, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("not found")
	}
	return "", firstErr
}

// LookPathDir is like [os/exec.LookPath], but it reads PATH from env and
// resolves relative paths against cwd. A program name with a directory part,
// such as "./build.sh", is not searched for in PATH. An empty PATH searches
// cwd.
//
// If no error is returned, the returned path names an executable file.
func LookPathDir(cwd string, env expand.Environ, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("empty program name")
	}
	if hasDirPart(file) {
		found, err := findExecutable(cwd, file, env)
		if err != nil {
			return "", fmt.Errorf("%q: %w", file, err)
		}
		return found, nil
	}
	pathVar, _ := env.Get("PATH")
	dirs := filepath.SplitList(pathVar)
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		if found, err := findExecutable(cwd, filepath.Join(dir, file), env); err == nil {
			return found, nil
		}
	}
	return "", fmt.Errorf("%q: executable file not found in $PATH", file)
}
