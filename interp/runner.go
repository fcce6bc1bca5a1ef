// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/syntax"
)

func (r *Runner) out(s string) {
	io.WriteString(r.stdout, s)
}

func (r *Runner) errf(format string, a ...any) {
	fmt.Fprintf(r.stderr, format, a...)
}

// literal interpolates an argument for a single use.
func (r *Runner) literal(arg syntax.Arg) string {
	return expand.Literal(r.ecfg, arg.Raw())
}

func (r *Runner) literals(args []syntax.Arg) []string {
	list := make([]string, len(args))
	for i, arg := range args {
		list[i] = r.literal(arg)
	}
	return list
}

// absPath resolves a path relative to the runner's directory.
func (r *Runner) absPath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}
	return filepath.Clean(path)
}

func (r *Runner) stop() bool {
	return r.exit.fatalExit
}

func (r *Runner) stmts(ctx context.Context, stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		if r.stop() {
			return
		}
		r.stmt(ctx, stmt)
	}
}

func (r *Runner) stmt(ctx context.Context, st syntax.Stmt) {
	r.exit = exitStatus{}
	var cm *syntax.Command
	switch st := st.(type) {
	case *syntax.Declaration:
		cm = st.Value
		out := r.cmd(ctx, cm)
		if r.stop() {
			break
		}
		r.Vars[st.Name] = out
		r.bindExitCode()
	case *syntax.CallStmt:
		cm = st.Cmd
		r.cmd(ctx, cm)
		if r.stop() {
			break
		}
		r.bindExitCode()
	case *syntax.ForClause:
		cm = st.Iterator
		r.forClause(ctx, st)
	default:
		panic(fmt.Sprintf("unhandled statement: %T", st))
	}
	if r.exit.fatalExit {
		// statements inside a loop body have already been located
		var ferr *FatalError
		if !errors.As(r.exit.err, &ferr) {
			r.exit.err = &FatalError{
				Filename: r.filename,
				Line:     st.Pos(),
				Command:  cm.Name,
				Err:      r.exit.err,
			}
		}
	}
}

func (r *Runner) bindExitCode() {
	if r.exit.set {
		r.Vars["exit_code"] = strconv.Itoa(int(r.exit.code))
	}
}

func (r *Runner) forClause(ctx context.Context, fc *syntax.ForClause) {
	out := r.cmd(ctx, fc.Iterator)
	if r.stop() {
		return
	}
	r.bindExitCode()
	extra, bind := loopBinding(fc.Iterator)
	for _, line := range iterLines(out) {
		if bind {
			r.Vars[extra] = line
		}
		r.Vars["iter"] = line
		r.stmts(ctx, fc.Body)
		if r.stop() {
			return
		}
	}
}

// cmd evaluates a single command, returning its output text.
// The exit status, if any, is left in r.exit.
func (r *Runner) cmd(ctx context.Context, cm *syntax.Command) string {
	if r.trace {
		r.traceCmd(cm)
	}
	if b, ok := builtins[cm.Name]; ok {
		if len(cm.Args) < b.minArgs {
			r.exit.fatal(fmt.Errorf("missing argument: need at least %d, got %d", b.minArgs, len(cm.Args)))
			return ""
		}
		return b.fn(r, ctx, cm.Args)
	}
	if r.knownPrograms[cm.Name] {
		args := append([]string{cm.Name}, nonEmpty(r.literals(cm.Args))...)
		return r.exec(ctx, nil, args)
	}
	r.errf("unknown command %q\n", cm.Name)
	r.exit.setCode(1)
	return ""
}

func (r *Runner) traceCmd(cm *syntax.Command) {
	var sb strings.Builder
	sb.WriteString("+ ")
	sb.WriteString(cm.Name)
	for _, arg := range cm.Args {
		sb.WriteByte(' ')
		if arg == "" || strings.ContainsAny(arg.Raw(), " \t") {
			sb.WriteString(strconv.Quote(arg.Raw()))
		} else {
			sb.WriteString(arg.Raw())
		}
	}
	sb.WriteByte('\n')
	io.WriteString(r.stderr, sb.String())
}
