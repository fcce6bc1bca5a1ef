// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/benshell/ben/fileutil"
	"github.com/benshell/ben/pattern"
	"github.com/benshell/ben/syntax"
)

type builtinFunc func(r *Runner, ctx context.Context, args []syntax.Arg) string

type builtin struct {
	// minArgs is the number of arguments that must be present;
	// fewer is a fatal error.
	minArgs int
	fn      builtinFunc
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"echo":        {0, (*Runner).echo},
		"echo_stdout": {0, (*Runner).echo},
		"echo_stderr": {0, (*Runner).echoStderr},

		"run":  {1, (*Runner).run},
		"with": {0, (*Runner).with},
		"env":  {1, (*Runner).env},

		"mv":     {2, moveCopy(true)},
		"move":   {2, moveCopy(true)},
		"cp":     {2, moveCopy(false)},
		"copy":   {2, moveCopy(false)},
		"rm":     {1, (*Runner).remove},
		"remove": {1, (*Runner).remove},
		"files":  {0, (*Runner).files},
		"write":  {2, (*Runner).write},
		"read":   {1, (*Runner).read},
		"append": {2, (*Runner).append},

		"repeat":                {2, (*Runner).repeat},
		"replace":               {3, textFunc(strings.ReplaceAll)},
		"concatenate":           {0, (*Runner).concatenate},
		"concatenate_separator": {1, (*Runner).concatenateSeparator},
		"before":                {2, textFunc(before)},
		"after":                 {2, textFunc(after)},
		"rbefore":               {2, textFunc(rbefore)},
		"rafter":                {2, textFunc(rafter)},
		"first_line":            {1, textFunc(firstLine)},
		"last_line":             {1, textFunc(lastLine)},
		"size":                  {1, textFunc(func(s string) string { return strconv.Itoa(len(s)) })},
		"lines":                 {1, textFunc(func(s string) string { return strconv.Itoa(len(textLines(s))) })},
		"trim":                  {1, textFunc(strings.TrimSpace)},

		"if_equal": {3, (*Runner).ifEqual},
		"literal":  {1, textFunc(func(s string) string { return s })},
		"constant": {1, textFunc(func(s string) string { return s })},
		"noop":     {0, func(*Runner, context.Context, []syntax.Arg) string { return "" }},
	}
}

// IsBuiltin reports whether name is a builtin command. Builtins take
// precedence over known programs.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// textFunc turns a pure function over interpolated text into a builtin.
// Only the arguments the function takes are interpolated; any extra
// arguments are ignored. The builtin reports no exit status.
func textFunc[F func(string) string | func(string, string) string | func(string, string, string) string](fn F) builtinFunc {
	return func(r *Runner, ctx context.Context, args []syntax.Arg) string {
		switch fn := any(fn).(type) {
		case func(string) string:
			return fn(r.literal(args[0]))
		case func(string, string) string:
			return fn(r.literal(args[0]), r.literal(args[1]))
		case func(string, string, string) string:
			return fn(r.literal(args[0]), r.literal(args[1]), r.literal(args[2]))
		}
		panic("unreachable")
	}
}

func (r *Runner) echo(ctx context.Context, args []syntax.Arg) string {
	some := false
	for i, arg := range args {
		s := r.literal(arg)
		if s == "" {
			continue
		}
		some = true
		if i > 0 {
			r.out(" ")
		}
		r.out(s)
	}
	if len(args) == 0 || some {
		r.out("\n")
	}
	return ""
}

func (r *Runner) echoStderr(ctx context.Context, args []syntax.Arg) string {
	r.errf("%s\n", strings.Join(r.literals(args), " "))
	return ""
}

func (r *Runner) run(ctx context.Context, args []syntax.Arg) string {
	list := r.literals(args)
	return r.exec(ctx, nil, append(list[:1], nonEmpty(list[1:])...))
}

func (r *Runner) with(ctx context.Context, args []syntax.Arg) string {
	env := make(map[string]string)
	for len(args) > 0 && args[0] != "run" {
		if len(args) < 2 {
			r.exit.fatal(fmt.Errorf("missing value for environment variable %q", r.literal(args[0])))
			return ""
		}
		key, value := r.literal(args[0]), r.literal(args[1])
		if value != "" {
			env[key] = value
		}
		args = args[2:]
	}
	if len(args) > 0 {
		args = args[1:] // "run"
	}
	if len(args) == 0 {
		r.exit.fatal(fmt.Errorf("missing program to run"))
		return ""
	}
	list := r.literals(args)
	return r.exec(ctx, env, append(list[:1], nonEmpty(list[1:])...))
}

// exec runs a program through the exec handlers, returning everything it
// wrote to either of its output streams.
func (r *Runner) exec(ctx context.Context, env map[string]string, args []string) string {
	var out bytes.Buffer
	err := r.execHandler(r.handlerCtx(ctx, r.childEnv(env), &out), args)
	r.exit.fromHandlerError(err)
	if r.stop() {
		return ""
	}
	if !utf8.Valid(out.Bytes()) {
		r.exit.fatal(fmt.Errorf("output of %s is not valid UTF-8", args[0]))
		return ""
	}
	return out.String()
}

func (r *Runner) env(ctx context.Context, args []syntax.Arg) string {
	name := r.literal(args[0])
	value, ok := r.Env.Get(name)
	if !ok {
		r.errf("could not find environment variable %s\n", name)
	}
	r.exit.oneIf(!ok)
	return value
}

func moveCopy(move bool) builtinFunc {
	verb := "copying"
	if move {
		verb = "moving"
	}
	return func(r *Runner, ctx context.Context, args []syntax.Arg) string {
		from, to := r.literal(args[0]), r.literal(args[1])
		err := fileutil.MoveCopy(r.absPath(from), r.absPath(to), move)
		if errors.Is(err, fileutil.ErrIsDir) {
			r.exit.fatal(err)
			return ""
		}
		if err != nil {
			// still a success; scripts rely on it
			r.errf("error %s file: %v\n", verb, err)
		}
		r.exit.setCode(0)
		return ""
	}
}

func (r *Runner) remove(ctx context.Context, args []syntax.Arg) string {
	path := r.literal(args[0])
	err := os.Remove(r.absPath(path))
	if err != nil {
		r.errf("could not remove %s: %v\n", path, unwrapPathError(err))
	}
	r.exit.oneIf(err != nil)
	return ""
}

func (r *Runner) files(ctx context.Context, args []syntax.Arg) string {
	pat := ""
	if len(args) > 0 {
		pat = r.literal(args[0])
	}
	matches, err := pattern.Glob(&pattern.GlobConfig{Dir: r.Dir}, pat)
	if err != nil {
		r.errf("error reading files glob %q: %v\n", pat, err)
		r.exit.setCode(1)
		return ""
	}
	for i, match := range matches {
		matches[i] = filepath.ToSlash(match)
	}
	r.exit.setCode(0)
	return strings.Join(matches, "\n")
}

func (r *Runner) write(ctx context.Context, args []syntax.Arg) string {
	path, text := r.literal(args[0]), r.literal(args[1])
	err := fileutil.WriteFile(r.absPath(path), []byte(text))
	if err != nil {
		r.errf("could not write to %s: %v\n", path, unwrapPathError(err))
	}
	r.exit.oneIf(err != nil)
	return ""
}

// readText reads a whole file, which must be valid UTF-8.
func (r *Runner) readText(path string) (string, bool) {
	data, err := os.ReadFile(r.absPath(path))
	if err == nil && !utf8.Valid(data) {
		err = fmt.Errorf("not valid UTF-8")
	}
	if err != nil {
		r.errf("could not read %s: %v\n", path, unwrapPathError(err))
		return "", false
	}
	return string(data), true
}

func (r *Runner) read(ctx context.Context, args []syntax.Arg) string {
	content, ok := r.readText(r.literal(args[0]))
	r.exit.oneIf(!ok)
	return content
}

func (r *Runner) append(ctx context.Context, args []syntax.Arg) string {
	path, text := r.literal(args[0]), r.literal(args[1])
	if _, ok := r.readText(path); !ok {
		r.exit.setCode(1)
		return ""
	}
	err := fileutil.AppendFile(r.absPath(path), []byte(text))
	if err != nil {
		r.errf("could not write to %s: %v\n", path, unwrapPathError(err))
	}
	r.exit.oneIf(err != nil)
	return ""
}

func (r *Runner) repeat(ctx context.Context, args []syntax.Arg) string {
	text, count := r.literal(args[0]), r.literal(args[1])
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		r.exit.fatal(fmt.Errorf("invalid repeat count %q", count))
		return ""
	}
	if n > 0 && len(text) > math.MaxInt/n {
		r.exit.fatal(fmt.Errorf("repeat count %q is too large", count))
		return ""
	}
	return strings.Repeat(text, n)
}

func (r *Runner) concatenate(ctx context.Context, args []syntax.Arg) string {
	return strings.Join(nonEmpty(r.literals(args)), "\n")
}

func (r *Runner) concatenateSeparator(ctx context.Context, args []syntax.Arg) string {
	sep := r.literal(args[0])
	return strings.Join(nonEmpty(r.literals(args[1:])), sep)
}

func (r *Runner) ifEqual(ctx context.Context, args []syntax.Arg) string {
	if r.literal(args[0]) == r.literal(args[1]) {
		return r.literal(args[2])
	}
	if len(args) > 3 {
		return r.literal(args[3])
	}
	return ""
}

func before(s, sep string) string {
	before, _, found := strings.Cut(s, sep)
	if !found {
		return ""
	}
	return before
}

func after(s, sep string) string {
	_, after, found := strings.Cut(s, sep)
	if !found {
		return ""
	}
	return after
}

func rbefore(s, sep string) string {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return ""
	}
	return s[:i]
}

func rafter(s, sep string) string {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return ""
	}
	return s[i+len(sep):]
}

func firstLine(s string) string {
	lines := textLines(s)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func lastLine(s string) string {
	lines := textLines(s)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// unwrapPathError drops the operation and path from an [*os.PathError],
// as the diagnostics already name the path as written in the program.
func unwrapPathError(err error) error {
	var perr *os.PathError
	if errors.As(err, &perr) {
		return perr.Err
	}
	return err
}
