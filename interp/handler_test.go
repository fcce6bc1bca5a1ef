// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/benshell/ben/expand"
)

func blocklistOneExec(name string) func(ExecHandlerFunc) ExecHandlerFunc {
	return func(next ExecHandlerFunc) ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if args[0] == name {
				return fmt.Errorf("%s: blocklisted program", name)
			}
			return next(ctx, args)
		}
	}
}

// fakeExec records the programs it is asked to run, and runs none of them.
type fakeExec struct {
	calls [][]string
}

func (f *fakeExec) handler(next ExecHandlerFunc) ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		f.calls = append(f.calls, args)
		hc := HandlerCtx(ctx)
		fmt.Fprintf(hc.Stdout, "fake %s\n", args[0])
		if args[0] == "fail" {
			return ExitStatus(2)
		}
		return nil
	}
}

var execTests = []struct {
	in, want string // want is a regular expression
}{
	{"let o = run $CHILD interleave 3\necho $o $exit_code", `out0\nerr0\nout1\nerr1\nout2\nerr2\n 0\n`},
	{"run $CHILD interleave 1\necho $exit_code", `0\n`},
	{"run $CHILD exit 3\necho $exit_code", `3\n`},
	{"let o = run $CHILD exit 4\necho [$o] $exit_code", `\[\] 4\n`},
	{`run $CHILD args a "" b "c d"` + "\n" + `let o = run $CHILD args a "" b "c d"` + "\necho $o",
		`"a"\n"b"\n"c d"\n\n`},
	{`let o = with FOO bar EMPTY "" run $CHILD getenv FOO EMPTY GREETING` + "\necho $o",
		`FOO=bar\nEMPTY unset\nGREETING=hello\n\n`},
	{"let o = with GREETING bye run $CHILD getenv GREETING\necho $o", `GREETING=bye\n\n`},
	{"let o = run $CHILD getenv FOO\necho $o", `FOO unset\n\n`},
	{"let FOO = literal var\nlet o = run $CHILD getenv FOO\necho $o", `FOO unset\n\n`},
	{"run $CHILD invalid-utf8\necho unreachable", `1: run: output of .* is not valid UTF-8`},
	{"run nosuchprogram-ben", `1: run: "nosuchprogram-ben": executable file not found in \$PATH`},
	{"run ./nosuchprogram-ben", `1: run: "./nosuchprogram-ben": .*`},
	{"for run $CHILD args x y each\n\techo $iter", `"x"\n"y"\n`},
}

func TestRunnerExec(t *testing.T) {
	t.Parallel()
	for _, tc := range execTests {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			got := runScript(t, t.TempDir(), tc.in)
			qt.Assert(t, got, qt.Matches, tc.want, qt.Commentf("%q", tc.in))
		})
	}
}

func TestRunnerExecSignal(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("no signal statuses on this platform")
	}
	t.Parallel()
	got := runScript(t, t.TempDir(), "run $CHILD signal\necho $exit_code")
	qt.Assert(t, got, qt.Equals, "137\n")
}

func TestRunnerExecStdin(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	r, err := New(
		Env(testEnv()),
		StdIO(strings.NewReader("some input\n"), &out, &out),
	)
	qt.Assert(t, err, qt.IsNil)
	err = r.Run(context.Background(), parse(t, "let o = run $CHILD cat\necho $o"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out.String(), qt.Equals, "some input\n\n")
}

func TestKnownPrograms(t *testing.T) {
	t.Parallel()
	var fake fakeExec
	src := `git status "" -s
echo $exit_code
let o = fail
echo $o $exit_code
make all
let o = make all
echo $o
let o = run fail x
let o = with A 1 run fail
echo $exit_code
run echo
echo $exit_code`
	got := runScript(t, t.TempDir(), src, KnownPrograms("make"), ExecHandlers(fake.handler))
	want := `0
unknown command "fail"
 1
fake make

2
0
`
	qt.Assert(t, got, qt.Equals, want)
	qt.Assert(t, fake.calls, qt.DeepEquals, [][]string{
		{"git", "status", "-s"},
		{"make", "all"},
		{"make", "all"},
		{"fail", "x"},
		{"fail"},
		{"echo"},
	})
}

func TestExecHandlersOrder(t *testing.T) {
	t.Parallel()
	var calls []string
	record := func(name string) func(ExecHandlerFunc) ExecHandlerFunc {
		return func(next ExecHandlerFunc) ExecHandlerFunc {
			return func(ctx context.Context, args []string) error {
				calls = append(calls, name)
				return next(ctx, args)
			}
		}
	}
	var fake fakeExec
	got := runScript(t, t.TempDir(), "git log",
		ExecHandlers(record("first"), record("second")),
		ExecHandlers(record("third"), fake.handler),
	)
	qt.Assert(t, got, qt.Equals, "")
	qt.Assert(t, calls, qt.DeepEquals, []string{"first", "second", "third"})
}

func TestExecHandlerFatal(t *testing.T) {
	t.Parallel()
	got := runScript(t, t.TempDir(), "echo before\ngit status\necho after",
		ExecHandlers(blocklistOneExec("git")))
	qt.Assert(t, got, qt.Equals, "before\n2: git: git: blocklisted program")
}

func TestHandlerContext(t *testing.T) {
	t.Parallel()
	qt.Assert(t, func() { HandlerCtx(context.Background()) }, qt.PanicMatches,
		"interp.HandlerCtx: no HandlerContext in ctx")

	dir := t.TempDir()
	var got HandlerContext
	var stderr strings.Builder
	handler := func(next ExecHandlerFunc) ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			got = HandlerCtx(ctx)
			io.WriteString(got.Stdout, "captured")
			return nil
		}
	}
	r, err := New(
		Env(expand.ListEnviron("A=1", "B=2")),
		Dir(dir),
		StdIO(nil, nil, &stderr),
		ExecHandlers(handler),
	)
	qt.Assert(t, err, qt.IsNil)
	err = r.Run(context.Background(), parse(t, "let o = with B 3 C 4 run prog"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, r.Vars["o"], qt.Equals, "captured")
	qt.Assert(t, got.Dir, qt.Equals, dir)
	qt.Assert(t, got.Stdin, qt.IsNil)
	qt.Assert(t, got.Stderr, qt.Equals, io.Writer(&stderr))
	qt.Assert(t, expand.Pairs(got.Env), qt.DeepEquals, []string{"A=1", "B=2", "B=3", "C=4"})
	value, _ := got.Env.Get("B")
	qt.Assert(t, value, qt.Equals, "3")
}

func TestLookPathDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on Windows")
	}
	t.Parallel()
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	err := os.Mkdir(bin, 0o777)
	qt.Assert(t, err, qt.IsNil)
	err = os.WriteFile(filepath.Join(bin, "prog"), []byte("#!/bin/sh\n"), 0o755)
	qt.Assert(t, err, qt.IsNil)
	err = os.WriteFile(filepath.Join(bin, "noexec"), []byte("#!/bin/sh\n"), 0o644)
	qt.Assert(t, err, qt.IsNil)

	env := expand.ListEnviron("PATH=" + bin)
	path, err := LookPathDir(dir, env, "prog")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, path, qt.Equals, filepath.Join(bin, "prog"))

	path, err = LookPathDir(dir, env, "bin/prog")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, path, qt.Equals, filepath.Join(bin, "prog"))

	_, err = LookPathDir(dir, env, "noexec")
	qt.Assert(t, err, qt.ErrorMatches, `"noexec": executable file not found in \$PATH`)
	_, err = LookPathDir(dir, env, "bin/noexec")
	qt.Assert(t, err, qt.ErrorMatches, `"bin/noexec": permission denied`)
	_, err = LookPathDir(dir, env, "bin")
	qt.Assert(t, err, qt.ErrorMatches, `"bin": executable file not found in \$PATH`)
	_, err = LookPathDir(dir, env, "./bin")
	qt.Assert(t, err, qt.ErrorMatches, `"./bin": is a directory`)
	_, err = LookPathDir(dir, env, "")
	qt.Assert(t, err, qt.ErrorMatches, "empty program name")

	// empty elements look in the current directory
	path, err = LookPathDir(dir, expand.ListEnviron("PATH=:"+bin), "prog")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, path, qt.Equals, filepath.Join(bin, "prog"))

	// an empty PATH looks in the current directory
	path, err = LookPathDir(bin, expand.ListEnviron(), "prog")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, path, qt.Equals, filepath.Join(bin, "prog"))
}
