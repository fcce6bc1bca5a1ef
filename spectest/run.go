// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package spectest

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode"

	"github.com/pkg/diff"
	diffwrite "github.com/pkg/diff/write"
	"golang.org/x/sync/errgroup"

	"github.com/benshell/ben/interp"
	"github.com/benshell/ben/syntax"
)

// Options configure how [Run] runs each case.
type Options struct {
	// Jobs is the maximum number of cases run at once.
	// Zero means [runtime.GOMAXPROCS].
	Jobs int

	// RunnerOptions are applied to the [interp.Runner] of every case,
	// such as [interp.Env]. Every case runs in a new temporary directory,
	// so any [interp.Dir] option is overridden.
	RunnerOptions []interp.RunnerOption
}

// Result is the outcome of running one [Case].
type Result struct {
	Case Case

	// Got is the program's output, with both of its streams merged.
	// Parse and fatal errors are added as a last "error: " line.
	Got string
}

// Passed reports whether the output matched the expected output.
// Trailing whitespace is ignored on both.
func (r Result) Passed() bool {
	return trimEnd(r.Got) == trimEnd(r.Case.Want)
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Run runs all cases, each on its own [interp.Runner] and in its own
// temporary directory, and returns their results in the same order.
// An error is only returned if a case could not be set up.
func Run(ctx context.Context, cases []Case, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, c := range cases {
		g.Go(func() error {
			got, err := runCase(ctx, c, opts.RunnerOptions)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			results[i] = Result{Case: c, Got: got}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runCase(ctx context.Context, c Case, opts []interp.RunnerOption) (string, error) {
	var out strings.Builder
	prog, err := syntax.NewParser().Parse(strings.NewReader(c.Script), "")
	if err != nil {
		fmt.Fprintf(&out, "error: %v\n", err)
		return out.String(), nil
	}
	dir, err := os.MkdirTemp("", "benspec-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)
	opts = append(opts[:len(opts):len(opts)], interp.Dir(dir), interp.StdIO(nil, &out, &out))
	r, err := interp.New(opts...)
	if err != nil {
		return "", err
	}
	if err := r.Run(ctx, prog); err != nil {
		fmt.Fprintf(&out, "error: %v\n", err)
	}
	return out.String(), nil
}

const (
	colorGreen = "\x1b[32m"
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[39m"
)

// Report writes a summary of results to w, with a unified diff for every
// failed case, and returns the number of failed cases. If color is true,
// the output uses terminal color escapes.
func Report(w io.Writer, results []Result, color bool) (int, error) {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}
	fmt.Fprintf(w, "running %d tests\n", len(results))
	var failed []Result
	for _, res := range results {
		status := paint(colorGreen, "ok")
		if !res.Passed() {
			status = paint(colorRed, "FAILED")
			failed = append(failed, res)
		}
		fmt.Fprintf(w, "test %s ... %s\n", res.Case.Name, status)
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\nfailures:\n")
		var opts []diffwrite.Option
		if color {
			opts = append(opts, diffwrite.TerminalColor())
		}
		for _, res := range failed {
			fmt.Fprintf(w, "\n---- %s (line %d)\n", res.Case.Name, res.Case.Line)
			want := trimEnd(res.Case.Want) + "\n"
			got := trimEnd(res.Got) + "\n"
			if err := diff.Text("want", "got", want, got, w, opts...); err != nil {
				return len(failed), fmt.Errorf("computing diff: %w", err)
			}
		}
	}
	result := paint(colorGreen, "ok")
	if len(failed) > 0 {
		result = paint(colorRed, "FAILED")
	}
	fmt.Fprintf(w, "\ntest result: %s. %d passed; %d failed\n",
		result, len(results)-len(failed), len(failed))
	return len(failed), nil
}
