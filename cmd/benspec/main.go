// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// benspec runs the example programs in markdown specifications of the Ben
// language, checking that each prints its expected output.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/benshell/ben/spectest"
)

var (
	flags = pflag.NewFlagSet("benspec", pflag.ContinueOnError)

	jobs = flags.IntP("jobs", "j", 0, "")
)

func main() { os.Exit(main1()) }

func main1() int {
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: benspec [flags] [path...]

benspec runs the cases of each markdown specification file, by default
specification.md in the current directory.

  -j, --jobs n  run at most n cases at once (default GOMAXPROCS)
`)
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	paths := flags.Args()
	if len(paths) == 0 {
		paths = []string{"specification.md"}
	}
	color := useColor(os.Stdout)
	status := 0
	for _, path := range paths {
		failed, err := runFile(os.Stdout, path, color)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if failed > 0 {
			status = 1
		}
	}
	return status
}

func useColor(w io.Writer) bool {
	if os.Getenv("FORCE_COLOR") == "true" {
		// Undocumented way to force color; used in the tests.
		return true
	} else if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runFile(w io.Writer, path string, color bool) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	cases := spectest.Parse(src)
	results, err := spectest.Run(context.Background(), cases, spectest.Options{Jobs: *jobs})
	if err != nil {
		return 0, err
	}
	return spectest.Report(w, results, color)
}
