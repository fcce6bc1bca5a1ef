// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// ben runs Ben programs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/benshell/ben/config"
	"github.com/benshell/ben/coreutils"
	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/interp"
	"github.com/benshell/ben/syntax"
)

var (
	flags = pflag.NewFlagSet("ben", pflag.ContinueOnError)

	evaluate     = flags.StringP("evaluate", "e", "", "")
	debugProgram = flags.Bool("debug-program", false, "")
	debugVars    = flags.Bool("debug-vars", false, "")
	trace        = flags.BoolP("trace", "x", false, "")
	useCoreutils = flags.Bool("coreutils", false, "")
	configPath   = flags.String("config", "", "")
	showVersion  = flags.Bool("version", false, "")

	version = "(devel)" // to match the default from runtime/debug
)

func main() { os.Exit(main1()) }

func main1() int {
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: ben [flags] [path]

ben runs the Ben program at path. If no path is given and standard input is
not a terminal, the program is read from standard input.

  -e, --evaluate src  run the program src instead of a file
      --debug-program print the parsed program instead of running it
      --debug-vars    print the program's variables once it stops
  -x, --trace         print commands to standard error before running them
      --coreutils     run core utils like cat and ls in-process
      --config path   use a configuration file other than .ben.yaml
      --version       show version and exit
`)
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *showVersion {
		fmt.Println(buildVersion())
		return 0
	}
	if err := runAll(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func buildVersion() string {
	// don't overwrite the version if it was set by -ldflags=-X
	if info, ok := debug.ReadBuildInfo(); ok && version == "(devel)" {
		mod := &info.Main
		if mod.Replace != nil {
			mod = mod.Replace
		}
		if mod.Version != "" {
			return mod.Version
		}
	}
	return version
}

func runAll() error {
	flagEvaluate := flags.Changed("evaluate")
	switch {
	case flagEvaluate && flags.NArg() > 0:
		return fmt.Errorf("cannot use --evaluate with a path")
	case flags.NArg() > 1:
		return fmt.Errorf("too many arguments; only one path can be run")
	case flagEvaluate:
		return run(strings.NewReader(*evaluate), "")
	case flags.NArg() == 1:
		return runPath(flags.Arg(0))
	case term.IsTerminal(int(os.Stdin.Fd())):
		banner(os.Stdout)
		return nil
	default:
		return run(os.Stdin, "")
	}
}

func banner(w io.Writer) {
	fmt.Fprint(w, "the Ben shell (WIP)")
	if v := buildVersion(); v != "(devel)" {
		fmt.Fprintf(w, " (version %s)", v)
	}
	fmt.Fprintln(w)
}

func runPath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return run(f, path)
}

func run(r io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(r, name)
	if err != nil {
		return err
	}
	if *debugProgram {
		pretty.Fprintf(os.Stderr, "%# v\n", prog)
		return nil
	}
	opts, err := runnerOptions()
	if err != nil {
		return err
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return err
	}
	// Failing commands are reported by the program itself; only fatal
	// errors make ben fail.
	err = runner.Run(context.Background(), prog)
	if *debugVars {
		fmt.Fprintln(os.Stderr, expand.Dump(expand.MapEnviron(runner.Vars)))
	}
	return err
}

func runnerOptions() ([]interp.RunnerOption, error) {
	env := expand.ListEnviron(os.Environ()...)
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path := *configPath
	if path == "" {
		if path, err = config.Find(dir, env); err != nil {
			return nil, err
		}
	}
	cfg := &config.Config{}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	opts := cfg.RunnerOptions(env)
	if *trace {
		opts = append(opts, interp.Trace(true))
	}
	if *useCoreutils && !cfg.Coreutils {
		opts = append(opts, interp.ExecHandlers(coreutils.ExecHandler))
	}
	opts = append(opts, interp.StdIO(os.Stdin, os.Stdout, os.Stderr))
	return opts, nil
}
