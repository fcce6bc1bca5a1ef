// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp_test

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/interp"
	"github.com/benshell/ben/syntax"
)

func Example() {
	src := `
let names = concatenate apple "" banana
for constant $names each
	let upper = replace $iter a A
	echo $upper
echo $GLOBAL
`
	prog, _ := syntax.NewParser().Parse(strings.NewReader(src), "")
	runner, _ := interp.New(
		interp.Env(expand.ListEnviron("GLOBAL=global_value")),
		interp.StdIO(nil, os.Stdout, os.Stdout),
	)
	runner.Run(context.TODO(), prog)
	// Output:
	// Apple
	// bAnAnA
	// global_value
}

func ExampleExecHandlers() {
	src := `
let out = git describe --tags
echo $out $exit_code
let out = run ls
`
	prog, _ := syntax.NewParser().Parse(strings.NewReader(src), "")
	fakeGit := func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if args[0] != "git" {
				return next(ctx, args)
			}
			hc := interp.HandlerCtx(ctx)
			fmt.Fprintf(hc.Stdout, "v1.2.3")
			return interp.ExitStatus(3)
		}
	}
	blocklist := func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			return fmt.Errorf("%s is not allowed", args[0])
		}
	}
	runner, _ := interp.New(
		interp.StdIO(nil, os.Stdout, os.Stdout),
		interp.ExecHandlers(fakeGit, blocklist),
	)
	err := runner.Run(context.TODO(), prog)
	fmt.Println(err)
	// Output:
	// v1.2.3 3
	// 4: run: ls is not allowed
}
