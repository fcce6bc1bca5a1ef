// Copyright (c) 2025, Andrey Nering <andrey@nering.com.br>
// See LICENSE for licensing information

// Package coreutils runs common core utils such as cat, ls or tar inside the
// Ben interpreter, so that programs calling them work the same on systems
// which lack them, like Windows.
//
// Programs only reach these utils through "run", "with", or names passed to
// [interp.KnownPrograms]; the builtins always come first.
package coreutils

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/base64"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/chmod"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/find"
	"github.com/u-root/u-root/pkg/core/gzip"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mktemp"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/shasum"
	"github.com/u-root/u-root/pkg/core/tar"
	"github.com/u-root/u-root/pkg/core/touch"
	"github.com/u-root/u-root/pkg/core/xargs"

	"github.com/benshell/ben/interp"
)

var utils = map[string]func() core.Command{
	"cat":    func() core.Command { return cat.New() },
	"chmod":  func() core.Command { return chmod.New() },
	"cp":     func() core.Command { return cp.New() },
	"find":   func() core.Command { return find.New() },
	"ls":     func() core.Command { return ls.New() },
	"mkdir":  func() core.Command { return mkdir.New() },
	"mv":     func() core.Command { return mv.New() },
	"rm":     func() core.Command { return rm.New() },
	"touch":  func() core.Command { return touch.New() },
	"xargs":  func() core.Command { return xargs.New() },
	"base64": func() core.Command { return base64.New() },
	"gzcat":  func() core.Command { return gzip.New("gzcat") },
	"gzip":   func() core.Command { return gzip.New("gzip") },
	"gunzip": func() core.Command { return gzip.New("gunzip") },
	"mktemp": func() core.Command { return mktemp.New() },
	"shasum": func() core.Command { return shasum.New() },
	"tar":    func() core.Command { return tar.New() },
}

// Names returns the sorted names of the core utils handled by [ExecHandler].
func Names() []string {
	names := make([]string, 0, len(utils))
	for name := range utils {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExecHandler is an [interp.ExecHandlerFunc] middleware which runs the
// utils listed by [Names] in-process, and passes any other program on to next.
// The utils shadow any programs of the same name found in $PATH.
//
// As with a spawned program, both output streams of a util end up in the
// captured output. A failing util adds a "name: error" line to that output
// and reports the exit status 1; it never stops the interpreter.
func ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		newUtil, ok := utils[args[0]]
		if !ok {
			return next(ctx, args)
		}
		hc := interp.HandlerCtx(ctx)
		var stdin io.Reader = strings.NewReader("")
		if hc.Stdin != nil {
			stdin = hc.Stdin
		}
		util := newUtil()
		util.SetIO(stdin, hc.Stdout, hc.Stdout)
		util.SetWorkingDir(hc.Dir)
		util.SetLookupEnv(hc.Env.Get)
		if err := util.RunContext(ctx, args[1:]...); err != nil {
			fmt.Fprintf(hc.Stdout, "%s: %v\n", args[0], err)
			return interp.ExitStatus(1)
		}
		return nil
	}
}
