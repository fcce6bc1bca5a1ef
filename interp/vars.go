// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"strings"

	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/syntax"
)

// overlayEnviron is the environment of a spawned program: the runner's
// environment plus the pairs given to "with".
type overlayEnviron struct {
	parent expand.Environ
	values map[string]string
}

func (o *overlayEnviron) Get(name string) (string, bool) {
	if value, ok := o.values[name]; ok {
		return value, true
	}
	return o.parent.Get(name)
}

func (o *overlayEnviron) Each(f func(name, value string) bool) {
	stopped := false
	o.parent.Each(func(name, value string) bool {
		if !f(name, value) {
			stopped = true
			return false
		}
		return true
	})
	if stopped {
		return
	}
	// later occurrences take priority
	expand.MapEnviron(o.values).Each(f)
}

func (r *Runner) childEnv(extra map[string]string) expand.Environ {
	if len(extra) == 0 {
		return r.Env
	}
	return &overlayEnviron{parent: r.Env, values: extra}
}

// defaultKnownPrograms run the program of the same name, like "run".
var defaultKnownPrograms = []string{
	"cargo", "git", "gh", "hyperfine", "jq", "yq", "node",
	"deno", "bun", "sqlite3", "python", "npm", "bat",
}

// loopBindings decide the extra variable bound to each line in a for loop,
// keyed by the name of the iterator command. They are only given the
// arguments as written in the source.
var loopBindings = map[string]func(args []syntax.Arg) (string, bool){
	"files": func([]syntax.Arg) (string, bool) { return "file", true },
	"git": func(args []syntax.Arg) (string, bool) {
		if len(args) > 0 && args[0].Raw() == "tag" {
			return "tag", true
		}
		return "", false
	},
	"constant": func(args []syntax.Arg) (string, bool) {
		if len(args) == 0 {
			return "", false
		}
		return singular(args[0].Raw())
	},
}

func loopBinding(cm *syntax.Command) (string, bool) {
	if fn := loopBindings[cm.Name]; fn != nil {
		return fn(cm.Args)
	}
	return "", false
}

// singular strips a trailing "ies", or else a trailing "s", from word.
// Words which do not end in "s" have no singular.
func singular(word string) (string, bool) {
	if s, ok := strings.CutSuffix(word, "ies"); ok {
		return s, true
	}
	return strings.CutSuffix(word, "s")
}

// iterLines splits the output of a loop iterator. A trailing newline does not
// add an empty line, but empty output is a single empty line.
func iterLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// textLines splits text into lines like [iterLines], but empty text has no
// lines at all.
func textLines(s string) []string {
	if s == "" {
		return nil
	}
	return iterLines(s)
}

func nonEmpty(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
