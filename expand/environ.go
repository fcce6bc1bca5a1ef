// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"slices"
	"strings"
)

// Environ is the base interface for a Ben program's environment, allowing it
// to look up variables by name. The interpreter reads the operating system's
// environment through this interface only, so that it can be replaced in
// tests.
type Environ interface {
	// Get retrieves a variable by its name. The boolean reports whether
	// the variable is set at all; a variable may be set to the empty string.
	Get(name string) (string, bool)

	// Each iterates over all the currently set variables, calling the
	// supplied function on each variable. Iteration is stopped if the
	// function returns false.
	//
	// The names used in the calls aren't required to be unique or sorted.
	// If a variable name appears twice, the latest occurrence takes
	// priority.
	Each(func(name, value string) bool)
}

// FuncEnviron wraps a lookup function in an [Environ], such as
// [os.LookupEnv]. It cannot list variables, so Each is a no-op.
func FuncEnviron(fn func(string) (string, bool)) Environ {
	return funcEnviron(fn)
}

type funcEnviron func(string) (string, bool)

func (f funcEnviron) Get(name string) (string, bool)     { return f(name) }
func (f funcEnviron) Each(func(name, value string) bool) {}

// ListEnviron returns an [Environ] with the supplied variables, in the form
// "key=value". The last value in pairs is used if multiple values are
// present. Pairs without a name or without "=" are dropped.
func ListEnviron(pairs ...string) Environ {
	list := slices.Clone(pairs)
	// sort by name only, so that duplicates keep their relative order
	slices.SortStableFunc(list, func(a, b string) int {
		isep := strings.IndexByte(a, '=')
		jsep := strings.IndexByte(b, '=')
		if isep < 0 {
			isep = 0
		} else {
			isep += 1
		}
		if jsep < 0 {
			jsep = 0
		} else {
			jsep += 1
		}
		return strings.Compare(a[:isep], b[:jsep])
	})

	last := ""
	for i := 0; i < len(list); {
		name, _, ok := strings.Cut(list[i], "=")
		if name == "" || !ok {
			// invalid element; remove it
			list = slices.Delete(list, i, i+1)
			continue
		}
		if last == name {
			// duplicate; the last one wins
			list = slices.Delete(list, i-1, i)
			continue
		}
		last = name
		i++
	}
	return listEnviron(list)
}

// listEnviron is a sorted list of "name=value" strings.
type listEnviron []string

func (l listEnviron) Get(name string) (string, bool) {
	prefix := name + "="
	i, ok := slices.BinarySearchFunc(l, prefix, func(l, prefix string) int {
		return strings.Compare(l[:min(len(l), len(prefix))], prefix)
	})
	if ok {
		return l[i][len(prefix):], true
	}
	return "", false
}

func (l listEnviron) Each(fn func(name, value string) bool) {
	for _, pair := range l {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			// should never happen; see ListEnviron
			panic("expand.listEnviron: did not expect malformed name-value pair: " + pair)
		}
		if !fn(name, value) {
			return
		}
	}
}

// MapEnviron is a mutable [Environ] backed by a map. Each visits the
// variables in name order.
type MapEnviron map[string]string

func (m MapEnviron) Get(name string) (string, bool) {
	value, ok := m[name]
	return value, ok
}

func (m MapEnviron) Each(fn func(name, value string) bool) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !fn(name, m[name]) {
			return
		}
	}
}

// Pairs returns the variables in env in the "name=value" form used by
// [os/exec.Cmd.Env].
func Pairs(env Environ) []string {
	var list []string
	env.Each(func(name, value string) bool {
		list = append(list, name+"="+value)
		return true
	})
	return list
}
