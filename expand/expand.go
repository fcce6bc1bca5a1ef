// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Config specifies details about how arguments should be interpolated.
// Each of the fields may be left as zero values.
type Config struct {
	// Vars holds the variables bound by the running program.
	// They take priority over Env.
	Vars Environ

	// Env is the environment of the host, consulted when a reference is not
	// found in Vars.
	Env Environ

	// Stderr receives a diagnostic line for each reference that cannot be
	// resolved and for each unknown escape sequence. If nil, diagnostics
	// are discarded.
	Stderr io.Writer
}

// ctxName is the reference which expands to a dump of all variables.
const ctxName = "ctx"

func (cfg *Config) errf(format string, a ...any) {
	if cfg.Stderr == nil {
		return
	}
	fmt.Fprintf(cfg.Stderr, format, a...)
}

func (cfg *Config) lookup(name string) string {
	if name == ctxName {
		if cfg.Vars == nil {
			return "{}"
		}
		return Dump(cfg.Vars)
	}
	if cfg.Vars != nil {
		if value, ok := cfg.Vars.Get(name); ok {
			return value
		}
	}
	if cfg.Env != nil {
		if value, ok := cfg.Env.Get(name); ok {
			return value
		}
	}
	cfg.errf("could not find reference %s\n", name)
	return ""
}

// Literal interpolates a raw argument into its value for one evaluation.
//
// A "$" followed by a name made of letters, digits and underscores is
// replaced by the value of that variable. The escapes "\n", "\t" and "\r"
// produce control characters, "\\" produces a single backslash and "\""
// produces nothing. Any other character is copied verbatim.
//
// A nil cfg is equivalent to an empty [Config].
func Literal(cfg *Config, raw string) string {
	if cfg == nil {
		cfg = &Config{}
	}
	if !strings.ContainsAny(raw, `$\`) {
		return raw
	}
	var sb strings.Builder
	for i := 0; i < len(raw); {
		switch c := raw[i]; c {
		case '$':
			end := i + 1
			for end < len(raw) {
				r, size := utf8.DecodeRuneInString(raw[end:])
				if !nameRune(r) {
					break
				}
				end += size
			}
			sb.WriteString(cfg.lookup(raw[i+1 : end]))
			i = end
		case '\\':
			r, size := utf8.DecodeRuneInString(raw[i+1:])
			switch {
			case size == 0:
				cfg.errf("unknown escape at end of %q\n", raw)
			case r == 'n':
				sb.WriteByte('\n')
			case r == 't':
				sb.WriteByte('\t')
			case r == 'r':
				sb.WriteByte('\r')
			case r == '\\':
				sb.WriteByte('\\')
			case r == '"':
			default:
				cfg.errf("unknown escape %q\n", r)
			}
			i += 1 + size
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

func nameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Dump formats all the variables in env as a single line, sorted by name,
// such as:
//
//	{"a": "1", "b": "two words"}
func Dump(env Environ) string {
	type pair struct{ name, value string }
	var pairs []pair
	seen := make(map[string]int)
	env.Each(func(name, value string) bool {
		if i, ok := seen[name]; ok {
			pairs[i].value = value
			return true
		}
		seen[name] = len(pairs)
		pairs = append(pairs, pair{name, value})
		return true
	})
	// Each is not required to be sorted
	slices.SortFunc(pairs, func(a, b pair) int {
		return strings.Compare(a.name, b.name)
	})
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(p.name))
		sb.WriteString(": ")
		sb.WriteString(strconv.Quote(p.value))
	}
	sb.WriteByte('}')
	return sb.String()
}
