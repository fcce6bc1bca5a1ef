// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"os"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestConfigNils(t *testing.T) {
	os.Setenv("EXPAND_GLOBAL", "value")
	tests := []struct {
		name string
		cfg  *Config
		src  string
		want string
	}{
		{
			"NilConfig",
			nil,
			"$EXPAND_GLOBAL",
			"",
		},
		{
			"ZeroConfig",
			&Config{},
			"$EXPAND_GLOBAL",
			"",
		},
		{
			"EnvConfig",
			&Config{Env: ListEnviron(os.Environ()...)},
			"$EXPAND_GLOBAL",
			"value",
		},
		{
			"FuncEnvConfig",
			&Config{Env: FuncEnviron(os.LookupEnv)},
			"$EXPAND_GLOBAL",
			"value",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Literal(tc.cfg, tc.src)
			qt.Assert(t, got, qt.Equals, tc.want)
		})
	}
}

var literalTests = []struct {
	in, want, diag string
}{
	{"plain text", "plain text", ""},
	{"", "", ""},
	{"$name", "ben", ""},
	{"hi $name!", "hi ben!", ""},
	{"$n1$n1", "oneone", ""},
	{"$HOME/bin", "/home/ben/bin", ""},
	{"$name_x", "", "could not find reference name_x\n"},
	{"[$missing]", "[]", "could not find reference missing\n"},
	{"$", "", "could not find reference \n"},
	{"$ctx", `{"n1": "one", "name": "ben"}`, ""},
	{"é$name", "ében", ""},
	{"$nameé", "", "could not find reference nameé\n"},
	{`a\nb`, "a\nb", ""},
	{`\t\r`, "\t\r", ""},
	{`a\\b`, `a\b`, ""},
	{`a\\nb`, `a\nb`, ""},
	{`a\\\\b`, `a\\b`, ""},
	{`say \"hi\"`, "say hi", ""},
	{`a\qb`, "ab", "unknown escape 'q'\n"},
	{`a\éb`, "ab", "unknown escape 'é'\n"},
	{`end\`, "end", `unknown escape at end of "end\\"` + "\n"},
	{`\$name`, "name", "unknown escape '$'\n"},
}

func TestLiteral(t *testing.T) {
	t.Parallel()
	for _, tc := range literalTests {
		t.Run("", func(t *testing.T) {
			var diag strings.Builder
			cfg := &Config{
				Vars:   MapEnviron{"name": "ben", "n1": "one"},
				Env:    ListEnviron("HOME=/home/ben", "name=env"),
				Stderr: &diag,
			}
			got := Literal(cfg, tc.in)
			qt.Assert(t, got, qt.Equals, tc.want, qt.Commentf("input: %q", tc.in))
			qt.Assert(t, diag.String(), qt.Equals, tc.diag)
		})
	}
}

func TestLiteralVarsShadowEnv(t *testing.T) {
	t.Parallel()
	vars := MapEnviron{}
	cfg := &Config{Vars: vars, Env: ListEnviron("GREETING=hello")}
	qt.Assert(t, Literal(cfg, "$GREETING"), qt.Equals, "hello")

	// Vars is consulted on every call
	vars["GREETING"] = "bye"
	qt.Assert(t, Literal(cfg, "$GREETING"), qt.Equals, "bye")
}

func TestDump(t *testing.T) {
	t.Parallel()
	qt.Assert(t, Dump(MapEnviron{}), qt.Equals, "{}")
	qt.Assert(t, Dump(FuncEnviron(os.LookupEnv)), qt.Equals, "{}")

	env := MapEnviron{"b": "two words", "a": "1", "q": `say "hi"`}
	want := `{"a": "1", "b": "two words", "q": "say \"hi\""}`
	for range 3 {
		qt.Assert(t, Dump(env), qt.Equals, want)
	}

	qt.Assert(t, Dump(ListEnviron("x=1", "x=2", "nl=a\nb")), qt.Equals, `{"nl": "a\nb", "x": "2"}`)
}
