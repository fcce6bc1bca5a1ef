// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package pattern

import (
	"fmt"
	"regexp/syntax"
	"testing"
)

var translateTests = []struct {
	pat     string
	want    string
	wantErr bool
}{
	{pat: ``, want: ``},
	{pat: `foo`, want: `foo`},
	{pat: `foóà中`, want: `foóà中`},
	{pat: `.`, want: `\.`},
	{pat: `foo*`, want: `foo[^/]*`},
	{pat: `*foo`, want: `[^/]*foo`},
	{pat: `*.txt`, want: `[^/]*\.txt`},
	{pat: `foo*bar?`, want: `foo[^/]*bar[^/]`},
	{pat: `**`, wantErr: true},
	{pat: `a**b`, wantErr: true},
	{pat: `?`, want: `[^/]`},
	{pat: `?à`, want: `[^/]à`},
	{pat: `\`, want: `\\`},
	{pat: `\a*`, want: `\\a[^/]*`},
	{pat: `(`, want: `\(`},
	{pat: `a|b`, want: `a\|b`},
	{pat: `x{3}`, want: `x\{3\}`},
	{pat: `[a]`, want: `[a]`},
	{pat: `[abc]`, want: `[abc]`},
	{pat: `[!bc]`, want: `[^bc]`},
	{pat: `[^bc]`, want: `[\^bc]`},
	{pat: `[[]`, want: `[\[]`},
	{pat: `[]]`, want: `[\]]`},
	{pat: `[!]]`, want: `[^\]]`},
	{pat: `[\]`, want: `[\\]`},
	{pat: `[`, wantErr: true},
	{pat: `[!`, wantErr: true},
	{pat: `[]`, wantErr: true},
	{pat: `[!]`, wantErr: true},
	{pat: `[ab`, wantErr: true},
	{pat: `[a-]`, want: `[a\-]`},
	{pat: `[-a]`, want: `[\-a]`},
	{pat: `[z-a]`, wantErr: true},
	{pat: `[a-a]`, want: `[a-a]`},
	{pat: `[0-4A-Z]`, want: `[0-4A-Z]`},
	{pat: `[é-ú]x`, want: `[é-ú]x`},
}

func TestRegexp(t *testing.T) {
	t.Parallel()
	for i, tc := range translateTests {
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			got, gotErr := Regexp(tc.pat)
			if tc.wantErr && gotErr == nil {
				t.Fatalf("%q did not error", tc.pat)
			}
			if !tc.wantErr && gotErr != nil {
				t.Fatalf("%q errored with %q", tc.pat, gotErr)
			}
			if got != tc.want {
				t.Fatalf("%q got %q, wanted %q", tc.pat, got, tc.want)
			}
			_, rxErr := syntax.Parse(got, syntax.Perl)
			if gotErr == nil && rxErr != nil {
				t.Fatalf("regexp/syntax.Parse(%q) failed with %q", got, rxErr)
			}
		})
	}
}

var matchTests = []struct {
	pat, name string
	want      bool
}{
	{"*.txt", "a.txt", true},
	{"*.txt", ".hidden.txt", true},
	{"*.txt", "a.txt.bak", false},
	{"a?c", "abc", true},
	{"a?c", "ac", false},
	{"[!a]*", "abc", false},
	{"[!a]*", "bcd", true},
	{"[*]", "*", true},
	{"[*]", "x", false},
	{"foo", "foo", true},
	{"foo", "foobar", false},
}

func TestMatch(t *testing.T) {
	t.Parallel()
	for _, tc := range matchTests {
		got, err := Match(tc.pat, tc.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("Match(%q, %q) got %t, wanted %t", tc.pat, tc.name, got, tc.want)
		}
	}
}

var metaTests = []struct {
	pat       string
	wantHas   bool
	wantQuote string
}{
	{``, false, ``},
	{`foo`, false, `foo`},
	{`.`, false, `.`},
	{`]`, false, `]`},
	{`*`, true, `[*]`},
	{`foo?`, true, `foo[?]`},
	{`\[`, true, `\[[]`},
	{`a*b?[c]`, true, `a[*]b[?][[]c]`},
}

func TestMeta(t *testing.T) {
	t.Parallel()
	for _, tc := range metaTests {
		if got := HasMeta(tc.pat); got != tc.wantHas {
			t.Errorf("HasMeta(%q) got %t, wanted %t", tc.pat, got, tc.wantHas)
		}
		got := QuoteMeta(tc.pat)
		if got != tc.wantQuote {
			t.Errorf("QuoteMeta(%q) got %q, wanted %q", tc.pat, got, tc.wantQuote)
		}
		if ok, err := Match(got, tc.pat); err != nil || !ok {
			t.Errorf("QuoteMeta(%q) does not match itself: %v", tc.pat, err)
		}
	}
}
