// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package pattern allows working with file name patterns, also known as
// wildcards or globbing, as used by the files command.
//
// The notation has no escape character, so that backslashes in Windows paths
// need no special treatment. Metacharacters can be matched literally by
// wrapping them in brackets, such as "[*]".
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrRecursive is returned when "**" does not form a whole path component.
var ErrRecursive = errors.New("recursive wildcards must form a single path component")

func writeClassRune(sb *strings.Builder, r rune) {
	if strings.ContainsRune(`\[]^-`, r) {
		sb.WriteByte('\\')
	}
	sb.WriteRune(r)
}

// class translates a bracket expression starting at pat[0] == '['. It returns
// the number of bytes consumed.
func class(sb *strings.Builder, pat string) (int, error) {
	i := 1
	neg := false
	if i < len(pat) && pat[i] == '!' {
		neg = true
		i++
	}
	start := i
	// a ']' right after the opening bracket is a literal
	end := strings.IndexByte(pat[min(start+1, len(pat)):], ']')
	if start >= len(pat) || end < 0 {
		return 0, fmt.Errorf("[ was not matched with a closing ]")
	}
	end += start + 1
	sb.WriteByte('[')
	if neg {
		sb.WriteByte('^')
	}
	runes := []rune(pat[start:end])
	for k := 0; k < len(runes); k++ {
		lo := runes[k]
		if k+2 < len(runes) && runes[k+1] == '-' {
			hi := runes[k+2]
			if lo > hi {
				return 0, fmt.Errorf("invalid range: %c-%c", lo, hi)
			}
			writeClassRune(sb, lo)
			sb.WriteByte('-')
			writeClassRune(sb, hi)
			k += 2
			continue
		}
		writeClassRune(sb, lo)
	}
	sb.WriteByte(']')
	return end + 1, nil
}

// Regexp turns a pattern for a single path component into a regular
// expression that can be used with regexp.Compile. It will return an error if
// the input pattern was incorrect. Otherwise, the returned expression can be
// passed to regexp.MustCompile.
//
// For example, Regexp(`foo*bar?`) returns `foo[^/]*bar[^/]`.
//
// The expression is not anchored; see [Match] for whole-name matching.
func Regexp(pat string) (string, error) {
	if !HasMeta(pat) { // short-cut without a string copy
		return regexp.QuoteMeta(pat), nil
	}
	var sb strings.Builder
	for i := 0; i < len(pat); {
		switch c := pat[i]; c {
		case '*':
			if i+1 < len(pat) && pat[i+1] == '*' {
				return "", ErrRecursive
			}
			sb.WriteString("[^/]*")
			i++
		case '?':
			sb.WriteString("[^/]")
			i++
		case '[':
			n, err := class(&sb, pat[i:])
			if err != nil {
				return "", err
			}
			i += n
		default:
			j := i + 1
			for j < len(pat) && !strings.ContainsRune("*?[", rune(pat[j])) {
				j++
			}
			sb.WriteString(regexp.QuoteMeta(pat[i:j]))
			i = j
		}
	}
	return sb.String(), nil
}

// Match reports whether name matches the single path component pattern pat
// in its entirety.
func Match(pat, name string) (bool, error) {
	expr, err := Regexp(pat)
	if err != nil {
		return false, err
	}
	rx, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return false, err
	}
	return rx.MatchString(name), nil
}

// HasMeta returns whether a string contains any pattern metacharacters:
// '*', '?', or '['. When the function returns false, the given pattern can
// only match at most one string.
func HasMeta(pat string) bool {
	return strings.ContainsAny(pat, "*?[")
}

// QuoteMeta returns a string that quotes all pattern metacharacters in the
// given text. The returned string is a pattern that matches the literal text.
//
// For example, QuoteMeta(`foo*bar?`) returns `foo[*]bar[?]`.
func QuoteMeta(pat string) string {
	if !HasMeta(pat) { // short-cut without a string copy
		return pat
	}
	var sb strings.Builder
	for _, r := range pat {
		switch r {
		case '*', '?', '[':
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
