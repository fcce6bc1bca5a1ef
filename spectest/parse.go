// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package spectest runs the example programs of a markdown specification
// and compares their output with the expected output written next to them.
//
// Every heading of level three or more starts a case named after it. The
// first code block after the heading is the program, and the second is its
// expected output. Any further code block starts a follow-up case under the
// same name plus " *", with that code block as its program:
//
//	### Echo
//
//	```
//	echo hello
//	```
//
//	```
//	hello
//	```
package spectest

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Case is one program with its expected output.
type Case struct {
	Name string
	Line int // of the code block holding the program

	Script string
	Want   string
}

// Parse extracts the cases from a markdown document.
// Code blocks before the first heading form a case with an empty name.
func Parse(src []byte) []Case {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []Case
	var cur Case
	wantSet := false
	push := func() {
		if cur.Script != "" {
			cases = append(cases, cur)
		}
	}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if n.Level >= 3 {
				push()
				cur, wantSet = Case{Name: plainText(n, src)}, false
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			code, line := blockText(n, src)
			switch {
			case cur.Script == "":
				cur.Script, cur.Line = code, line
			case !wantSet:
				cur.Want, wantSet = code, true
			default:
				push()
				cur, wantSet = Case{Name: cur.Name + " *", Script: code, Line: line}, false
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	push()
	return cases
}

// plainText returns the text of a node without any markup.
func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(src))
			if n.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// blockText returns the contents of a code block, and the line its contents
// start at. Blocks with no contents report line 0.
func blockText(n ast.Node, src []byte) (string, int) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return "", 0
	}
	var buf bytes.Buffer
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	line := bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
	return buf.String(), line
}
