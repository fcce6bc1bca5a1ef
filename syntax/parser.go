// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Parser holds the state to parse Ben scripts. It can be reused, but it is
// not safe for concurrent use.
type Parser struct {
	name  string
	lines []line

	err error
}

// NewParser allocates a new [Parser].
func NewParser() *Parser {
	return &Parser{}
}

type line struct {
	num  int
	text string
}

// ParseError represents an error found when parsing a source file, from
// which the parser cannot recover. No part of a program that fails to parse
// is run.
type ParseError struct {
	Filename string
	Line     int
	Text     string
}

func (e *ParseError) Error() string {
	prefix := ""
	if e.Filename != "" {
		prefix = e.Filename + ":"
	}
	return fmt.Sprintf("%s%d: %s", prefix, e.Line, e.Text)
}

// Parse reads and parses a Ben program from a reader. The name will be used
// as the filename of the program and in error messages.
func (p *Parser) Parse(r io.Reader, name string) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p.name = name
	p.err = nil
	p.lines = splitLines(string(src))
	prog := &Program{Name: name}
	prog.Stmts = p.stmts(p.lines)
	p.lines = nil
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// splitLines splits src into lines, dropping the line terminators
// "\n" and "\r\n". A trailing newline does not start an extra line.
func splitLines(src string) []line {
	var lines []line
	num := 1
	for src != "" {
		text, rest, found := strings.Cut(src, "\n")
		text = strings.TrimSuffix(text, "\r")
		lines = append(lines, line{num: num, text: text})
		num++
		if !found {
			break
		}
		src = rest
	}
	return lines
}

func (p *Parser) errf(num int, format string, a ...any) {
	if p.err == nil {
		p.err = &ParseError{
			Filename: p.name,
			Line:     num,
			Text:     fmt.Sprintf(format, a...),
		}
	}
}

func (p *Parser) stmts(lines []line) []Stmt {
	var stmts []Stmt
	for i := 0; i < len(lines) && p.err == nil; {
		l := lines[i]
		i++
		if strings.HasPrefix(l.text, "#") || strings.TrimSpace(l.text) == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(l.text, "let "); ok {
			name, value, found := strings.Cut(rest, " = ")
			if !found {
				p.errf(l.num, `let declaration needs " = "`)
				break
			}
			stmts = append(stmts, &Declaration{
				Line:  l.num,
				Name:  name,
				Value: parseCommand(value),
			})
			continue
		}
		if inner, ok := forHeader(l.text); ok {
			iter := parseCommand(inner)
			if iter.Name == "" {
				p.errf(l.num, "for loop needs an iterator command")
				break
			}
			var body []line
			for ; i < len(lines); i++ {
				text, ok := blockLine(lines[i].text)
				if !ok {
					break
				}
				body = append(body, line{num: lines[i].num, text: text})
			}
			stmts = append(stmts, &ForClause{
				Line:     l.num,
				Iterator: iter,
				Body:     p.stmts(body),
			})
			continue
		}
		stmts = append(stmts, &CallStmt{Line: l.num, Cmd: parseCommand(l.text)})
	}
	return stmts
}

// forHeader reports whether text is of the form "for COMMAND each",
// returning COMMAND.
func forHeader(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, "for ")
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, " each")
}

// blockLine reports whether text belongs to the body of a for loop: it is
// either blank or indented by one tab or two spaces. The indentation is
// removed from the returned text.
func blockLine(text string) (string, bool) {
	if rest, ok := strings.CutPrefix(text, "\t"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(text, "  "); ok {
		return rest, true
	}
	if strings.TrimSpace(text) == "" {
		return text, true
	}
	return "", false
}

// parseCommand splits a line into a command name and its arguments.
//
// Tokens are separated by spaces. A quote of either kind starts a quoted
// token which is closed by the next quote of either kind; its contents are
// kept verbatim. Quotes do not nest and cannot be escaped.
func parseCommand(src string) *Command {
	cmd := &Command{}
	add := func(tok string) {
		if cmd.Name == "" && tok != "" {
			cmd.Name = tok
		} else {
			cmd.Args = append(cmd.Args, Arg(tok))
		}
	}
	quoted := false
	last := 0
	for i, r := range src {
		switch {
		case quoted:
			if r == '"' || r == '\'' {
				add(src[last:i])
				last = i + 1
				quoted = false
			}
		case r == '"' || r == '\'':
			// anything between the last token and the quote is dropped
			quoted = true
			last = i + 1
		case r == ' ':
			if part := strings.TrimSpace(src[last:i]); part != "" {
				add(part)
				last = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(src[last:]); rest != "" {
		add(rest)
	}
	return cmd
}
