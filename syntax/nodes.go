// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

// Node represents a node in a parsed program.
type Node interface {
	// Pos returns the line the node starts at, counting from 1.
	// Nodes built by hand may return 0.
	Pos() int
}

// Program is a parsed Ben script.
type Program struct {
	Name string

	Stmts []Stmt
}

func (p *Program) Pos() int {
	if len(p.Stmts) == 0 {
		return 0
	}
	return p.Stmts[0].Pos()
}

// Stmt is implemented by all statement nodes: [*Declaration], [*ForClause]
// and [*CallStmt].
type Stmt interface {
	Node
	stmtNode()
}

func (*Declaration) stmtNode() {}
func (*ForClause) stmtNode()   {}
func (*CallStmt) stmtNode()    {}

// Declaration binds the output of a command to a variable, as in
// "let name = command args".
type Declaration struct {
	Line  int
	Name  string
	Value *Command
}

func (d *Declaration) Pos() int { return d.Line }

// ForClause runs its body once per line of the iterator command's output,
// as in:
//
//	for files "*.txt" each
//		echo $file
type ForClause struct {
	Line     int
	Iterator *Command
	Body     []Stmt
}

func (f *ForClause) Pos() int { return f.Line }

// CallStmt is a command run for its side effects; its output is discarded.
type CallStmt struct {
	Line int
	Cmd  *Command
}

func (c *CallStmt) Pos() int { return c.Line }

// Command is a named operation with its arguments.
type Command struct {
	Name string
	Args []Arg
}

// Arg holds the raw source text of an argument, with quotes removed.
// Variable references and escapes are left untouched, so that they are
// interpolated again every time the argument is evaluated.
type Arg string

// Raw returns the argument's text without any interpolation.
func (a Arg) Raw() string { return string(a) }
