// Package token turns the source of an embedded script into a flat sequence
// of positioned tokens.
//
// The host fragment is first lexed into a small syntax tree of leaves and
// delimiter groups (see Lex), then flattened and re-lexed (see Retokenize).
// Every token keeps the host position it came from so that diagnostics
// produced against the assembled script can point back at the Go file.
package token

import "fmt"

// Pos is a 1-based line and column in the host file. Columns count bytes.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) left() Pos {
	if p.Column <= 0 {
		return p
	}
	return Pos{Line: p.Line, Column: p.Column - 1}
}

func (p Pos) right() Pos {
	return Pos{Line: p.Line, Column: p.Column + 1}
}

// Before reports whether p comes strictly before q.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Span is a location range in a host file. End is exclusive.
type Span struct {
	File  string
	Start Pos
	End   Pos
}

// String renders the span start in the file:line:col form used by Go tools.
func (s Span) String() string {
	file := s.File
	if file == "" {
		file = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", file, s.Start.Line, s.Start.Column)
}

// IsValid reports whether the span carries a position.
func (s Span) IsValid() bool { return s.Start.Line > 0 }

// Attr tags a token with its placeholder role.
type Attr int

const (
	None Attr = iota
	Var       // $name, supplied later through a builder method
	Cap       // @name, captured when the script is constructed
)

func (a Attr) String() string {
	switch a {
	case Var:
		return "var"
	case Cap:
		return "cap"
	default:
		return "none"
	}
}

// Key is the identity of a token for placeholder de-duplication. Two
// occurrences of the same name with the same sigil are the same placeholder,
// wherever they appear.
type Key struct {
	Text string
	Attr Attr
}

// Token is one host atom or one synthetic delimiter marker.
type Token struct {
	Text  string
	Tree  Tree // originating host node, shared with the tree
	Start Pos
	End   Pos
	Attr  Attr
}

// Key returns the de-duplication identity of t.
func (t Token) Key() Key { return Key{Text: t.Text, Attr: t.Attr} }

// Equal compares tokens by text and attribute only.
func (t Token) Equal(o Token) bool { return t.Key() == o.Key() }

// Span returns the host location of the token itself.
func (t Token) Span() Span {
	var file string
	if t.Tree != nil {
		file = t.Tree.Span().File
	}
	return Span{File: file, Start: t.Start, End: t.End}
}

// IsPlaceholder reports whether t was produced by sigil fusion.
func (t Token) IsPlaceholder() bool { return t.Attr != None }

func (t Token) String() string { return t.Text }
