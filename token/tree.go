package token

import (
	"fmt"
	goscanner "go/scanner"
	gotoken "go/token"
)

// Delimiter is the bracket kind of a Group.
type Delimiter int

const (
	Parenthesis Delimiter = iota
	Brace
	Bracket
	NoDelim
)

// Open returns the opening text of d, empty for NoDelim.
func (d Delimiter) Open() string {
	switch d {
	case Parenthesis:
		return "("
	case Brace:
		return "{"
	case Bracket:
		return "["
	}
	return ""
}

// Close returns the closing text of d, empty for NoDelim.
func (d Delimiter) Close() string {
	switch d {
	case Parenthesis:
		return ")"
	case Brace:
		return "}"
	case Bracket:
		return "]"
	}
	return ""
}

// Tree is a node of the host syntax fragment: a Leaf or a Group.
type Tree interface {
	Span() Span
	isTree()
}

// Leaf is a single opaque host atom.
type Leaf struct {
	Text string
	Loc  Span
}

func (l *Leaf) Span() Span     { return l.Loc }
func (l *Leaf) String() string { return l.Text }
func (*Leaf) isTree()          {}

// Group is a delimited run of trees. Loc covers both delimiters.
type Group struct {
	Delim    Delimiter
	Loc      Span
	Children []Tree
}

func (g *Group) Span() Span { return g.Loc }
func (*Group) isTree()      {}

// LexError reports a malformed host fragment, such as an unbalanced bracket.
type LexError struct {
	Span Span
	Msg  string
}

func (e *LexError) Error() string { return fmt.Sprintf("%s: %s", e.Span, e.Msg) }

// Lex scans the content of an embedded script literal with the Go scanner and
// groups the result into delimiter groups. origin is the host position of
// the first content byte; positions on the first line are shifted by its
// column, later lines keep their own columns.
//
// Lexical errors of the Go scanner are ignored: the content is not Go, and
// the scanner still returns the offending text as a token.
func Lex(file, content string, origin Pos) ([]Tree, error) {
	fset := gotoken.NewFileSet()
	f := fset.AddFile(file, -1, len(content))

	var s goscanner.Scanner
	s.Init(f, []byte(content), nil, 0)

	type frame struct {
		group *Group
		close gotoken.Token
	}
	root := &Group{Delim: NoDelim}
	stack := []frame{{group: root}}

	for {
		p, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		// Automatic semicolons carry "\n" (or nothing at EOF) as literal.
		if tok == gotoken.SEMICOLON && lit != ";" {
			continue
		}
		text := lit
		if text == "" {
			text = tok.String()
		}
		pos := fset.Position(p)
		start := hostPos(origin, pos.Line, pos.Column)
		end := Pos{Line: start.Line, Column: start.Column + len(text)}
		span := Span{File: file, Start: start, End: end}
		top := stack[len(stack)-1]

		switch tok {
		case gotoken.LPAREN, gotoken.LBRACE, gotoken.LBRACK:
			g := &Group{Delim: delimOf(tok), Loc: span}
			top.group.Children = append(top.group.Children, g)
			stack = append(stack, frame{group: g, close: closerOf(tok)})
		case gotoken.RPAREN, gotoken.RBRACE, gotoken.RBRACK:
			if len(stack) == 1 {
				return nil, &LexError{Span: span, Msg: fmt.Sprintf("unexpected closing delimiter `%s`", text)}
			}
			if top.close != tok {
				return nil, &LexError{Span: span, Msg: fmt.Sprintf("mismatched closing delimiter `%s`, expected `%s`", text, top.close)}
			}
			top.group.Loc.End = end
			stack = stack[:len(stack)-1]
		default:
			top.group.Children = append(top.group.Children, &Leaf{Text: text, Loc: span})
		}
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].group
		return nil, &LexError{Span: open.Loc, Msg: fmt.Sprintf("unclosed delimiter `%s`", open.Delim.Open())}
	}
	return root.Children, nil
}

func hostPos(origin Pos, line, col int) Pos {
	if line == 1 {
		return Pos{Line: origin.Line, Column: origin.Column + col - 1}
	}
	return Pos{Line: origin.Line + line - 1, Column: col}
}

func delimOf(tok gotoken.Token) Delimiter {
	switch tok {
	case gotoken.LPAREN:
		return Parenthesis
	case gotoken.LBRACE:
		return Brace
	default:
		return Bracket
	}
}

func closerOf(tok gotoken.Token) gotoken.Token {
	switch tok {
	case gotoken.LPAREN:
		return gotoken.RPAREN
	case gotoken.LBRACE:
		return gotoken.RBRACE
	default:
		return gotoken.RBRACK
	}
}
