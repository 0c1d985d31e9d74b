// Package script assembles retokenized host tokens into a Lua body.
//
// The assembled body approximates the original layout: tokens on a new host
// line start a new Lua line, tokens on the same line are separated by the
// column gap. Placeholders are replaced by internal locals that a generated
// preamble binds from ARGV.
package script

import (
	"strings"

	"github.com/rubiojr/redislua/token"
)

// Script is an assembled, not yet checked, Lua script.
type Script struct {
	body    string
	wrapped string
	spans   *SpanIndex
	args    *Args
}

// New assembles tokens. With convertArgs set, every placeholder is replaced
// by its internal local and a wrapped body binding those locals is built;
// otherwise sigils are emitted verbatim and the wrapped body is empty.
func New(tokens []token.Token, convertArgs bool) *Script {
	var (
		b     strings.Builder
		spans = NewSpanIndex()
		args  = newArgs()
		prev  *token.Token
	)

	for i := range tokens {
		t := tokens[i]
		begin := b.Len()

		start := t.Start
		if t.IsPlaceholder() {
			start.Column-- // sigil
		}
		if prev != nil {
			if start.Line > prev.End.Line {
				b.WriteByte('\n')
			} else if gap := start.Column - prev.End.Column; gap > 0 {
				b.WriteString(strings.Repeat(" ", gap))
			}
		}

		switch {
		case t.IsPlaceholder() && convertArgs:
			b.WriteString(args.Add(t).Lua)
		case t.IsPlaceholder():
			b.WriteString(sigil(t.Attr) + t.Text)
		default:
			b.WriteString(t.Text)
		}

		spans.Insert(begin, b.Len(), t.Span())
		prev = &tokens[i]
	}

	s := &Script{
		body:  strings.TrimRight(b.String(), " \t\r\n"),
		spans: spans,
		args:  args,
	}
	if convertArgs {
		s.wrapped = wrap(s.body, args.All())
	}
	return s
}

func sigil(a token.Attr) string {
	switch a {
	case token.Cap:
		return "@"
	case token.Var:
		return "$"
	}
	return ""
}

func wrap(body string, args []Arg) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString("local ")
		b.WriteString(a.Lua)
		b.WriteString(" = ")
		b.WriteString(a.ARGV)
		b.WriteString("; ")
	}
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}

// Body returns the checked body.
func (s *Script) Body() string { return s.body }

// Wrapped returns the body prefixed with the ARGV bindings. It is empty for
// scripts assembled without placeholder conversion.
func (s *Script) Wrapped() string { return s.wrapped }

// Args returns every placeholder in registration order.
func (s *Script) Args() []Arg { return s.args.All() }

// Caps returns the construction-time placeholders in registration order.
func (s *Script) Caps() []Arg { return s.args.filter(Cap) }

// Vars returns the builder placeholders in registration order.
func (s *Script) Vars() []Arg { return s.args.filter(Var) }

// LuaNames returns the internal local names, which the linter must treat as
// defined.
func (s *Script) LuaNames() []string {
	out := make([]string, 0, s.args.Len())
	for _, a := range s.args.All() {
		out = append(out, a.Lua)
	}
	return out
}

// RangeToSpans maps the inclusive byte range [start, end] of the checked
// body to host spans. More than one span may come back.
func (s *Script) RangeToSpans(start, end int) []token.Span {
	return s.spans.Lookup(start, end)
}
