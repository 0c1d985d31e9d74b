package token

import "errors"

// ErrDanglingSigil is returned when a placeholder sigil is the last token of
// a script. It is a fatal condition for the whole run.
var ErrDanglingSigil = errors.New("placeholder sigil is not followed by a token")

// Options tune Retokenize.
type Options struct {
	// FuseCompound merges adjacent `.` `.`, `=` `=` and `~` `=` pairs into
	// the Lua operators `..`, `==` and `~=`.
	FuseCompound bool
}

// Flatten walks trees depth first. A delimited group contributes a one
// character open marker at its start and a close marker at its end.
func Flatten(trees []Tree) []Token {
	var out []Token
	for _, t := range trees {
		out = flattenInto(out, t)
	}
	return out
}

func flattenInto(out []Token, t Tree) []Token {
	switch n := t.(type) {
	case *Leaf:
		out = append(out, Token{Text: n.Text, Tree: n, Start: n.Loc.Start, End: n.Loc.End})
	case *Group:
		if n.Delim != NoDelim {
			out = append(out, Token{
				Text:  n.Delim.Open(),
				Tree:  n,
				Start: n.Loc.Start,
				End:   n.Loc.Start.right(),
			})
		}
		for _, c := range n.Children {
			out = flattenInto(out, c)
		}
		if n.Delim != NoDelim {
			out = append(out, Token{
				Text:  n.Delim.Close(),
				Tree:  n,
				Start: n.Loc.End.left(),
				End:   n.Loc.End,
			})
		}
	}
	return out
}

// Retokenize flattens trees and fuses placeholder sigils with the token that
// follows them. The fused token keeps its own text and span; only its Attr
// changes.
func Retokenize(trees []Tree, opts Options) ([]Token, error) {
	flat := Flatten(trees)
	out := make([]Token, 0, len(flat))

	for i := 0; i < len(flat); i++ {
		t := flat[i]
		attr := sigil(t)
		if attr == None {
			out = append(out, t)
			continue
		}
		if i+1 >= len(flat) {
			return nil, ErrDanglingSigil
		}
		i++
		next := flat[i]
		next.Attr = attr
		out = append(out, next)
	}

	if opts.FuseCompound {
		out = fuseCompound(out)
	}
	return out, nil
}

func sigil(t Token) Attr {
	if _, ok := t.Tree.(*Leaf); !ok {
		return None
	}
	switch t.Text {
	case "@":
		return Cap
	case "$":
		return Var
	}
	return None
}

var compounds = map[[2]string]string{
	{".", "."}: "..",
	{"=", "="}: "==",
	{"~", "="}: "~=",
}

func fuseCompound(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for i := 0; i < len(in); i++ {
		t := in[i]
		if i+1 < len(in) && t.Attr == None && in[i+1].Attr == None && t.End == in[i+1].Start {
			if joined, ok := compounds[[2]string{t.Text, in[i+1].Text}]; ok {
				t.Text = joined
				t.End = in[i+1].End
				i++
			}
		}
		out = append(out, t)
	}
	return out
}
