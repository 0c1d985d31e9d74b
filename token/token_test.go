package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestLex_SingleLineOffsetsByOrigin(t *testing.T) {
	trees, err := Lex("a.go", "return x", Pos{Line: 10, Column: 20})
	require.NoError(t, err)
	require.Len(t, trees, 2)

	leaf := trees[0].(*Leaf)
	assert.Equal(t, "return", leaf.Text)
	assert.Equal(t, Pos{Line: 10, Column: 20}, leaf.Loc.Start)
	assert.Equal(t, Pos{Line: 10, Column: 26}, leaf.Loc.End)
	assert.Equal(t, "a.go", leaf.Loc.File)

	x := trees[1].(*Leaf)
	assert.Equal(t, Pos{Line: 10, Column: 27}, x.Loc.Start)
}

func TestLex_LaterLinesKeepColumns(t *testing.T) {
	trees, err := Lex("a.go", "\n  return 1", Pos{Line: 3, Column: 15})
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, Pos{Line: 4, Column: 3}, trees[0].Span().Start)
	assert.Equal(t, Pos{Line: 4, Column: 10}, trees[1].Span().Start)
}

func TestLex_DropsAutomaticSemicolons(t *testing.T) {
	trees, err := Lex("a.go", "local x = 1\nreturn x\n", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	for _, tr := range trees {
		if l, ok := tr.(*Leaf); ok {
			assert.NotEqual(t, ";", l.Text)
		}
	}
	assert.Len(t, trees, 6)
}

func TestLex_KeepsExplicitSemicolons(t *testing.T) {
	trees, err := Lex("a.go", "a = 1; b = 2", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "=", "1", ";", "b", "=", "2"}, texts(Flatten(trees)))
}

func TestLex_Groups(t *testing.T) {
	trees, err := Lex("a.go", "f(a, {b})", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	require.Len(t, trees, 2)

	g, ok := trees[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, Parenthesis, g.Delim)
	assert.Equal(t, Pos{Line: 1, Column: 2}, g.Loc.Start)
	assert.Equal(t, Pos{Line: 1, Column: 10}, g.Loc.End)
	require.Len(t, g.Children, 3)
	inner, ok := g.Children[2].(*Group)
	require.True(t, ok)
	assert.Equal(t, Brace, inner.Delim)
}

func TestLex_SigilsAreLeaves(t *testing.T) {
	trees, err := Lex("a.go", "@x + $y + #t", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"@", "x", "+", "$", "y", "+", "#", "t"}, texts(Flatten(trees)))
}

func TestLex_Unbalanced(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unclosed", "f(a", "unclosed delimiter `(`"},
		{"stray close", "a)", "unexpected closing delimiter `)`"},
		{"mismatch", "f(a]", "mismatched closing delimiter `]`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex("a.go", tt.src, Pos{Line: 1, Column: 1})
			require.Error(t, err)
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Msg, tt.msg)
		})
	}
}

func TestFlatten_MarkerPositions(t *testing.T) {
	trees, err := Lex("a.go", "(x)", Pos{Line: 2, Column: 5})
	require.NoError(t, err)
	toks := Flatten(trees)
	require.Len(t, toks, 3)

	assert.Equal(t, "(", toks[0].Text)
	assert.Equal(t, Pos{Line: 2, Column: 5}, toks[0].Start)
	assert.Equal(t, Pos{Line: 2, Column: 6}, toks[0].End)

	assert.Equal(t, ")", toks[2].Text)
	assert.Equal(t, Pos{Line: 2, Column: 7}, toks[2].Start)
	assert.Equal(t, Pos{Line: 2, Column: 8}, toks[2].End)
}

func TestRetokenize_Sigils(t *testing.T) {
	trees, err := Lex("a.go", "return @x + $y", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	toks, err := Retokenize(trees, Options{})
	require.NoError(t, err)
	require.Len(t, toks, 4)

	assert.Equal(t, Token{Text: "x", Attr: Cap}.Key(), toks[1].Key())
	assert.Equal(t, Pos{Line: 1, Column: 9}, toks[1].Start, "fused token keeps its own span")
	assert.Equal(t, Var, toks[3].Attr)
	assert.Equal(t, "y", toks[3].Text)
	assert.True(t, toks[3].IsPlaceholder())
	assert.False(t, toks[2].IsPlaceholder())
}

func TestRetokenize_DanglingSigil(t *testing.T) {
	trees, err := Lex("a.go", "return 1 + @", Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	_, err = Retokenize(trees, Options{})
	assert.ErrorIs(t, err, ErrDanglingSigil)
}

func TestRetokenize_FuseCompound(t *testing.T) {
	trees, err := Lex("a.go", "a .. b ~= c . . d", Pos{Line: 1, Column: 1})
	require.NoError(t, err)

	plain, err := Retokenize(trees, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ".", ".", "b", "~", "=", "c", ".", ".", "d"}, texts(plain))

	fused, err := Retokenize(trees, Options{FuseCompound: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "..", "b", "~=", "c", ".", ".", "d"}, texts(fused))
	assert.Equal(t, Pos{Line: 1, Column: 3}, fused[1].Start)
	assert.Equal(t, Pos{Line: 1, Column: 5}, fused[1].End)
}

func TestToken_Equal(t *testing.T) {
	a := Token{Text: "x", Attr: Var, Start: Pos{1, 1}}
	b := Token{Text: "x", Attr: Var, Start: Pos{9, 9}}
	c := Token{Text: "x", Attr: Cap}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestSpan_String(t *testing.T) {
	assert.Equal(t, "a.go:3:4", Span{File: "a.go", Start: Pos{3, 4}}.String())
	assert.Equal(t, "<unknown>:0:0", Span{}.String())
	assert.False(t, Span{}.IsValid())
}
