package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rubiojr/redislua/token"
)

func span(line, col, end int) token.Span {
	return token.Span{File: "a.go", Start: token.Pos{Line: line, Column: col}, End: token.Pos{Line: line, Column: end}}
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.False(t, c.HasErrors())
	assert.Equal(t, 0, c.Len())

	c.Emit(Diagnostic{Level: Warning, Message: "w"})
	assert.False(t, c.HasErrors())

	c.Errorf(span(1, 1, 2), "bad %s", "thing")
	assert.True(t, c.HasErrors())

	errs, warns := c.Counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)

	all := c.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "bad thing", all[1].Message)
	assert.Equal(t, "a.go:1:1: error: bad thing", all[1].String())

	var other Collector
	other.Merge(&c)
	assert.Equal(t, 2, other.Len())
}

func TestPrinter_Excerpt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.AddSource("a.go", []byte("package a\n\nconst s = `return foo`\n"))

	p.Print(Diagnostic{
		Level:   Error,
		Message: "in script: `foo` is not defined (undefined_variable)",
		Spans:   []token.Span{span(3, 19, 22)},
		Notes:   []string{"define it"},
	})

	want := "a.go:3:19: error: in script: `foo` is not defined (undefined_variable)\n" +
		"  |\n" +
		"3 | const s = `return foo`\n" +
		"  |                   ^^^\n" +
		"  = note: define it\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_NoSource(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Print(Diagnostic{Level: Warning, Message: "m", Spans: []token.Span{{File: "missing.go", Start: token.Pos{Line: 1, Column: 1}}}})
	assert.Equal(t, "missing.go:1:1: warning: m\n", buf.String())
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Print(Diagnostic{Level: Error, Message: "m"})
	assert.Contains(t, buf.String(), colorError)
	assert.Contains(t, buf.String(), colorReset)
}

func TestPrintAll_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.PrintAll([]Diagnostic{{Level: Error, Message: "a"}, {Level: Warning, Message: "b"}})
	assert.Contains(t, buf.String(), "1 error(s), 1 warning(s)\n")
}
