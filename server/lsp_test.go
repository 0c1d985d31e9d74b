package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rubiojr/redislua/compiler"
	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/token"
)

const brokenDoc = "package demo\n\n" +
	"//redislua:script Broken\n" +
	"const brokenSrc = `return foo`\n"

func newTestServer() *LspServer {
	return NewLSP(&compiler.Compiler{}, "test")
}

func TestDiagnose_ScriptFinding(t *testing.T) {
	s := newTestServer()
	got := s.diagnose("file:///tmp/demo/demo.go", brokenDoc)
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, "in script: `foo` is not defined (undefined_variable)", d.Message)
	assert.Equal(t, protocol.Position{Line: 3, Character: 26}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 3, Character: 29}, d.Range.End)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
}

func TestDiagnose_Clean(t *testing.T) {
	s := newTestServer()
	doc := "package demo\n\n//redislua:script Ok\nconst okSrc = `return $x`\n"
	assert.Empty(t, s.diagnose("file:///tmp/demo/demo.go", doc))
}

func TestDiagnose_NonGo(t *testing.T) {
	s := newTestServer()
	assert.Empty(t, s.diagnose("file:///tmp/demo/README.md", brokenDoc))
}

func TestDiagnose_GoSyntaxError(t *testing.T) {
	s := newTestServer()
	assert.Empty(t, s.diagnose("file:///tmp/demo/demo.go", "package demo\nconst =\n"))
}

func TestDiagnose_DanglingSigil(t *testing.T) {
	s := newTestServer()
	doc := "package demo\n\n//redislua:script S\nconst s = `return $`\n"
	got := s.diagnose("file:///tmp/demo/demo.go", doc)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, token.ErrDanglingSigil.Error())
	assert.Equal(t, protocol.Range{}, got[0].Range)
}

func TestToProtocol(t *testing.T) {
	at := token.Pos{Line: 2, Column: 5}
	d := diag.Diagnostic{
		Level:   diag.Warning,
		Message: "in script: `x` is unused (unused_variable)",
		Spans:   []token.Span{{File: "a.go", Start: at, End: at}},
		Notes:   []string{"prefix with _ to silence"},
	}
	got := toProtocol(d)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, got.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 5}, got.Range.End)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *got.Severity)
	assert.Equal(t, "in script: `x` is unused (unused_variable)\nnote: prefix with _ to silence", got.Message)
}

func TestURIPath(t *testing.T) {
	assert.Equal(t, "/tmp/a b.go", uriPath("file:///tmp/a%20b.go"))
	assert.Equal(t, "untitled:1", uriPath("untitled:1"))
}
