// Package server implements a language server that reports embedded script
// diagnostics for open Go files.
package server

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/rubiojr/redislua/compiler"
	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/token"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "redislua-lsp"

var log = commonlog.GetLogger("redislua.server")

// LspServer checks Go documents as they are edited.
type LspServer struct {
	compiler *compiler.Compiler

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP returns a server checking documents with c.
func NewLSP(c *compiler.Compiler, version string) *LspServer {
	s := &LspServer{
		compiler: c,
		docs:     make(map[string]string),
		version:  version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// Run serves on stdio until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      boolPtr(true),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.store(uri, params.TextDocument.Text)
	s.publish(ctx, uri, params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Full sync: the last event holds the whole text.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	uri := params.TextDocument.URI
	s.store(uri, whole.Text)
	s.publish(ctx, uri, whole.Text)
	return nil
}

func (s *LspServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, ok := s.lookup(uri)
	if params.Text != nil {
		text, ok = *params.Text, true
		s.store(uri, text)
	}
	if ok {
		s.publish(ctx, uri, text)
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) store(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) lookup(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

func (s *LspServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := s.diagnose(uri, text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose compiles text and converts every diagnostic located in the
// document. Pipeline failures are reported on the first line.
func (s *LspServer) diagnose(uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	path := uriPath(uri)
	if !strings.HasSuffix(path, ".go") {
		return out
	}

	res, err := s.compiler.CompileSource(path, []byte(text))
	if err != nil {
		if !errors.Is(err, token.ErrDanglingSigil) {
			// Go syntax errors are gopls' business.
			log.Debugf("%s: %s", path, err)
			return out
		}
		return append(out, pipelineDiagnostic(err))
	}

	for _, d := range res.Diagnostics.All() {
		span := d.Span()
		if span.File != path || !span.IsValid() {
			continue
		}
		out = append(out, toProtocol(d))
	}
	log.Debugf("%s: %d diagnostic(s)", path, len(out))
	return out
}

func pipelineDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lspName
	return protocol.Diagnostic{
		Range:    protocol.Range{},
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}
}

func toProtocol(d diag.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	switch d.Level {
	case diag.Warning:
		severity = protocol.DiagnosticSeverityWarning
	case diag.Note:
		severity = protocol.DiagnosticSeverityInformation
	}
	source := lspName

	message := d.Message
	for _, n := range d.Notes {
		message += "\nnote: " + n
	}

	span := d.Span()
	end := span.End
	if !span.Start.Before(end) {
		end = token.Pos{Line: span.Start.Line, Column: span.Start.Column + 1}
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: position(span.Start),
			End:   position(end),
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// position converts a 1-based host position. Columns are byte offsets,
// which matches UTF-16 for ASCII lines only.
func position(p token.Pos) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(max(p.Column-1, 0)),
	}
}

func uriPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}
	return u.Path
}

func boolPtr(b bool) *bool { return &b }
