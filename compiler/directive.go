package compiler

import (
	"fmt"
	"go/ast"
	"go/parser"
	gotoken "go/token"
	"strings"

	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/script"
	"github.com/rubiojr/redislua/token"
)

// SiteKind is the entry point a literal is embedded through.
type SiteKind int

const (
	// ScriptSite generates a typed builder; placeholders are converted.
	ScriptSite SiteKind = iota
	// StringSite generates a checked string constant.
	StringSite
)

const (
	scriptDirective = "//redislua:script"
	stringDirective = "//redislua:string"
)

func (k SiteKind) String() string {
	if k == StringSite {
		return "string"
	}
	return "script"
}

// Site is one embedded script found in a Go file.
type Site struct {
	Kind  SiteKind
	Name  string            // generated identifier
	Types map[string]string // placeholder name -> Go type
	Lit   string            // literal content without the backquotes
	Pos   token.Pos         // host position of the first content byte
	File  string
	Decl  string       // name of the const or var holding the literal
	Doc   string       // declaration comment without directives
	Args  []script.Arg // placeholders, known once the script is assembled
}

// Span returns the location of the literal.
func (s Site) Span() token.Span {
	return token.Span{File: s.File, Start: s.Pos, End: s.Pos}
}

// findSites returns every directive-annotated literal of f in source order.
// Malformed directives are reported to sink.
func findSites(fset *gotoken.FileSet, file string, f *ast.File, sink *diag.Collector) []Site {
	var sites []Site
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || (gd.Tok != gotoken.CONST && gd.Tok != gotoken.VAR) {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			doc := vs.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			line, at, ok := directive(doc)
			if !ok {
				continue
			}
			span := spanOf(fset, file, at)
			site, ok := parseDirective(line, span, sink)
			if !ok {
				continue
			}
			site.File = file
			site.Doc = docText(doc)

			if len(vs.Names) != 1 || len(vs.Values) != 1 {
				sink.Errorf(span, "redislua directive must annotate a single value")
				continue
			}
			site.Decl = vs.Names[0].Name
			lit, ok := vs.Values[0].(*ast.BasicLit)
			if !ok || lit.Kind != gotoken.STRING {
				sink.Errorf(spanOf(fset, file, vs.Values[0].Pos()), "redislua directive must annotate a string literal")
				continue
			}
			if !strings.HasPrefix(lit.Value, "`") {
				sink.Errorf(spanOf(fset, file, lit.Pos()), "script %s must be a raw string literal", site.Name)
				continue
			}
			site.Lit = lit.Value[1 : len(lit.Value)-1]
			p := fset.Position(lit.Pos())
			site.Pos = token.Pos{Line: p.Line, Column: p.Column + 1}
			sites = append(sites, site)
		}
	}
	return sites
}

// docText returns the comment text of doc with directive lines removed.
func docText(doc *ast.CommentGroup) string {
	var lines []string
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, "//redislua:") || strings.HasPrefix(c.Text, "//go:") {
			continue
		}
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(c.Text, "//")))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func spanOf(fset *gotoken.FileSet, file string, pos gotoken.Pos) token.Span {
	p := fset.Position(pos)
	at := token.Pos{Line: p.Line, Column: p.Column}
	return token.Span{File: file, Start: at, End: at}
}

func directive(doc *ast.CommentGroup) (string, gotoken.Pos, bool) {
	if doc == nil {
		return "", gotoken.NoPos, false
	}
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, scriptDirective) || strings.HasPrefix(c.Text, stringDirective) {
			return c.Text, c.Slash, true
		}
	}
	return "", gotoken.NoPos, false
}

// parseDirective reads "//redislua:script Name [ident:Type ...]".
func parseDirective(line string, span token.Span, sink *diag.Collector) (Site, bool) {
	fields := strings.Fields(line)
	site := Site{Kind: ScriptSite, Types: map[string]string{}}
	switch fields[0] {
	case scriptDirective:
	case stringDirective:
		site.Kind = StringSite
	default:
		sink.Errorf(span, "unknown directive %s", fields[0])
		return Site{}, false
	}

	if len(fields) < 2 {
		sink.Errorf(span, "%s needs a name", fields[0])
		return Site{}, false
	}
	site.Name = fields[1]
	if !isIdent(site.Name) {
		sink.Errorf(span, "%q is not a valid Go identifier", site.Name)
		return Site{}, false
	}

	ok := true
	for _, ann := range fields[2:] {
		if site.Kind == StringSite {
			sink.Errorf(span, "%s takes no type annotations", stringDirective)
			return Site{}, false
		}
		name, typ, found := strings.Cut(ann, ":")
		if !found || name == "" || typ == "" {
			sink.Errorf(span, "malformed type annotation %q, want ident:Type", ann)
			ok = false
			continue
		}
		if _, err := parser.ParseExpr(typ); err != nil {
			sink.Errorf(span, "invalid type %q for %s: %v", typ, name, err)
			ok = false
			continue
		}
		if _, dup := site.Types[name]; dup {
			sink.Errorf(span, "duplicate type annotation for %s", name)
			ok = false
			continue
		}
		site.Types[name] = typ
	}
	return site, ok
}

func isIdent(s string) bool {
	return gotoken.IsIdentifier(s)
}

func exported(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func unexported(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func directiveError(site Site, format string, args ...any) diag.Diagnostic {
	return diag.Diagnostic{
		Level:   diag.Error,
		Message: fmt.Sprintf("%s %s: ", site.Kind, site.Name) + fmt.Sprintf(format, args...),
		Spans:   []token.Span{site.Span()},
	}
}
