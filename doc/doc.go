// Package doc describes the scripts embedded in Go files: their comment,
// placeholders and the generated API that runs them.
//
// Documentation is taken from the comment above the annotated declaration,
// without the directive lines.
package doc

import (
	"github.com/rubiojr/redislua/compiler"
	"github.com/rubiojr/redislua/script"
)

// FileDoc holds the documentation of every script embedded in a file.
type FileDoc struct {
	Path    string
	Scripts []ScriptDoc
}

// ScriptDoc describes one embedded script.
type ScriptDoc struct {
	Name         string // generated identifier
	Kind         compiler.SiteKind
	Decl         string // declaration holding the literal
	Doc          string
	Placeholders []Placeholder
	Line         int // 1-based line of the literal
}

// Placeholder is one late or captured argument of a script.
type Placeholder struct {
	Name string
	Kind script.Kind
	Type string // Go type of the setter or constructor parameter
	ARGV string
}

// ExtractFile compiles path with c and documents its scripts.
func ExtractFile(c *compiler.Compiler, path string) (*FileDoc, error) {
	res, err := c.CompileFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(res), nil
}

// Extract documents the sites of a compilation result.
func Extract(res *compiler.Result) *FileDoc {
	fd := &FileDoc{Path: res.File}
	for _, site := range res.Sites {
		sd := ScriptDoc{
			Name: site.Name,
			Kind: site.Kind,
			Decl: site.Decl,
			Doc:  site.Doc,
			Line: site.Pos.Line,
		}
		if site.Kind == compiler.ScriptSite {
			for _, a := range site.Args {
				typ, ok := site.Types[a.Name()]
				if !ok {
					typ = "any"
				}
				sd.Placeholders = append(sd.Placeholders, Placeholder{
					Name: a.Name(),
					Kind: a.Kind,
					Type: typ,
					ARGV: a.ARGV,
				})
			}
		}
		fd.Scripts = append(fd.Scripts, sd)
	}
	return fd
}

// Caps returns the placeholders bound by the constructor.
func (s ScriptDoc) Caps() []Placeholder { return s.filter(script.Cap) }

// Vars returns the placeholders bound by setters, in setter order.
func (s ScriptDoc) Vars() []Placeholder { return s.filter(script.Var) }

func (s ScriptDoc) filter(k script.Kind) []Placeholder {
	var out []Placeholder
	for _, p := range s.Placeholders {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// LookupSymbol finds a script by generated name or by the name of its
// declaration.
func LookupSymbol(fd *FileDoc, name string) (doc string, signature string, found bool) {
	for _, s := range fd.Scripts {
		if s.Name == name || s.Decl == name {
			return s.Doc, Signature(s), true
		}
	}
	return "", "", false
}
