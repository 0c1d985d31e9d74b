// Package compiler finds Redis Lua scripts embedded in Go files, checks them
// and generates typed builders for them.
package compiler

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	gotoken "go/token"
	"os"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"

	"github.com/rubiojr/redislua/check"
	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/scanner"
	"github.com/rubiojr/redislua/script"
	"github.com/rubiojr/redislua/token"
)

var log = commonlog.GetLogger("redislua.compiler")

// ErrDiagnostics is returned by Generate when any error diagnostic was
// reported.
var ErrDiagnostics = errors.New("scripts have errors")

// Compiler runs the embed, check and generate pipeline.
type Compiler struct {
	Check check.Options
	// FuseCompound joins `..`, `==` and `~=` back together when the host
	// tokenizer split them.
	FuseCompound bool
}

// Result is the outcome of compiling one Go file.
type Result struct {
	File        string
	Output      string // path of the generated file
	Sites       []Site
	Generated   []byte // nil when the file embeds no script
	Diagnostics *diag.Collector
	Skipped     bool // file is itself generated
}

// CompileFile reads and compiles one Go file.
func (c *Compiler) CompileFile(file string) (*Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return c.CompileSource(file, src)
}

// CompileSource compiles src as the content of file. Script problems are
// reported as diagnostics on the result; the error is reserved for Go
// syntax errors, dangling placeholder sigils and formatting failures.
func (c *Compiler) CompileSource(file string, src []byte) (*Result, error) {
	res := &Result{File: file, Output: OutputPath(file), Diagnostics: &diag.Collector{}}

	fset := gotoken.NewFileSet()
	f, err := parser.ParseFile(fset, file, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	if ast.IsGenerated(f) {
		log.Debugf("skipping generated file %s", file)
		res.Skipped = true
		return res, nil
	}

	res.Sites = findSites(fset, file, f, res.Diagnostics)
	var units []unit
	for i := range res.Sites {
		u, ok, err := c.compileSite(&res.Sites[i], res.Diagnostics)
		if err != nil {
			return nil, err
		}
		if ok {
			units = append(units, u)
		}
	}
	log.Debugf("%s: %d site(s), %d diagnostic(s)", file, len(res.Sites), res.Diagnostics.Len())

	if len(units) == 0 {
		return res, nil
	}
	res.Generated, err = generate(file, f.Name.Name, units)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// compileSite lexes, assembles and checks one site. ok is false when the
// site cannot produce code.
func (c *Compiler) compileSite(site *Site, sink *diag.Collector) (unit, bool, error) {
	content := scanner.StripComments(site.Lit)
	trees, err := token.Lex(site.File, content, site.Pos)
	if err != nil {
		var lexErr *token.LexError
		if errors.As(err, &lexErr) {
			sink.Errorf(lexErr.Span, "%s", lexErr.Msg)
			return unit{}, false, nil
		}
		return unit{}, false, err
	}

	tokens, err := token.Retokenize(trees, token.Options{FuseCompound: c.FuseCompound})
	if err != nil {
		return unit{}, false, fmt.Errorf("%s %s in %s: %w", site.Kind, site.Name, site.File, err)
	}

	s := script.New(tokens, site.Kind == ScriptSite)
	site.Args = s.Args()
	checker := check.New(c.Check).Defines(s.LuaNames())
	if site.Kind == StringSite {
		checker.Define("ARGV")
	}
	checker.Check(s, sink)

	if site.Kind == StringSite {
		return unit{site: *site, body: s.Body()}, true, nil
	}
	ch, ok := newChain(*site, s, sink)
	if !ok {
		return unit{}, false, nil
	}
	return unit{site: *site, chain: ch}, true, nil
}

// CompilePackage compiles every Go file of the packages matched by pattern.
func (c *Compiler) CompilePackage(pattern string) ([]*Result, error) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedFiles}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}

	var results []*Result
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			log.Warningf("%s: %s", pkg.PkgPath, e)
		}
		for _, file := range pkg.GoFiles {
			res, err := c.CompileFile(file)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// Generate writes the generated file of every result and removes generated
// files whose source no longer embeds a script. Files are written even when
// checks fail; ErrDiagnostics is returned in that case.
func Generate(results []*Result) error {
	failed := false
	for _, res := range results {
		if res.Diagnostics.HasErrors() {
			failed = true
		}
		if res.Generated == nil {
			if res.Skipped || len(res.Sites) > 0 {
				continue
			}
			if err := os.Remove(res.Output); err == nil {
				log.Infof("removed stale %s", res.Output)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing %s: %w", res.Output, err)
			}
			continue
		}
		if err := os.WriteFile(res.Output, res.Generated, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", res.Output, err)
		}
		log.Infof("wrote %s", res.Output)
	}
	if failed {
		return ErrDiagnostics
	}
	return nil
}
