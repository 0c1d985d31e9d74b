package compiler

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"
)

const generatedHeader = "Code generated by redislua; DO NOT EDIT."

// unit is a checked site ready for generation.
type unit struct {
	site  Site
	chain *chain // nil for string sites
	body  string // string sites only
}

// OutputPath returns the generated file name for a Go source file.
func OutputPath(file string) string {
	dir, base := filepath.Split(file)
	return filepath.Join(dir, strings.TrimSuffix(base, ".go")+"_redislua.go")
}

// generate assembles and formats the generated file for one source file.
func generate(file, pkg string, units []unit) ([]byte, error) {
	f := &GoFile{
		Header:  []string{generatedHeader},
		Package: pkg,
	}
	hasScript := false
	for _, u := range units {
		if u.chain != nil {
			hasScript = true
			f.Decls = append(f.Decls, u.chain.decls()...)
			continue
		}
		q := strconv.Quote(u.body)
		f.Decls = append(f.Decls, GoConstDecl{
			Doc:   []string{fmt.Sprintf("%s is the checked body of %s.", u.site.Name, u.site.Decl)},
			Name:  u.site.Name,
			Value: GoStringLit{Value: q[1 : len(q)-1]},
		})
	}
	if hasScript {
		f.Imports = []GoImport{
			{Path: "context"},
			{Path: "github.com/redis/go-redis/v9"},
			{Path: "github.com/rubiojr/redislua/dispatch"},
		}
	}
	return formatSource(OutputPath(file), PrintGoFile(f))
}

func formatSource(filename, src string) ([]byte, error) {
	out, err := imports.Process(filename, []byte(src), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", filename, err)
	}
	return out, nil
}
