package compiler

import (
	"fmt"
	"strings"
)

// PrintGoFile serializes a GoFile tree to Go source code. The output is
// syntactically valid but not gofmt'ed; run it through formatSource.
func PrintGoFile(f *GoFile) string {
	p := &goPrinter{}
	p.printFile(f)
	return p.sb.String()
}

type goPrinter struct {
	sb     strings.Builder
	indent int
}

func (p *goPrinter) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *goPrinter) raw(s string) {
	p.sb.WriteString(s)
}

func (p *goPrinter) blank() {
	p.sb.WriteByte('\n')
}

func (p *goPrinter) writeIndent() {
	for range p.indent {
		p.sb.WriteByte('\t')
	}
}

func (p *goPrinter) doc(lines []string) {
	for _, l := range lines {
		if l == "" {
			p.line("//")
		} else {
			p.line("// %s", l)
		}
	}
}

func (p *goPrinter) printFile(f *GoFile) {
	if len(f.Header) > 0 {
		p.doc(f.Header)
		p.blank()
	}
	p.line("package %s", f.Package)
	p.blank()

	if len(f.Imports) > 0 {
		p.line("import (")
		p.indent++
		for _, imp := range f.Imports {
			if imp.Alias != "" {
				p.line("%s %q", imp.Alias, imp.Path)
			} else {
				p.line("%q", imp.Path)
			}
		}
		p.indent--
		p.line(")")
		p.blank()
	}

	for _, d := range f.Decls {
		p.printDecl(d)
	}
}

func (p *goPrinter) printDecl(d GoDecl) {
	switch dt := d.(type) {
	case GoConstDecl:
		p.doc(dt.Doc)
		p.line("const %s = %s", dt.Name, p.exprStr(dt.Value))
		p.blank()
	case GoVarDecl:
		p.doc(dt.Doc)
		switch {
		case dt.Value == nil:
			p.line("var %s %s", dt.Name, dt.Type)
		case dt.Type == "":
			p.line("var %s = %s", dt.Name, p.exprStr(dt.Value))
		default:
			p.line("var %s %s = %s", dt.Name, dt.Type, p.exprStr(dt.Value))
		}
		p.blank()
	case GoTypeDecl:
		p.printTypeDecl(dt)
	case GoFuncDecl:
		p.printFuncDecl(dt)
	case GoRawDecl:
		p.raw(dt.Code)
	case GoBlankLine:
		p.blank()
	case GoComment:
		p.line("// %s", dt.Text)
	}
}

func typeParams(params []GoParam) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + paramList(params) + "]"
}

func paramList(params []GoParam) string {
	parts := make([]string, len(params))
	for i, param := range params {
		parts[i] = fmt.Sprintf("%s %s", param.Name, param.Type)
	}
	return strings.Join(parts, ", ")
}

func (p *goPrinter) printTypeDecl(t GoTypeDecl) {
	p.doc(t.Doc)
	p.line("type %s%s struct {", t.Name, typeParams(t.TypeParams))
	p.indent++
	for _, f := range t.Fields {
		p.line("%s %s", f.Name, f.Type)
	}
	p.indent--
	p.line("}")
	p.blank()
}

func (p *goPrinter) printFuncDecl(f GoFuncDecl) {
	p.doc(f.Doc)
	sig := "func "
	if f.Recv != nil {
		sig += fmt.Sprintf("(%s %s) ", f.Recv.Name, f.Recv.Type)
	}
	sig += fmt.Sprintf("%s%s(%s)", f.Name, typeParams(f.TypeParams), paramList(f.Params))
	if f.Return != "" {
		sig += " " + f.Return
	}
	p.line("%s {", sig)
	p.indent++
	for _, s := range f.Body {
		p.printStmt(s)
	}
	p.indent--
	p.line("}")
	p.blank()
}

func (p *goPrinter) printStmt(s GoStmt) {
	switch st := s.(type) {
	case GoExprStmt:
		p.line("%s", p.exprStr(st.Expr))
	case GoAssignStmt:
		p.line("%s %s %s", st.Target, st.Op, p.exprStr(st.Value))
	case GoReturnStmt:
		if st.Value != nil {
			p.line("return %s", p.exprStr(st.Value))
		} else {
			p.line("return")
		}
	case GoBlankLine:
		p.blank()
	case GoComment:
		p.line("// %s", st.Text)
	case GoRawStmt:
		// Raw code may contain multiple lines; re-indent each.
		for _, ln := range strings.Split(strings.TrimRight(st.Code, "\n"), "\n") {
			if ln == "" {
				p.blank()
			} else {
				p.writeIndent()
				p.sb.WriteString(strings.TrimLeft(ln, "\t"))
				p.sb.WriteByte('\n')
			}
		}
	}
}

func (p *goPrinter) exprList(es []GoExpr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = p.exprStr(e)
	}
	return strings.Join(parts, ", ")
}

func (p *goPrinter) exprStr(e GoExpr) string {
	switch ex := e.(type) {
	case GoRawExpr:
		return ex.Code
	case GoIdentExpr:
		return ex.Name
	case GoIntLit:
		return ex.Value
	case GoStringLit:
		return fmt.Sprintf(`"%s"`, ex.Value)
	case GoCallExpr:
		return fmt.Sprintf("%s(%s)", ex.Func, p.exprList(ex.Args))
	case GoMethodCallExpr:
		return fmt.Sprintf("%s.%s(%s)", p.exprStr(ex.Object), ex.Method, p.exprList(ex.Args))
	case GoDotExpr:
		return fmt.Sprintf("%s.%s", p.exprStr(ex.Object), ex.Field)
	case GoCompositeLit:
		pairs := make([]string, len(ex.Fields))
		for i, kv := range ex.Fields {
			pairs[i] = fmt.Sprintf("%s: %s", kv.Key, p.exprStr(kv.Value))
		}
		return fmt.Sprintf("%s{%s}", ex.Type, strings.Join(pairs, ", "))
	default:
		return "<unknown expr>"
	}
}
