package lint

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/yuin/gopher-lua/ast"
)

type variable struct {
	name   string
	decl   site
	reads  int
	writes int
	param  bool
}

type scope struct {
	parent *scope
	vars   map[string]*variable
	// fn marks the outermost scope of a function body.
	fn bool
}

func childScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*variable)}
}

func (s *scope) lookup(name string) *variable {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v
		}
	}
	return nil
}

type shadow struct {
	name     string
	at       site
	previous site
}

type stdMisuse struct {
	at      site
	message string
}

// analysis is the result of resolving every identifier of a chunk against
// lexical scopes and the standard library.
type analysis struct {
	undefined    []site
	globalWrites []site
	unused       []*variable
	shadows      []shadow
	stdMisuses   []stdMisuse
}

// resolver walks statements in source order. Every identifier it counts is
// numbered per (line, name) so the locator can find its byte range.
type resolver struct {
	std    *StandardLibrary
	counts map[site]int
	out    analysis
}

func analyze(chunk []ast.Stmt, std *StandardLibrary) *analysis {
	r := &resolver{std: std, counts: make(map[site]int)}
	root := childScope(nil)
	root.fn = true
	r.block(chunk, root)
	r.close(root)
	return &r.out
}

// occurrence numbers the next appearance of name on line.
func (r *resolver) occurrence(line int, name string) site {
	key := site{Line: line, Name: name}
	k := r.counts[key]
	r.counts[key] = k + 1
	return site{Line: line, Name: name, K: k}
}

func (r *resolver) declare(sc *scope, at site, param bool) {
	if !strings.HasPrefix(at.Name, "_") {
		if prev := sc.lookup(at.Name); prev != nil {
			r.out.shadows = append(r.out.shadows, shadow{name: at.Name, at: at, previous: prev.decl})
		}
	}
	if old, ok := sc.vars[at.Name]; ok {
		r.report(old)
	}
	sc.vars[at.Name] = &variable{name: at.Name, decl: at, param: param}
}

func (r *resolver) report(v *variable) {
	if v.reads == 0 && !strings.HasPrefix(v.name, "_") && v.name != "self" {
		r.out.unused = append(r.out.unused, v)
	}
}

func (r *resolver) close(sc *scope) {
	for _, v := range sortedVars(sc) {
		r.report(v)
	}
}

func sortedVars(sc *scope) []*variable {
	out := slices.Collect(maps.Values(sc.vars))
	slices.SortFunc(out, func(a, b *variable) int {
		return cmp.Or(
			cmp.Compare(a.decl.Line, b.decl.Line),
			strings.Compare(a.decl.Name, b.decl.Name),
			cmp.Compare(a.decl.K, b.decl.K),
		)
	})
	return out
}

func (r *resolver) block(stmts []ast.Stmt, sc *scope) {
	for _, s := range stmts {
		r.stmt(s, sc)
	}
}

func (r *resolver) stmt(s ast.Stmt, sc *scope) {
	switch st := s.(type) {
	case *ast.LocalAssignStmt:
		sites := make([]site, len(st.Names))
		for i, name := range st.Names {
			sites[i] = r.occurrence(st.Line(), name)
		}
		// `local function f` sees itself; other initialisers do not.
		recursive := len(st.Names) == 1 && len(st.Exprs) == 1 && isFunction(st.Exprs[0])
		if recursive {
			r.declare(sc, sites[0], false)
		}
		r.exprs(st.Exprs, sc)
		if !recursive {
			for _, at := range sites {
				r.declare(sc, at, false)
			}
		}
	case *ast.AssignStmt:
		for _, lhs := range st.Lhs {
			r.target(lhs, sc)
		}
		r.exprs(st.Rhs, sc)
	case *ast.FuncCallStmt:
		r.expr(st.Expr, sc)
	case *ast.DoBlockStmt:
		inner := childScope(sc)
		r.block(st.Stmts, inner)
		r.close(inner)
	case *ast.WhileStmt:
		r.expr(st.Condition, sc)
		inner := childScope(sc)
		r.block(st.Stmts, inner)
		r.close(inner)
	case *ast.RepeatStmt:
		inner := childScope(sc)
		r.block(st.Stmts, inner)
		r.expr(st.Condition, inner)
		r.close(inner)
	case *ast.IfStmt:
		r.expr(st.Condition, sc)
		then := childScope(sc)
		r.block(st.Then, then)
		r.close(then)
		els := childScope(sc)
		r.block(st.Else, els)
		r.close(els)
	case *ast.NumberForStmt:
		at := r.occurrence(st.Line(), st.Name)
		r.expr(st.Init, sc)
		r.expr(st.Limit, sc)
		if st.Step != nil {
			r.expr(st.Step, sc)
		}
		inner := childScope(sc)
		r.declare(inner, at, false)
		r.block(st.Stmts, inner)
		r.close(inner)
	case *ast.GenericForStmt:
		sites := make([]site, len(st.Names))
		for i, name := range st.Names {
			sites[i] = r.occurrence(st.Line(), name)
		}
		r.exprs(st.Exprs, sc)
		inner := childScope(sc)
		for _, at := range sites {
			r.declare(inner, at, false)
		}
		r.block(st.Stmts, inner)
		r.close(inner)
	case *ast.FuncDefStmt:
		method := false
		if st.Name != nil {
			if st.Name.Func != nil {
				r.target(st.Name.Func, sc)
			}
			if st.Name.Receiver != nil {
				r.expr(st.Name.Receiver, sc)
				method = true
			}
		}
		r.function(st.Func, sc, method)
	case *ast.ReturnStmt:
		r.exprs(st.Exprs, sc)
	}
}

func isFunction(e ast.Expr) bool {
	_, ok := e.(*ast.FunctionExpr)
	return ok
}

// target resolves the left side of an assignment.
func (r *resolver) target(e ast.Expr, sc *scope) {
	ident, ok := e.(*ast.IdentExpr)
	if !ok {
		r.expr(e, sc)
		return
	}
	at := r.occurrence(ident.Line(), ident.Value)
	if v := sc.lookup(ident.Value); v != nil {
		v.writes++
		return
	}
	r.out.globalWrites = append(r.out.globalWrites, at)
}

func (r *resolver) function(fn *ast.FunctionExpr, sc *scope, method bool) {
	if fn == nil {
		return
	}
	body := childScope(sc)
	body.fn = true
	if method {
		body.vars["self"] = &variable{name: "self", param: true}
	}
	if fn.ParList != nil {
		for _, name := range fn.ParList.Names {
			if method && name == "self" {
				continue
			}
			r.declare(body, r.occurrence(fn.Line(), name), true)
		}
	}
	r.block(fn.Stmts, body)
	r.close(body)
}

func (r *resolver) exprs(es []ast.Expr, sc *scope) {
	for _, e := range es {
		r.expr(e, sc)
	}
}

func (r *resolver) expr(e ast.Expr, sc *scope) {
	switch ex := e.(type) {
	case *ast.IdentExpr:
		r.read(ex, sc)
	case *ast.AttrGetExpr:
		r.expr(ex.Object, sc)
		if key, ok := ex.Key.(*ast.StringExpr); ok {
			r.checkField(ex.Object, key.Value, sc)
		}
		r.expr(ex.Key, sc)
	case *ast.FuncCallExpr:
		if ex.Func != nil {
			r.expr(ex.Func, sc)
			r.checkCall(ex.Func, sc)
		}
		if ex.Receiver != nil {
			r.expr(ex.Receiver, sc)
		}
		r.exprs(ex.Args, sc)
	case *ast.TableExpr:
		for _, f := range ex.Fields {
			if f.Key != nil {
				r.expr(f.Key, sc)
			}
			r.expr(f.Value, sc)
		}
	case *ast.LogicalOpExpr:
		r.expr(ex.Lhs, sc)
		r.expr(ex.Rhs, sc)
	case *ast.RelationalOpExpr:
		r.expr(ex.Lhs, sc)
		r.expr(ex.Rhs, sc)
	case *ast.ArithmeticOpExpr:
		r.expr(ex.Lhs, sc)
		r.expr(ex.Rhs, sc)
	case *ast.StringConcatOpExpr:
		r.expr(ex.Lhs, sc)
		r.expr(ex.Rhs, sc)
	case *ast.UnaryMinusOpExpr:
		r.expr(ex.Expr, sc)
	case *ast.UnaryNotOpExpr:
		r.expr(ex.Expr, sc)
	case *ast.UnaryLenOpExpr:
		r.expr(ex.Expr, sc)
	case *ast.FunctionExpr:
		r.function(ex, sc, false)
	}
}

func (r *resolver) read(ident *ast.IdentExpr, sc *scope) {
	at := r.occurrence(ident.Line(), ident.Value)
	if v := sc.lookup(ident.Value); v != nil {
		v.reads++
		return
	}
	if _, ok := r.std.Lookup(ident.Value); ok {
		return
	}
	r.out.undefined = append(r.out.undefined, at)
}

// stdGlobal returns the standard library global e refers to, if e is a
// global identifier not shadowed by a local.
func (r *resolver) stdGlobal(e ast.Expr, sc *scope) (*ast.IdentExpr, Global, bool) {
	ident, ok := e.(*ast.IdentExpr)
	if !ok || sc.lookup(ident.Value) != nil {
		return nil, Global{}, false
	}
	g, ok := r.std.Lookup(ident.Value)
	return ident, g, ok
}

// lastSite is the most recently numbered occurrence of ident.
func (r *resolver) lastSite(ident *ast.IdentExpr) site {
	k := r.counts[site{Line: ident.Line(), Name: ident.Value}] - 1
	return site{Line: ident.Line(), Name: ident.Value, K: max(k, 0)}
}

func (r *resolver) checkField(obj ast.Expr, field string, sc *scope) {
	ident, g, ok := r.stdGlobal(obj, sc)
	if !ok || g.Property {
		return
	}
	switch {
	case g.Function:
		r.out.stdMisuses = append(r.out.stdMisuses, stdMisuse{
			at:      r.lastSite(ident),
			message: "standard library function `" + ident.Value + "` has no field `" + field + "`",
		})
	case !g.HasField(field):
		r.out.stdMisuses = append(r.out.stdMisuses, stdMisuse{
			at:      r.lastSite(ident),
			message: "standard library global `" + ident.Value + "` has no field `" + field + "`",
		})
	}
}

func (r *resolver) checkCall(fn ast.Expr, sc *scope) {
	ident, g, ok := r.stdGlobal(fn, sc)
	if !ok || !g.IsTable() {
		return
	}
	r.out.stdMisuses = append(r.out.stdMisuses, stdMisuse{
		at:      r.lastSite(ident),
		message: "standard library global `" + ident.Value + "` is not a function",
	})
}
