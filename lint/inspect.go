package lint

import "github.com/yuin/gopher-lua/ast"

// inspect calls fn for every statement and expression of stmts, parents
// before children.
func inspect(stmts []ast.Stmt, fn func(node any)) {
	for _, s := range stmts {
		inspectStmt(s, fn)
	}
}

func inspectStmt(s ast.Stmt, fn func(node any)) {
	if s == nil {
		return
	}
	fn(s)
	switch st := s.(type) {
	case *ast.LocalAssignStmt:
		inspectExprs(st.Exprs, fn)
	case *ast.AssignStmt:
		inspectExprs(st.Lhs, fn)
		inspectExprs(st.Rhs, fn)
	case *ast.FuncCallStmt:
		inspectExpr(st.Expr, fn)
	case *ast.DoBlockStmt:
		inspect(st.Stmts, fn)
	case *ast.WhileStmt:
		inspectExpr(st.Condition, fn)
		inspect(st.Stmts, fn)
	case *ast.RepeatStmt:
		inspect(st.Stmts, fn)
		inspectExpr(st.Condition, fn)
	case *ast.IfStmt:
		inspectExpr(st.Condition, fn)
		inspect(st.Then, fn)
		inspect(st.Else, fn)
	case *ast.NumberForStmt:
		inspectExpr(st.Init, fn)
		inspectExpr(st.Limit, fn)
		inspectExpr(st.Step, fn)
		inspect(st.Stmts, fn)
	case *ast.GenericForStmt:
		inspectExprs(st.Exprs, fn)
		inspect(st.Stmts, fn)
	case *ast.FuncDefStmt:
		if st.Func != nil {
			inspectExpr(st.Func, fn)
		}
	case *ast.ReturnStmt:
		inspectExprs(st.Exprs, fn)
	}
}

func inspectExprs(es []ast.Expr, fn func(node any)) {
	for _, e := range es {
		inspectExpr(e, fn)
	}
}

func inspectExpr(e ast.Expr, fn func(node any)) {
	if e == nil {
		return
	}
	fn(e)
	switch ex := e.(type) {
	case *ast.AttrGetExpr:
		inspectExpr(ex.Object, fn)
		inspectExpr(ex.Key, fn)
	case *ast.FuncCallExpr:
		inspectExpr(ex.Func, fn)
		inspectExpr(ex.Receiver, fn)
		inspectExprs(ex.Args, fn)
	case *ast.TableExpr:
		for _, f := range ex.Fields {
			inspectExpr(f.Key, fn)
			inspectExpr(f.Value, fn)
		}
	case *ast.LogicalOpExpr:
		inspectExpr(ex.Lhs, fn)
		inspectExpr(ex.Rhs, fn)
	case *ast.RelationalOpExpr:
		inspectExpr(ex.Lhs, fn)
		inspectExpr(ex.Rhs, fn)
	case *ast.ArithmeticOpExpr:
		inspectExpr(ex.Lhs, fn)
		inspectExpr(ex.Rhs, fn)
	case *ast.StringConcatOpExpr:
		inspectExpr(ex.Lhs, fn)
		inspectExpr(ex.Rhs, fn)
	case *ast.UnaryMinusOpExpr:
		inspectExpr(ex.Expr, fn)
	case *ast.UnaryNotOpExpr:
		inspectExpr(ex.Expr, fn)
	case *ast.UnaryLenOpExpr:
		inspectExpr(ex.Expr, fn)
	case *ast.FunctionExpr:
		inspect(ex.Stmts, fn)
	}
}
