package lint

import (
	"fmt"
	"strconv"

	"github.com/yuin/gopher-lua/ast"
)

type undefinedVariable struct{}

func (undefinedVariable) Code() string        { return "undefined_variable" }
func (undefinedVariable) DefaultLevel() Level { return Deny }

func (undefinedVariable) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	for _, at := range ctx.analysis.undefined {
		out = append(out, Diagnostic{
			Message: fmt.Sprintf("`%s` is not defined", at.Name),
			Primary: ctx.loc.site(at),
		})
	}
	return out
}

type globalAssignment struct{}

func (globalAssignment) Code() string        { return "global_assignment" }
func (globalAssignment) DefaultLevel() Level { return Deny }

func (globalAssignment) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	for _, at := range ctx.analysis.globalWrites {
		d := Diagnostic{
			Message: fmt.Sprintf("global variable `%s` is assigned", at.Name),
			Notes:   []string{"declare it with `local` instead"},
			Primary: ctx.loc.site(at),
		}
		if _, ok := ctx.Std.Lookup(at.Name); ok {
			d.Message = fmt.Sprintf("standard library global `%s` is overwritten", at.Name)
		}
		out = append(out, d)
	}
	return out
}

type incorrectStdUse struct{}

func (incorrectStdUse) Code() string        { return "incorrect_standard_library_use" }
func (incorrectStdUse) DefaultLevel() Level { return Deny }

func (incorrectStdUse) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	for _, m := range ctx.analysis.stdMisuses {
		out = append(out, Diagnostic{Message: m.message, Primary: ctx.loc.site(m.at)})
	}
	return out
}

type unusedVariable struct{}

func (unusedVariable) Code() string        { return "unused_variable" }
func (unusedVariable) DefaultLevel() Level { return Warn }

func (unusedVariable) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	for _, v := range ctx.analysis.unused {
		msg := fmt.Sprintf("`%s` is defined, but never used", v.name)
		if v.writes > 0 {
			msg = fmt.Sprintf("`%s` is assigned a value, but never used", v.name)
		}
		out = append(out, Diagnostic{
			Message: msg,
			Notes:   []string{"prefix the name with `_` if this is intended"},
			Primary: ctx.loc.site(v.decl),
		})
	}
	return out
}

type shadowing struct{}

func (shadowing) Code() string        { return "shadowing" }
func (shadowing) DefaultLevel() Level { return Warn }

func (shadowing) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	for _, s := range ctx.analysis.shadows {
		out = append(out, Diagnostic{
			Message: fmt.Sprintf("shadowing variable `%s`", s.name),
			Notes:   []string{fmt.Sprintf("`%s` was first defined on line %d of the script", s.name, s.previous.Line)},
			Primary: ctx.loc.site(s.at),
		})
	}
	return out
}

type unbalancedAssignments struct{}

func (unbalancedAssignments) Code() string        { return "unbalanced_assignments" }
func (unbalancedAssignments) DefaultLevel() Level { return Warn }

func (unbalancedAssignments) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	check := func(line, lastLine, names int, exprs []ast.Expr) {
		if len(exprs) == 0 {
			return
		}
		switch {
		case len(exprs) > names:
			out = append(out, Diagnostic{
				Message: "too many values on the right side of the assignment",
				Primary: ctx.loc.lines(line, lastLine),
			})
		case len(exprs) < names && !multiValue(exprs[len(exprs)-1]):
			out = append(out, Diagnostic{
				Message: "values on the right side don't match up to the left side of the assignment",
				Notes:   []string{"the remaining names are assigned nil"},
				Primary: ctx.loc.lines(line, lastLine),
			})
		}
	}
	inspect(ctx.Chunk, func(node any) {
		switch st := node.(type) {
		case *ast.LocalAssignStmt:
			check(st.Line(), st.LastLine(), len(st.Names), st.Exprs)
		case *ast.AssignStmt:
			check(st.Line(), st.LastLine(), len(st.Lhs), st.Rhs)
		}
	})
	return out
}

func multiValue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.FuncCallExpr, *ast.Comma3Expr:
		return true
	}
	return false
}

type divideByZero struct{}

func (divideByZero) Code() string        { return "divide_by_zero" }
func (divideByZero) DefaultLevel() Level { return Warn }

func (divideByZero) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	inspect(ctx.Chunk, func(node any) {
		ex, ok := node.(*ast.ArithmeticOpExpr)
		if !ok || (ex.Operator != "/" && ex.Operator != "%") {
			return
		}
		num, ok := ex.Rhs.(*ast.NumberExpr)
		if !ok {
			return
		}
		if v, err := strconv.ParseFloat(num.Value, 64); err != nil || v != 0 {
			return
		}
		out = append(out, Diagnostic{
			Message: "dividing by zero is not allowed",
			Notes:   []string{"use math.huge instead"},
			Primary: ctx.loc.line(ex.Line()),
		})
	})
	return out
}

type emptyIf struct{}

func (emptyIf) Code() string        { return "empty_if" }
func (emptyIf) DefaultLevel() Level { return Warn }

func (emptyIf) Check(ctx *Context) []Diagnostic {
	var out []Diagnostic
	inspect(ctx.Chunk, func(node any) {
		st, ok := node.(*ast.IfStmt)
		if !ok || len(st.Then) > 0 {
			return
		}
		out = append(out, Diagnostic{
			Message: "empty if block",
			Primary: ctx.loc.line(st.Line()),
		})
	})
	return out
}
