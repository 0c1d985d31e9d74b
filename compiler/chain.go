package compiler

import (
	"fmt"
	gotoken "go/token"
	"maps"
	"slices"
	"strconv"

	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/script"
	"github.com/rubiojr/redislua/token"
)

// Method names taken by the builder protocol. Setters may not use them.
var reservedMethods = map[string]bool{
	"Take":        true,
	"Apply":       true,
	"Info":        true,
	"Invoke":      true,
	"InvokeAsync": true,
}

// chain holds the names derived for one script site.
type chain struct {
	site    Site
	s       *script.Script
	fields  []GoField
	setters []string // exported setter per Var, in stage order
	vars    []script.Arg
	caps    []script.Arg
}

func (c *chain) stage(i int) string { return fmt.Sprintf("%sChain%d", c.site.Name, i) }

func (c *chain) partial(i int) string { return fmt.Sprintf("%sPartial%d", c.site.Name, i) }

func (c *chain) info() string { return unexported(c.site.Name) + "Info" }

func (c *chain) constructor() string { return ConstructorName(c.site.Name) }

// ConstructorName returns the name of the function starting the builder of
// script name.
func ConstructorName(name string) string {
	if gotoken.IsExported(name) {
		return "New" + name
	}
	return "new" + exported(name)
}

// SetterName returns the builder method binding a Var placeholder.
func SetterName(placeholder string) string { return exported(placeholder) }

func (c *chain) then() string { return c.site.Name + "Then" }

func (c *chain) terminal() int { return len(c.vars) }

func field(a script.Arg) string { return fmt.Sprintf("a%d", a.Index) }

func (c *chain) typeOf(a script.Arg) string {
	if t, ok := c.site.Types[a.Name()]; ok {
		return t
	}
	return "any"
}

// newChain validates placeholder names against the generated API and
// reports every problem to sink. It returns false when generation must be
// skipped for the site.
func newChain(site Site, s *script.Script, sink *diag.Collector) (*chain, bool) {
	c := &chain{site: site, s: s, vars: s.Vars(), caps: s.Caps()}
	ok := true

	known := make(map[string]bool)
	for _, a := range s.Args() {
		known[a.Name()] = true
		c.fields = append(c.fields, GoField{Name: field(a), Type: c.typeOf(a)})
	}
	for _, name := range slices.Sorted(maps.Keys(site.Types)) {
		if !known[name] {
			sink.Emit(directiveError(site, "type annotation for unknown placeholder %s", name))
			ok = false
		}
	}

	seen := make(map[string]string)
	for _, v := range c.vars {
		if !isIdent(v.Name()) || gotoken.IsKeyword(v.Name()) {
			sink.Emit(diag.Diagnostic{
				Level:   diag.Error,
				Message: fmt.Sprintf("placeholder $%s cannot name a setter", v.Name()),
				Spans:   []token.Span{v.Host.Span()},
			})
			ok = false
			continue
		}
		name := SetterName(v.Name())
		if reservedMethods[name] {
			sink.Emit(diag.Diagnostic{
				Level:   diag.Error,
				Message: fmt.Sprintf("placeholder $%s collides with builder method %s", v.Name(), name),
				Spans:   []token.Span{v.Host.Span()},
			})
			ok = false
		} else if prev, dup := seen[name]; dup {
			sink.Emit(diag.Diagnostic{
				Level:   diag.Error,
				Message: fmt.Sprintf("placeholders $%s and $%s both generate setter %s", prev, v.Name(), name),
				Spans:   []token.Span{v.Host.Span()},
				Notes:   []string{"setter names are the exported form of the placeholder"},
			})
			ok = false
		}
		seen[name] = v.Name()
		c.setters = append(c.setters, name)
	}
	return c, ok
}

// decls returns the declarations of the builder API.
func (c *chain) decls() []GoDecl {
	var out []GoDecl
	out = append(out, c.infoVar(), c.newFunc())
	for i := 0; i <= c.terminal(); i++ {
		out = append(out, c.stageDecls(i)...)
	}
	if c.terminal() > 0 {
		out = append(out, c.thenFunc())
		for i := 0; i < c.terminal(); i++ {
			out = append(out, c.partialDecls(i)...)
		}
	}
	return out
}

func (c *chain) infoVar() GoDecl {
	q := strconv.Quote(c.s.Wrapped())
	return GoVarDecl{
		Name: c.info(),
		Value: GoCallExpr{Func: "dispatch.NewInfo", Args: []GoExpr{
			GoStringLit{Value: c.site.Name},
			GoStringLit{Value: q[1 : len(q)-1]},
			GoIntLit{Value: strconv.Itoa(len(c.s.Args()))},
		}},
	}
}

// capParams names the constructor parameters after the Cap placeholders,
// falling back to the field name when the placeholder is not usable.
func (c *chain) capParams() []GoParam {
	used := map[string]bool{"dispatch": true, "redis": true, "context": true}
	var params []GoParam
	for _, a := range c.caps {
		name := a.Name()
		if !isIdent(name) || gotoken.IsKeyword(name) || used[name] {
			name = field(a)
		}
		used[name] = true
		params = append(params, GoParam{Name: name, Type: c.typeOf(a)})
	}
	return params
}

func (c *chain) newFunc() GoDecl {
	params := c.capParams()
	fields := []GoKeyValue{{Key: "inner", Value: GoCallExpr{Func: "dispatch.Empty"}}}
	for i, a := range c.caps {
		fields = append(fields, GoKeyValue{Key: field(a), Value: GoIdentExpr{Name: params[i].Name}})
	}
	doc := []string{fmt.Sprintf("%s returns the first stage of the %s builder.", c.constructor(), c.site.Name)}
	if len(c.vars) > 0 {
		doc = append(doc, fmt.Sprintf("The remaining arguments are set with %s.", setterList(c.setters)))
	}
	return GoFuncDecl{
		Doc:    doc,
		Name:   c.constructor(),
		Params: params,
		Return: c.stage(0),
		Body:   []GoStmt{GoReturnStmt{Value: GoCompositeLit{Type: c.stage(0), Fields: fields}}},
	}
}

func setterList(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	out := ""
	for i, n := range names {
		switch {
		case i == len(names)-1:
			out += " and " + n
		case i > 0:
			out += ", " + n
		default:
			out += n
		}
	}
	return out
}

func (c *chain) stageDecls(i int) []GoDecl {
	name := c.stage(i)
	recv := &GoParam{Name: "c", Type: name}
	fields := append([]GoField{{Name: "inner", Type: "dispatch.Unit"}}, c.fields...)

	var doc []string
	if i == c.terminal() {
		doc = []string{fmt.Sprintf("%s is a fully bound %s script.", name, c.site.Name)}
	} else {
		doc = []string{fmt.Sprintf("%s is a %s builder waiting for %s.", name, c.site.Name, c.setters[i])}
	}
	out := []GoDecl{
		GoTypeDecl{Doc: doc, Name: name, Fields: fields},
		GoFuncDecl{
			Recv:   recv,
			Name:   "Take",
			Params: []GoParam{{Name: "first", Type: "dispatch.Unit"}},
			Return: name,
			Body: []GoStmt{
				GoAssignStmt{Target: "c.inner", Op: "=", Value: GoCallExpr{Func: "dispatch.Join", Args: []GoExpr{
					GoIdentExpr{Name: "first"}, GoIdentExpr{Name: "c.inner"},
				}}},
				GoReturnStmt{Value: GoIdentExpr{Name: "c"}},
			},
		},
	}

	if i < c.terminal() {
		v := c.vars[i]
		out = append(out, GoFuncDecl{
			Recv:   recv,
			Name:   c.setters[i],
			Params: []GoParam{{Name: "v", Type: c.typeOf(v)}},
			Return: c.stage(i + 1),
			Body: []GoStmt{
				GoAssignStmt{Target: "n", Op: ":=", Value: GoCallExpr{Func: c.stage(i + 1), Args: []GoExpr{GoIdentExpr{Name: "c"}}}},
				GoAssignStmt{Target: "n." + field(v), Op: "=", Value: GoIdentExpr{Name: "v"}},
				GoReturnStmt{Value: GoIdentExpr{Name: "n"}},
			},
		})
		return out
	}
	return append(out, c.terminalDecls(recv)...)
}

func (c *chain) terminalDecls(recv *GoParam) []GoDecl {
	apply := []GoStmt{GoExprStmt{Expr: GoMethodCallExpr{
		Object: GoIdentExpr{Name: "c.inner"}, Method: "Apply", Args: []GoExpr{GoIdentExpr{Name: "inv"}},
	}}}
	if len(c.fields) > 0 {
		var args GoExpr = GoIdentExpr{Name: "inv"}
		for _, f := range c.fields {
			args = GoMethodCallExpr{Object: args, Method: "Arg", Args: []GoExpr{GoIdentExpr{Name: "c." + f.Name}}}
		}
		apply = append(apply, GoExprStmt{Expr: args})
	}

	self := GoIdentExpr{Name: "c"}
	return []GoDecl{
		GoFuncDecl{
			Recv:   recv,
			Name:   "Apply",
			Params: []GoParam{{Name: "inv", Type: "*dispatch.Invocation"}},
			Body:   apply,
		},
		GoFuncDecl{
			Recv:   recv,
			Name:   "Info",
			Params: []GoParam{{Name: "infos", Type: "[]*dispatch.Info"}},
			Return: "[]*dispatch.Info",
			Body: []GoStmt{GoReturnStmt{Value: GoCallExpr{Func: "append", Args: []GoExpr{
				GoMethodCallExpr{Object: GoIdentExpr{Name: "c.inner"}, Method: "Info", Args: []GoExpr{GoIdentExpr{Name: "infos"}}},
				GoIdentExpr{Name: c.info()},
			}}}},
		},
		GoFuncDecl{
			Doc:    []string{"Invoke runs the script on rdb and waits for the reply."},
			Recv:   recv,
			Name:   "Invoke",
			Params: []GoParam{{Name: "ctx", Type: "context.Context"}, {Name: "rdb", Type: "redis.Scripter"}},
			Return: "*redis.Cmd",
			Body: []GoStmt{GoReturnStmt{Value: GoCallExpr{Func: "dispatch.Invoke", Args: []GoExpr{
				GoIdentExpr{Name: "ctx"}, GoIdentExpr{Name: "rdb"}, self,
			}}}},
		},
		GoFuncDecl{
			Doc:    []string{"InvokeAsync sends the script on rdb and delivers the reply on the returned channel."},
			Recv:   recv,
			Name:   "InvokeAsync",
			Params: []GoParam{{Name: "ctx", Type: "context.Context"}, {Name: "rdb", Type: "redis.Scripter"}},
			Return: "<-chan *redis.Cmd",
			Body: []GoStmt{GoReturnStmt{Value: GoCallExpr{Func: "dispatch.InvokeAsync", Args: []GoExpr{
				GoIdentExpr{Name: "ctx"}, GoIdentExpr{Name: "rdb"}, self,
			}}}},
		},
	}
}

func (c *chain) thenFunc() GoDecl {
	s := []GoParam{{Name: "S", Type: "dispatch.Taker[S]"}}
	return GoFuncDecl{
		Doc: []string{
			fmt.Sprintf("%s joins c in front of next. The result is set through %s's", c.then(), c.site.Name),
			"setters; the last one yields next with both scripts scheduled.",
		},
		Name:       c.then(),
		TypeParams: s,
		Params:     []GoParam{{Name: "c", Type: c.stage(0)}, {Name: "next", Type: "S"}},
		Return:     c.partial(0) + "[S]",
		Body: []GoStmt{GoReturnStmt{Value: GoCompositeLit{Type: c.partial(0) + "[S]", Fields: []GoKeyValue{
			{Key: "chain", Value: GoIdentExpr{Name: "c"}},
			{Key: "next", Value: GoIdentExpr{Name: "next"}},
		}}}},
	}
}

func (c *chain) partialDecls(i int) []GoDecl {
	name := c.partial(i)
	typ := name + "[S]"
	recv := &GoParam{Name: "p", Type: typ}
	v := c.vars[i]
	set := GoMethodCallExpr{Object: GoIdentExpr{Name: "p.chain"}, Method: c.setters[i], Args: []GoExpr{GoIdentExpr{Name: "v"}}}

	var setter GoFuncDecl
	if i == c.terminal()-1 {
		setter = GoFuncDecl{
			Recv:   recv,
			Name:   c.setters[i],
			Params: []GoParam{{Name: "v", Type: c.typeOf(v)}},
			Return: "S",
			Body: []GoStmt{GoReturnStmt{Value: GoMethodCallExpr{
				Object: GoIdentExpr{Name: "p.next"}, Method: "Take", Args: []GoExpr{set},
			}}},
		}
	} else {
		next := c.partial(i+1) + "[S]"
		setter = GoFuncDecl{
			Recv:   recv,
			Name:   c.setters[i],
			Params: []GoParam{{Name: "v", Type: c.typeOf(v)}},
			Return: next,
			Body: []GoStmt{GoReturnStmt{Value: GoCompositeLit{Type: next, Fields: []GoKeyValue{
				{Key: "chain", Value: set},
				{Key: "next", Value: GoIdentExpr{Name: "p.next"}},
			}}}},
		}
	}

	return []GoDecl{
		GoTypeDecl{
			Name:       name,
			TypeParams: []GoParam{{Name: "S", Type: "dispatch.Taker[S]"}},
			Fields: []GoField{
				{Name: "chain", Type: c.stage(i)},
				{Name: "next", Type: "S"},
			},
		},
		GoFuncDecl{
			Recv:   recv,
			Name:   "Take",
			Params: []GoParam{{Name: "first", Type: "dispatch.Unit"}},
			Return: typ,
			Body: []GoStmt{
				GoAssignStmt{Target: "p.chain", Op: "=", Value: GoMethodCallExpr{
					Object: GoIdentExpr{Name: "p.chain"}, Method: "Take", Args: []GoExpr{GoIdentExpr{Name: "first"}},
				}},
				GoReturnStmt{Value: GoIdentExpr{Name: "p"}},
			},
		},
		setter,
	}
}
