package compiler

// Go output AST types represent the structure of generated Go files.
// The chain generator builds a GoFile tree; the printer serializes it to Go
// source, which is then run through goimports.

// --- Interfaces ---

// GoDecl is a top-level declaration (type, function, const, var, raw code).
type GoDecl interface{ goDecl() }

// GoStmt is a statement inside a function body.
type GoStmt interface{ goStmt() }

// GoExpr is an expression.
type GoExpr interface{ goExpr() }

// --- File level ---

// GoFile represents a complete Go source file.
type GoFile struct {
	Header  []string // comment lines above the package clause, without "//"
	Package string
	Imports []GoImport
	Decls   []GoDecl
}

// GoImport represents a single import.
type GoImport struct {
	Path  string
	Alias string // empty for default alias
}

// --- Declaration level ---

// GoConstDecl represents: const name = value
type GoConstDecl struct {
	Doc   []string
	Name  string
	Value GoExpr
}

func (GoConstDecl) goDecl() {}

// GoVarDecl represents: var name type [= value]
type GoVarDecl struct {
	Doc   []string
	Name  string
	Type  string // empty to infer from Value
	Value GoExpr // nil for uninitialized
}

func (GoVarDecl) goDecl() {}

// GoTypeDecl represents: type name[typeParams] struct { fields }
type GoTypeDecl struct {
	Doc        []string
	Name       string
	TypeParams []GoParam
	Fields     []GoField
}

func (GoTypeDecl) goDecl() {}

// GoField is one struct field.
type GoField struct {
	Name string
	Type string
}

// GoFuncDecl represents: func [(recv)] name[typeParams](params) returnType { body }
type GoFuncDecl struct {
	Doc        []string
	Recv       *GoParam // nil for plain functions
	Name       string
	TypeParams []GoParam
	Params     []GoParam
	Return     string // empty for no return type
	Body       []GoStmt
}

func (GoFuncDecl) goDecl() {}

// GoParam represents a function parameter, receiver or type parameter.
type GoParam struct {
	Name string
	Type string
}

// GoRawDecl is an escape hatch for raw Go code at the declaration level.
type GoRawDecl struct {
	Code string
}

func (GoRawDecl) goDecl() {}

// --- Statement level ---

// GoExprStmt is an expression used as a statement.
type GoExprStmt struct {
	Expr GoExpr
}

func (GoExprStmt) goStmt() {}

// GoAssignStmt represents: target op value (e.g., x := expr, x = expr)
type GoAssignStmt struct {
	Target string
	Op     string // ":=" or "="
	Value  GoExpr
}

func (GoAssignStmt) goStmt() {}

// GoReturnStmt represents: return [expr]
type GoReturnStmt struct {
	Value GoExpr // nil for bare return
}

func (GoReturnStmt) goStmt() {}

// GoBlankLine emits a blank line in the output.
type GoBlankLine struct{}

func (GoBlankLine) goStmt() {}
func (GoBlankLine) goDecl() {}

// GoComment represents: // text
type GoComment struct {
	Text string
}

func (GoComment) goStmt() {}
func (GoComment) goDecl() {}

// GoRawStmt is an escape hatch for raw Go code at the statement level.
type GoRawStmt struct {
	Code string
}

func (GoRawStmt) goStmt() {}

// --- Expression level ---

// GoRawExpr wraps a raw Go expression string.
type GoRawExpr struct {
	Code string
}

func (GoRawExpr) goExpr() {}

// GoIdentExpr represents a Go identifier reference.
type GoIdentExpr struct {
	Name string
}

func (GoIdentExpr) goExpr() {}

// GoIntLit represents an integer literal.
type GoIntLit struct {
	Value string
}

func (GoIntLit) goExpr() {}

// GoStringLit represents a Go string literal (with quotes).
type GoStringLit struct {
	Value string // Go-escaped content WITHOUT quotes
}

func (GoStringLit) goExpr() {}

// GoCallExpr represents a function call: func(args...)
type GoCallExpr struct {
	Func string
	Args []GoExpr
}

func (GoCallExpr) goExpr() {}

// GoMethodCallExpr represents a method call: obj.Method(args...)
type GoMethodCallExpr struct {
	Object GoExpr
	Method string
	Args   []GoExpr
}

func (GoMethodCallExpr) goExpr() {}

// GoDotExpr represents field access: obj.Field
type GoDotExpr struct {
	Object GoExpr
	Field  string
}

func (GoDotExpr) goExpr() {}

// GoCompositeLit represents: Type{key: value, ...}
type GoCompositeLit struct {
	Type   string
	Fields []GoKeyValue
}

func (GoCompositeLit) goExpr() {}

// GoKeyValue is one keyed element of a composite literal.
type GoKeyValue struct {
	Key   string
	Value GoExpr
}
