// Package lint is a rule based linter for Lua 5.1 scripts run by Redis.
//
// Rules work on the gopher-lua AST and report byte ranges into the checked
// source. Each rule has a stable code and a configurable level (allow, warn
// or deny); the set of known globals comes from a TOML standard library
// description.
package lint

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/yuin/gopher-lua/ast"
)

// Severity of a reported diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one lint finding.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Notes    []string
	Primary  Range
}

// Context is what a rule sees of the checked chunk.
type Context struct {
	Chunk []ast.Stmt
	Src   string
	Std   *StandardLibrary

	loc      *locator
	analysis *analysis
}

// Rule inspects a chunk and reports findings. The severity of returned
// diagnostics is set by the checker from the configured level.
type Rule interface {
	Code() string
	DefaultLevel() Level
	Check(ctx *Context) []Diagnostic
}

// Rules returns every built-in rule.
func Rules() []Rule {
	return []Rule{
		undefinedVariable{},
		globalAssignment{},
		incorrectStdUse{},
		unusedVariable{},
		shadowing{},
		unbalancedAssignments{},
		divideByZero{},
		emptyIf{},
	}
}

// Checker runs the enabled rules with their configured levels.
type Checker struct {
	std   *StandardLibrary
	rules []Rule
	level map[string]Level
}

// NewChecker validates cfg against the known rules. Unknown rule codes and
// levels are setup errors.
func NewChecker(cfg Config, std *StandardLibrary) (*Checker, error) {
	known := make(map[string]Rule)
	for _, r := range Rules() {
		known[r.Code()] = r
	}

	c := &Checker{std: std, level: make(map[string]Level)}
	for code, lvl := range cfg.Rules {
		if _, ok := known[code]; !ok {
			return nil, fmt.Errorf("unknown lint rule %q", code)
		}
		switch lvl {
		case Allow, Warn, Deny:
		default:
			return nil, fmt.Errorf("invalid level %q for lint rule %q", lvl, code)
		}
		c.level[code] = lvl
	}
	for _, r := range Rules() {
		lvl, ok := c.level[r.Code()]
		if !ok {
			lvl = r.DefaultLevel()
			c.level[r.Code()] = lvl
		}
		if lvl != Allow {
			c.rules = append(c.rules, r)
		}
	}
	return c, nil
}

// Level returns the effective level of a rule.
func (c *Checker) Level(code string) Level { return c.level[code] }

// Check runs every enabled rule over chunk, the parsed form of src. The
// result is ordered by start offset.
func (c *Checker) Check(chunk []ast.Stmt, src string) []Diagnostic {
	ctx := &Context{
		Chunk:    chunk,
		Src:      src,
		Std:      c.std,
		loc:      newLocator(src),
		analysis: analyze(chunk, c.std),
	}

	var out []Diagnostic
	for _, r := range c.rules {
		sev := Warning
		if c.level[r.Code()] == Deny {
			sev = Error
		}
		for _, d := range r.Check(ctx) {
			d.Code = r.Code()
			d.Severity = sev
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return cmp.Compare(a.Primary.Start, b.Primary.Start)
	})
	return out
}
