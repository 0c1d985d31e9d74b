// Package diag collects diagnostics about embedded scripts and renders them
// the way Go tools do.
package diag

import (
	"fmt"
	"slices"

	"github.com/rubiojr/redislua/token"
)

// Level is the severity of a diagnostic.
type Level int

const (
	Error Level = iota
	Warning
	Note
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "error"
	}
}

// Diagnostic is a message anchored at one or more host spans.
type Diagnostic struct {
	Level   Level
	Message string
	Spans   []token.Span
	Notes   []string
}

// Span returns the primary span, the first one recorded.
func (d Diagnostic) Span() token.Span {
	if len(d.Spans) == 0 {
		return token.Span{}
	}
	return d.Spans[0]
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span(), d.Level, d.Message)
}

// Collector accumulates diagnostics in emission order. The zero value is
// ready to use.
type Collector struct {
	list []Diagnostic
}

// Emit records d.
func (c *Collector) Emit(d Diagnostic) {
	c.list = append(c.list, d)
}

// Errorf records an error at span.
func (c *Collector) Errorf(span token.Span, format string, args ...any) {
	c.Emit(Diagnostic{Level: Error, Message: fmt.Sprintf(format, args...), Spans: []token.Span{span}})
}

// All returns every recorded diagnostic.
func (c *Collector) All() []Diagnostic { return slices.Clone(c.list) }

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int { return len(c.list) }

// HasErrors reports whether an error level diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	return slices.ContainsFunc(c.list, func(d Diagnostic) bool { return d.Level == Error })
}

// Counts returns the number of errors and warnings.
func (c *Collector) Counts() (errors, warnings int) {
	for _, d := range c.list {
		switch d.Level {
		case Error:
			errors++
		case Warning:
			warnings++
		}
	}
	return errors, warnings
}

// Merge appends every diagnostic of other.
func (c *Collector) Merge(other *Collector) {
	c.list = append(c.list, other.list...)
}
