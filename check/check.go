// Package check parses and lints assembled scripts and reports findings at
// their host locations.
package check

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"github.com/rubiojr/redislua/diag"
	"github.com/rubiojr/redislua/lint"
	"github.com/rubiojr/redislua/script"
	"github.com/rubiojr/redislua/token"
)

// Options configure a Checker.
type Options struct {
	// Config overlays the bundled lint configuration.
	Config lint.Config
	// WarningsAsErrors reports warning level findings as errors.
	WarningsAsErrors bool
}

// Validate reports an unknown rule or level in Config.
func (o Options) Validate() error {
	std, err := lint.ParseStandardLibrary(lint.RedisStd())
	if err != nil {
		return err
	}
	_, err = lint.NewChecker(lint.DefaultConfig().Merge(o.Config), std)
	return err
}

// Checker checks scripts against the Redis standard library plus a set of
// extra defined globals.
type Checker struct {
	opts    Options
	defined []string
}

// New returns a Checker with no extra globals.
func New(opts Options) *Checker {
	return &Checker{opts: opts}
}

// Define makes name a known global.
func (c *Checker) Define(name string) *Checker {
	c.defined = append(c.defined, name)
	return c
}

// Defines makes every name a known global.
func (c *Checker) Defines(names []string) *Checker {
	c.defined = append(c.defined, names...)
	return c
}

// StandardLibrary returns the bundled library with every defined name
// appended as an opaque property.
func (c *Checker) StandardLibrary() string {
	var b strings.Builder
	b.WriteString(lint.RedisStd())
	for _, name := range c.defined {
		fmt.Fprintf(&b, "\n[%s]\nproperty = true\n", name)
	}
	return b.String()
}

// Check parses and lints the body of s. Every finding is reported to sink;
// problems in the script never fail the call. A malformed bundled standard
// library or an invalid lint configuration is a setup error and panics;
// callers taking user configuration run Options.Validate first.
func (c *Checker) Check(s *script.Script, sink *diag.Collector) {
	body := s.Body()
	whole := s.RangeToSpans(0, len(body))

	chunk, err := parse.Parse(strings.NewReader(body), "<script>")
	if err != nil {
		c.parseError(s, body, err, whole, sink)
		return
	}

	std, err := lint.ParseStandardLibrary(c.StandardLibrary())
	if err != nil {
		panic(err)
	}
	checker, err := lint.NewChecker(lint.DefaultConfig().Merge(c.opts.Config), std)
	if err != nil {
		panic(err)
	}

	found := checker.Check(chunk, body)
	sort.SliceStable(found, func(i, j int) bool { return found[i].Primary.Start < found[j].Primary.Start })
	for _, d := range found {
		level := diag.Error
		if d.Severity == lint.Warning && !c.opts.WarningsAsErrors {
			level = diag.Warning
		}
		spans := s.RangeToSpans(d.Primary.Start, max(d.Primary.Start, d.Primary.End-1))
		if len(spans) == 0 {
			spans = whole
		}
		sink.Emit(diag.Diagnostic{
			Level:   level,
			Message: fmt.Sprintf("in script: %s (%s)", d.Message, d.Code),
			Spans:   spans,
			Notes:   d.Notes,
		})
	}
}

func (c *Checker) parseError(s *script.Script, body string, err error, whole []token.Span, sink *diag.Collector) {
	var perr *parse.Error
	if errors.As(err, &perr) && perr.Message == "syntax error" && perr.Token != "" {
		spans := tokenSpans(s, body, perr)
		if len(spans) == 0 {
			spans = whole
		}
		sink.Emit(diag.Diagnostic{
			Level:   diag.Error,
			Message: fmt.Sprintf("in script: unexpected token `%s` (parse_error)", perr.Token),
			Spans:   spans,
		})
		return
	}
	sink.Emit(diag.Diagnostic{
		Level:   diag.Error,
		Message: "in script: cannot tokenize lua script (parse_error)",
		Spans:   whole,
	})
}

// tokenSpans finds the offending token in body. The parser reports the
// scanner position after the token, so the token stream is replayed to find
// the token ending there.
func tokenSpans(s *script.Script, body string, perr *parse.Error) []token.Span {
	sc := parse.NewScanner(strings.NewReader(body), "<script>")
	lexer := &parse.Lexer{}
	for {
		tok, err := sc.Scan(lexer)
		if err != nil || tok.Type == parse.EOF {
			break
		}
		end := sc.Pos
		if end.Line != perr.Pos.Line || end.Column != perr.Pos.Column || tok.Str != perr.Token {
			continue
		}
		if tok.Pos.Line != end.Line {
			break
		}
		start, _ := lineBounds(body, end.Line)
		if start < 0 {
			break
		}
		return s.RangeToSpans(start+tok.Pos.Column-1, start+end.Column-1)
	}

	start, end := lineBounds(body, perr.Pos.Line)
	if start < 0 {
		return nil
	}
	return s.RangeToSpans(start, end)
}

func lineBounds(body string, n int) (int, int) {
	if n < 1 {
		return -1, -1
	}
	start := 0
	for i := 1; i < n; i++ {
		j := strings.IndexByte(body[start:], '\n')
		if j < 0 {
			return -1, -1
		}
		start += j + 1
	}
	end := len(body)
	if j := strings.IndexByte(body[start:], '\n'); j >= 0 {
		end = start + j
	}
	return start, end
}
