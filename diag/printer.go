package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	colorError   = "\033[1;31m"
	colorWarning = "\033[1;33m"
	colorNote    = "\033[1;36m"
	colorBold    = "\033[1m"
	colorReset   = "\033[0m"
)

// UseColor reports whether output to f should be coloured: f must be a
// terminal and NO_COLOR must be unset.
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Printer renders diagnostics with a source excerpt:
//
//	foo.go:12:9: error: in script: `x` is not defined (undefined_variable)
//	   |
//	12 |     return x + 1
//	   |            ^
//	   = note: ...
type Printer struct {
	w       io.Writer
	color   bool
	sources map[string][]string
}

// NewPrinter returns a printer writing to w.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color, sources: make(map[string][]string)}
}

// AddSource registers the content of file so it is not read from disk.
func (p *Printer) AddSource(file string, src []byte) {
	p.sources[file] = strings.Split(string(src), "\n")
}

func (p *Printer) lines(file string) []string {
	if l, ok := p.sources[file]; ok {
		return l
	}
	data, err := os.ReadFile(file)
	if err != nil {
		p.sources[file] = nil
		return nil
	}
	p.AddSource(file, data)
	return p.sources[file]
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + colorReset
}

// Print renders one diagnostic.
func (p *Printer) Print(d Diagnostic) {
	levelColor := colorError
	switch d.Level {
	case Warning:
		levelColor = colorWarning
	case Note:
		levelColor = colorNote
	}
	span := d.Span()
	fmt.Fprintf(p.w, "%s: %s %s\n",
		span, p.paint(levelColor, d.Level.String()+":"), p.paint(colorBold, d.Message))

	lines := p.lines(span.File)
	if span.IsValid() && span.Start.Line <= len(lines) {
		line := lines[span.Start.Line-1]
		num := fmt.Sprint(span.Start.Line)
		pad := strings.Repeat(" ", len(num))

		width := 1
		if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
			width = span.End.Column - span.Start.Column
		}
		col := max(span.Start.Column-1, 0)
		// Keep tabs so the caret lines up with the excerpt.
		var indent strings.Builder
		for i := 0; i < col && i < len(line); i++ {
			if line[i] == '\t' {
				indent.WriteByte('\t')
			} else {
				indent.WriteByte(' ')
			}
		}

		fmt.Fprintf(p.w, "%s |\n", pad)
		fmt.Fprintf(p.w, "%s | %s\n", num, line)
		fmt.Fprintf(p.w, "%s | %s%s\n", pad, indent.String(), p.paint(levelColor, strings.Repeat("^", width)))
		for _, n := range d.Notes {
			fmt.Fprintf(p.w, "%s = %s %s\n", pad, p.paint(colorNote, "note:"), n)
		}
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(p.w, "  = %s %s\n", p.paint(colorNote, "note:"), n)
	}
}

// PrintAll renders every diagnostic followed by a summary line when there
// is anything to report.
func (p *Printer) PrintAll(ds []Diagnostic) {
	errors, warnings := 0, 0
	for _, d := range ds {
		p.Print(d)
		switch d.Level {
		case Error:
			errors++
		case Warning:
			warnings++
		}
	}
	if errors+warnings > 0 {
		fmt.Fprintf(p.w, "%d error(s), %d warning(s)\n", errors, warnings)
	}
}
