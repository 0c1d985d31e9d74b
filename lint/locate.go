package lint

import (
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"github.com/rubiojr/redislua/scanner"
)

// Range is a byte range into the checked source. End is exclusive.
type Range struct {
	Start int
	End   int
}

// site is one identifier occurrence as seen by the AST walker: the k-th
// counted occurrence of name on a 1-based line.
type site struct {
	Line int
	Name string
	K    int
}

type word struct {
	name  string
	start int
}

type identTok struct {
	name    string
	counted bool
}

// locator recovers byte ranges for AST positions. The gopher-lua AST only
// records lines, so identifiers are matched by their order of appearance on
// a line: the scanner token stream says which occurrences the walker counts
// (fields, method names, table keys and labels are not), and a string-aware
// word scan of the line gives their byte offsets.
type locator struct {
	src        string
	lineStarts []int
	idents     map[int][]identTok
	words      map[int][]word
}

func newLocator(src string) *locator {
	l := &locator{
		src:        src,
		lineStarts: []int{0},
		idents:     make(map[int][]identTok),
		words:      make(map[int][]word),
	}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}
	l.scanIdents()
	l.scanWords()
	return l
}

func (l *locator) scanIdents() {
	sc := parse.NewScanner(strings.NewReader(l.src), "<script>")
	lexer := &parse.Lexer{}

	type tok struct {
		typ  int
		str  string
		line int
	}
	var toks []tok
	for {
		t, err := sc.Scan(lexer)
		if err != nil || t.Type == parse.EOF {
			break
		}
		toks = append(toks, tok{typ: t.Type, str: t.Str, line: t.Pos.Line})
	}

	var brackets []int
	for i, t := range toks {
		switch t.typ {
		case '{', '(', '[':
			brackets = append(brackets, t.typ)
			continue
		case '}', ')', ']':
			if len(brackets) > 0 {
				brackets = brackets[:len(brackets)-1]
			}
			continue
		}
		if t.typ != parse.TIdent {
			continue
		}
		counted := true
		if i > 0 {
			prev := toks[i-1]
			if prev.typ == '.' || prev.typ == ':' || prev.str == "goto" || prev.str == "::" {
				counted = false
			}
		}
		if i+1 < len(toks) && toks[i+1].typ == '=' && len(brackets) > 0 && brackets[len(brackets)-1] == '{' {
			counted = false
		}
		l.idents[t.line] = append(l.idents[t.line], identTok{name: t.str, counted: counted})
	}
}

func (l *locator) scanWords() {
	sc := scanner.New(l.src)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() || !isWordStart(ch) {
			continue
		}
		start := sc.Pos()
		if start > 0 && isWordByte(l.src[start-1]) {
			continue
		}
		end := start + 1
		for end < len(l.src) && isWordByte(l.src[end]) {
			end++
		}
		line := sc.Line()
		l.words[line] = append(l.words[line], word{name: l.src[start:end], start: start})
	}
}

func isWordStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordByte(ch byte) bool {
	return isWordStart(ch) || (ch >= '0' && ch <= '9')
}

// site returns the byte range of an identifier occurrence. When the exact
// occurrence cannot be found it falls back to the first occurrence of the
// name on the line, then to the whole line.
func (l *locator) site(s site) Range {
	j, seen := -1, 0
	nth := 0
	for _, t := range l.idents[s.Line] {
		if t.name != s.Name {
			continue
		}
		if t.counted {
			if seen == s.K {
				j = nth
				break
			}
			seen++
		}
		nth++
	}

	var first *word
	idx := 0
	for i := range l.words[s.Line] {
		w := &l.words[s.Line][i]
		if w.name != s.Name {
			continue
		}
		if first == nil {
			first = w
		}
		if idx == j {
			return Range{Start: w.start, End: w.start + len(w.name)}
		}
		idx++
	}
	if first != nil {
		return Range{Start: first.start, End: first.start + len(first.name)}
	}
	return l.line(s.Line)
}

// line returns the byte range of a 1-based line without its surrounding
// whitespace.
func (l *locator) line(n int) Range {
	if n < 1 || n > len(l.lineStarts) {
		return Range{Start: 0, End: len(l.src)}
	}
	start := l.lineStarts[n-1]
	end := len(l.src)
	if n < len(l.lineStarts) {
		end = l.lineStarts[n] - 1
	}
	text := l.src[start:end]
	trimmed := strings.TrimLeft(text, " \t\r")
	start += len(text) - len(trimmed)
	end = start + len(strings.TrimRight(trimmed, " \t\r"))
	if end <= start {
		end = start + 1
	}
	return Range{Start: start, End: min(end, len(l.src))}
}

// lines returns the range spanning lines first through last.
func (l *locator) lines(first, last int) Range {
	r := l.line(first)
	if last > first {
		r.End = l.line(last).End
	}
	return r
}
