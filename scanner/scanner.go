// Package scanner provides string-boundary-aware scanning of Lua source.
// It tracks double-quoted, single-quoted and long-bracket ([[...]], [==[...]==])
// string literals plus escape sequences so that callers can tell code bytes
// from string bytes without re-implementing the bookkeeping.
package scanner

import "strings"

// closingKind tracks which type of string delimiter was just closed.
type closingKind byte

const (
	noClosing     closingKind = iota
	closingDouble             // just closed a "..." string
	closingSingle             // just closed a '...' string
	closingLong               // just closed a [[...]] string
)

// CodeScanner iterates byte-by-byte over Lua source, tracking string
// literal boundaries and escape sequences.
//
// InString() returns true for the entire string span including both
// opening and closing delimiters.
type CodeScanner struct {
	src     string
	pos     int
	line    int
	inDbl   bool
	inSgl   bool
	longEnd string // closing bracket of the open long string, "" when none
	longTo  int    // offset of the last byte of a long string's closer
	escaped bool
	closing closingKind
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, line: 1, longTo: -1}
}

// Next advances to the next byte, updating string/escape state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.line++
	}

	if s.longEnd != "" {
		if s.pos == s.longTo {
			s.longEnd = ""
			s.longTo = -1
			s.closing = closingLong
		}
		return ch, true
	}
	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && (s.inDbl || s.inSgl) {
		s.escaped = true
		return ch, true
	}
	switch {
	case ch == '"' && !s.inSgl:
		if s.inDbl {
			s.closing = closingDouble
		}
		s.inDbl = !s.inDbl
	case ch == '\'' && !s.inDbl:
		if s.inSgl {
			s.closing = closingSingle
		}
		s.inSgl = !s.inSgl
	case ch == '[' && !s.inDbl && !s.inSgl:
		if level, ok := LongBracket(s.src[s.pos:]); ok {
			s.longEnd = "]" + strings.Repeat("=", level) + "]"
			s.openLong(level + 1)
		}
	}
	return ch, true
}

// openLong records where the long string opened at pos ends. n is the
// number of opener bytes after the first '['; the closer is searched after
// them so that "[[]" never closes itself.
func (s *CodeScanner) openLong(n int) {
	from := min(s.pos+1+n, len(s.src))
	if idx := strings.Index(s.src[from:], s.longEnd); idx >= 0 {
		s.longTo = from + idx + len(s.longEnd) - 1
	} else {
		s.longTo = len(s.src)
	}
}

// jump moves the scanner so that the next call to Next returns the byte at
// offset to. It must only be used to step over bytes outside any string.
func (s *CodeScanner) jump(to int) {
	if to-1 <= s.pos {
		return
	}
	s.line += strings.Count(s.src[s.pos+1:min(to, len(s.src))], "\n")
	s.pos = to - 1
	s.closing = noClosing
}

// LongBracket reports whether src starts with a Lua long bracket opener
// ([[, [=[, [==[, ...) and returns its level.
func LongBracket(src string) (int, bool) {
	if len(src) < 2 || src[0] != '[' {
		return 0, false
	}
	level := 0
	for 1+level < len(src) && src[1+level] == '=' {
		level++
	}
	if 1+level < len(src) && src[1+level] == '[' {
		return level, true
	}
	return 0, false
}

// InString reports whether the current position is inside a string literal,
// including both opening and closing delimiters.
func (s *CodeScanner) InString() bool {
	return s.inDbl || s.inSgl || s.longEnd != "" || s.closing != noClosing
}

// InLongString reports whether the current position is inside a long-bracket
// string.
func (s *CodeScanner) InLongString() bool { return s.longEnd != "" || s.closing == closingLong }

// InCode reports whether the current position is outside all string literals.
func (s *CodeScanner) InCode() bool { return !s.InString() }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Line returns the current 1-based line number.
func (s *CodeScanner) Line() int { return s.line }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// LookingAt checks if src[pos:] starts with the given prefix.
func (s *CodeScanner) LookingAt(prefix string) bool {
	if s.pos < 0 || s.pos >= len(s.src) {
		return false
	}
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// StripComments blanks every Lua comment in src. Line comments run to the
// end of the line; `--[[ ... ]]` comments run to the matching closer. Every
// blanked byte becomes a space except newlines, so byte offsets and line
// numbers of the remaining code are unchanged.
func StripComments(src string) string {
	out := []byte(src)
	sc := New(src)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InString() || ch != '-' || !sc.LookingAt("--") {
			continue
		}
		start := sc.Pos()
		end := commentEnd(src, start)
		for i := start; i < end; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
		sc.jump(end)
	}
	return string(out)
}

// commentEnd returns the offset just past the comment starting at start.
func commentEnd(src string, start int) int {
	body := start + 2
	if level, ok := LongBracket(src[body:]); ok {
		closer := "]" + strings.Repeat("=", level) + "]"
		from := body + level + 2
		if idx := strings.Index(src[from:], closer); idx >= 0 {
			return from + idx + len(closer)
		}
		return len(src)
	}
	if idx := strings.IndexByte(src[body:], '\n'); idx >= 0 {
		return body + idx
	}
	return len(src)
}
