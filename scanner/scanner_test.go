package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeScanner_Strings(t *testing.T) {
	src := `a "b\"c" 'd' [[e]] f`
	sc := New(src)
	var code []byte
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InCode() {
			code = append(code, ch)
		}
	}
	assert.Equal(t, "a    f", string(code))
}

func TestCodeScanner_LongBracketLevels(t *testing.T) {
	src := "x [==[ ]] ]=] ]==] y"
	sc := New(src)
	var code []byte
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InCode() {
			code = append(code, ch)
		}
	}
	assert.Equal(t, "x  y", string(code))
}

func TestCodeScanner_Line(t *testing.T) {
	sc := New("a\n[[\n]]\nb")
	for _, ok := sc.Next(); ok; _, ok = sc.Next() {
	}
	assert.Equal(t, 4, sc.Line())
}

func TestLongBracket(t *testing.T) {
	tests := []struct {
		src   string
		level int
		ok    bool
	}{
		{"[[", 0, true},
		{"[=[", 1, true},
		{"[==[x", 2, true},
		{"[=", 0, false},
		{"[x", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		level, ok := LongBracket(tt.src)
		assert.Equal(t, tt.ok, ok, tt.src)
		assert.Equal(t, tt.level, level, tt.src)
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"line", "a -- b\nc", "a     \nc"},
		{"at end", "a --b", "a    "},
		{"in string", `s = "--x" -- y`, `s = "--x"     `},
		{"block", "a --[[ b\nc ]] d", "a       \n     d"},
		{"leveled block", "--[=[ ]] ]=]x", "            x"},
		{"quote in comment", "-- it's\nx = 'a'", "       \nx = 'a'"},
		{"minus", "a - -b", "a - -b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripComments(tt.src)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.src))
		})
	}
}
