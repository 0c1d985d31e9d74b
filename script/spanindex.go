package script

import (
	"github.com/google/btree"

	"github.com/rubiojr/redislua/token"
)

type spanEntry struct {
	lo, hi int // inclusive byte range in the checked body
	span   token.Span
}

// SpanIndex maps byte offsets of an assembled body back to host spans.
// Adjacent entries share their boundary offset, so every offset inside the
// body resolves to at least one span.
type SpanIndex struct {
	tree *btree.BTreeG[spanEntry]
}

// NewSpanIndex returns an empty index.
func NewSpanIndex() *SpanIndex {
	return &SpanIndex{tree: btree.NewG(8, func(a, b spanEntry) bool { return a.lo < b.lo })}
}

// Insert maps every offset in [lo, hi] to span.
func (x *SpanIndex) Insert(lo, hi int, span token.Span) {
	x.tree.ReplaceOrInsert(spanEntry{lo: lo, hi: hi, span: span})
}

// Len returns the number of recorded ranges.
func (x *SpanIndex) Len() int { return x.tree.Len() }

// Lookup returns the spans of every range intersecting [start, end], in
// body order.
func (x *SpanIndex) Lookup(start, end int) []token.Span {
	if end < start {
		start, end = end, start
	}
	// Ranges at or before start, walked backwards while they still reach it.
	var head []token.Span
	x.tree.DescendLessOrEqual(spanEntry{lo: start}, func(e spanEntry) bool {
		if e.hi < start {
			return false
		}
		head = append(head, e.span)
		return true
	})
	out := make([]token.Span, 0, len(head))
	for i := len(head) - 1; i >= 0; i-- {
		out = append(out, head[i])
	}

	x.tree.AscendGreaterOrEqual(spanEntry{lo: start + 1}, func(e spanEntry) bool {
		if e.lo > end {
			return false
		}
		out = append(out, e.span)
		return true
	})
	return out
}
