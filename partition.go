package wtp

import (
	"bytes"

	"github.com/gnolang/wtp/internal/buffer"
)

type (
	Span   = buffer.Span
	Family = buffer.Family
)

// TextBuffer is the shared, mutable text of a document.
type TextBuffer interface {
	// Slice returns the bytes covered by s.
	Slice(s Span) []byte
	// Replace substitutes [start, end) inside target with repl and keeps
	// every recorded span consistent. It is all or nothing.
	Replace(target *Span, start, end int, repl []byte) error
}

// SpanIndex exposes the spans recorded over a TextBuffer.
type SpanIndex interface {
	// Spans returns the spans of a family in document order.
	Spans(f Family) []*Span
	// NestedFunc returns a predicate telling whether an offset is inside a
	// construct nested in outer.
	NestedFunc(outer Span) func(offset int) bool
}

// atomicPartition splits the bytes of outer around the first sep that is
// not shielded by a construct nested in outer. When there is none, head is
// the whole range and found is false.
func atomicPartition(text TextBuffer, spans SpanIndex, outer Span, sep byte) (head []byte, found bool, tail []byte) {
	raw := text.Slice(outer)
	i := atomicIndex(raw, outer.Start, func() func(int) bool {
		return spans.NestedFunc(outer)
	}, sep)
	if i < 0 {
		return raw, false, nil
	}
	return raw[:i], true, raw[i+1:]
}

// atomicIndex returns the index in raw of the first sep whose offset
// base+i is not nested, or -1. The nesting predicate is only built once a
// candidate has been found, and scanning stops at the first accepted one.
func atomicIndex(raw []byte, base int, nestedFunc func() func(int) bool, sep byte) int {
	var nested func(int) bool
	for from := 0; from < len(raw); {
		i := bytes.IndexByte(raw[from:], sep)
		if i < 0 {
			return -1
		}
		i += from
		if nested == nil {
			nested = nestedFunc()
		}
		if !nested(base + i) {
			return i
		}
		from = i + 1
	}
	return -1
}
