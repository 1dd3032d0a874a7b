package buffer

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPrecondition reports a caller bug: an edit against a closed span or a
// range that does not fit the span it is applied to.
var ErrPrecondition = errors.New("precondition violated")

// Spanner registers the constructs found in data, which was just written
// at offset. It keeps nesting information current after an edit.
type Spanner func(b *Buffer, offset int, data []byte)

// Buffer is the mutable text of one document together with every span
// recorded over it. All spans are kept valid across edits: Replace shifts,
// grows or collapses them so that callers never hold stale offsets.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data    []byte
	spans   map[Family][]*Span
	owners  map[*Span]Family
	next    Family
	spanner Spanner
}

// New creates a buffer over a copy of data.
func New(data []byte) *Buffer {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Buffer{
		data:   buf,
		spans:  make(map[Family][]*Span),
		owners: make(map[*Span]Family),
		next:   firstDynamic,
	}
}

// SetSpanner installs the hook run on every inserted byte run.
func (b *Buffer) SetSpanner(fn Spanner) {
	b.spanner = fn
}

func (b *Buffer) Len() int       { return len(b.data) }
func (b *Buffer) String() string { return string(b.data) }

// Bytes returns the current content. The slice must not be modified and is
// only valid until the next edit.
func (b *Buffer) Bytes() []byte { return b.data }

// Slice returns the bytes covered by s, or nil for a closed or out of range span.
func (b *Buffer) Slice(s Span) []byte {
	if s.Closed() || s.Start < 0 || s.End > len(b.data) {
		return nil
	}
	return b.data[s.Start:s.End]
}

// NewFamily allocates a fresh family, typically for the argument list of
// one template.
func (b *Buffer) NewFamily() Family {
	f := b.next
	b.next++
	return f
}

// Add records a span in family f, keeping the family in document order.
func (b *Buffer) Add(f Family, start, end int) *Span {
	s := &Span{Start: start, End: end}
	spans := b.spans[f]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Start > start })
	spans = append(spans, nil)
	copy(spans[i+1:], spans[i:])
	spans[i] = s
	b.spans[f] = spans
	return s
}

// Bind links a construct span to the family holding its arguments.
func (b *Buffer) Bind(owner *Span, f Family) {
	b.owners[owner] = f
}

// FamilyOf returns the argument family bound to owner.
func (b *Buffer) FamilyOf(owner *Span) (Family, bool) {
	f, ok := b.owners[owner]
	return f, ok
}

// Spans returns the spans of family f in document order. Closed spans are
// included; callers skip them. The returned slice must not be modified.
func (b *Buffer) Spans(f Family) []*Span {
	return b.spans[f]
}

// NestedFunc returns a predicate reporting whether an offset lies strictly
// inside an open construct that is itself properly contained in outer.
// The set of inner constructs is collected once, so the predicate is cheap
// to call repeatedly while scanning outer.
func (b *Buffer) NestedFunc(outer Span) func(offset int) bool {
	var inner []Span
	for _, f := range Constructs {
		for _, s := range b.spans[f] {
			if s.Start >= outer.End {
				break
			}
			if s.Closed() || !outer.encloses(*s) {
				continue
			}
			inner = append(inner, *s)
		}
	}
	return func(offset int) bool {
		for _, s := range inner {
			if s.Start < offset && offset < s.End {
				return true
			}
		}
		return false
	}
}

// Replace substitutes the bytes in [start, end) with repl. The range must
// lie within target, which grows or shrinks by the length difference; every
// other span is shifted, resized or collapsed accordingly. Nothing is
// modified when the preconditions do not hold.
func (b *Buffer) Replace(target *Span, start, end int, repl []byte) error {
	if target == nil || target.Closed() {
		return fmt.Errorf("%w: replace on closed span", ErrPrecondition)
	}
	if start > end || start < target.Start || end > target.End || end > len(b.data) {
		return fmt.Errorf("%w: range [%d, %d) does not fit span %s", ErrPrecondition, start, end, target)
	}

	data := make([]byte, 0, len(b.data)-(end-start)+len(repl))
	data = append(data, b.data[:start]...)
	data = append(data, repl...)
	data = append(data, b.data[end:]...)

	// enclosing spans are decided on the layout before the edit
	enclosing := b.enclosing(target)
	if !b.registered(target) {
		// a view built by the caller rather than by the parser
		target.End += len(repl) - (end - start)
	}
	if start < end {
		b.shrink(start, end)
	}
	if len(repl) > 0 {
		b.expand(target, enclosing, start, len(repl))
	}
	b.data = data

	if b.spanner != nil && len(repl) > 0 {
		b.spanner(b, start, repl)
	}
	return nil
}

func (b *Buffer) registered(target *Span) bool {
	for _, spans := range b.spans {
		for _, s := range spans {
			if s == target {
				return true
			}
		}
	}
	return false
}

// enclosing returns the open spans other than target that contain it.
func (b *Buffer) enclosing(target *Span) map[*Span]bool {
	set := make(map[*Span]bool)
	for _, spans := range b.spans {
		for _, s := range spans {
			if s == target || s.Closed() {
				continue
			}
			if s.Start <= target.Start && s.End >= target.End {
				set[s] = true
			}
		}
	}
	return set
}

// shrink updates spans for the removal of [start, end). Offsets inside the
// removed range collapse onto start.
func (b *Buffer) shrink(start, end int) {
	n := end - start
	move := func(x int) int {
		switch {
		case x <= start:
			return x
		case x <= end:
			return start
		default:
			return x - n
		}
	}
	for _, spans := range b.spans {
		for _, s := range spans {
			s.Start, s.End = move(s.Start), move(s.End)
		}
	}
}

// expand updates spans for n bytes inserted at pos inside target.
func (b *Buffer) expand(target *Span, enclosing map[*Span]bool, pos, n int) {
	for _, spans := range b.spans {
		for _, s := range spans {
			switch {
			case s == target || enclosing[s]:
				s.End += n
			case s.Closed() && s.Start == pos && pos == target.Start:
				// collapsed before target, keep it there
			case s.Start >= pos:
				s.Start += n
				s.End += n
			case s.End > pos:
				s.End += n
			}
		}
	}
}
