package wtp

import (
	"fmt"
	"strconv"

	"github.com/gnolang/wtp/internal/buffer"
	"github.com/gnolang/wtp/internal/parser"
)

// Argument is a view over one argument of a template, parser function or
// parameter. It is identified by its index among the spans of its family
// and derives everything else from the current text on every call.
type Argument struct {
	text   TextBuffer
	spans  SpanIndex
	family Family
	index  int
}

// NewArgument returns the view over the index-th span of family.
func NewArgument(text TextBuffer, spans SpanIndex, family Family, index int) *Argument {
	return &Argument{
		text:   text,
		spans:  spans,
		family: family,
		index:  index,
	}
}

func (a *Argument) span() *Span {
	return a.spans.Spans(a.family)[a.index]
}

// Span returns the current byte range of the argument, marker included.
func (a *Argument) Span() Span { return *a.span() }

// String returns the raw text of the argument.
func (a *Argument) String() string {
	return string(a.text.Slice(*a.span()))
}

func (a *Argument) partition() (head []byte, found bool, tail []byte) {
	return atomicPartition(a.text, a.spans, *a.span(), '=')
}

// Name returns the name of a keyword argument, or the position of a
// positional one as a decimal string.
func (a *Argument) Name() string {
	head, found, _ := a.partition()
	if found {
		return string(stripMarker(head))
	}
	position := 1
	for _, s := range a.spans.Spans(a.family)[:a.index] {
		if s.Closed() {
			continue
		}
		// a sibling whose every '=' is shielded is positional too
		if _, found, _ := atomicPartition(a.text, a.spans, *s, '='); !found {
			position++
		}
	}
	return strconv.Itoa(position)
}

// Value returns the text after the separator, or the bare content of a
// positional argument.
func (a *Argument) Value() string {
	head, found, tail := a.partition()
	if found {
		return string(tail)
	}
	return string(stripMarker(head))
}

// Positional reports whether the argument has no separator of its own.
func (a *Argument) Positional() bool {
	_, found, _ := a.partition()
	return !found
}

// SetName renames a keyword argument. A positional argument is converted
// to a keyword argument whose value is its former content.
func (a *Argument) SetName(name string) error {
	s := a.span()
	if s.Closed() {
		return fmt.Errorf("%w: set name on closed argument", ErrPrecondition)
	}
	if hasAtomic([]byte(name)) {
		return fmt.Errorf("%w: name %q contains a separator", ErrInvalidOperation, name)
	}
	if breaksArgument([]byte(name)) {
		return fmt.Errorf("%w: name %q would split the argument", ErrInvalidOperation, name)
	}

	head, found, _ := a.partition()
	if found {
		return a.text.Replace(s, s.Start+1, s.Start+len(head), []byte(name))
	}
	repl := make([]byte, 0, len(name)+2)
	repl = append(repl, head[0])
	repl = append(repl, name...)
	repl = append(repl, '=')
	return a.text.Replace(s, s.Start, s.Start+1, repl)
}

// SetValue replaces the value and keeps the argument positional or keyword.
func (a *Argument) SetValue(value string) error {
	s := a.span()
	if s.Closed() {
		return fmt.Errorf("%w: set value on closed argument", ErrPrecondition)
	}
	if breaksArgument([]byte(value)) {
		return fmt.Errorf("%w: value %q would split the argument", ErrInvalidOperation, value)
	}

	head, found, _ := a.partition()
	if found {
		return a.text.Replace(s, s.Start+len(head)+1, s.End, []byte(value))
	}
	if hasAtomic([]byte(value)) {
		return fmt.Errorf("%w: value %q would make a positional argument keyword", ErrInvalidOperation, value)
	}
	return a.text.Replace(s, s.Start+1, s.End, []byte(value))
}

// SetPositional converts a keyword argument to a positional one by
// dropping its name. Converting the other way needs a name and fails with
// ErrInvalidOperation; use SetName.
func (a *Argument) SetPositional(positional bool) error {
	s := a.span()
	if s.Closed() {
		return fmt.Errorf("%w: set positional on closed argument", ErrPrecondition)
	}

	head, found, _ := a.partition()
	switch {
	case found && positional:
		return a.text.Replace(s, s.Start+1, s.Start+len(head)+1, nil)
	case found, positional:
		return nil
	default:
		return fmt.Errorf("%w: converting positional argument %s to keyword needs a name", ErrInvalidOperation, a.Name())
	}
}

func stripMarker(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	return b[1:]
}

// hasAtomic reports whether text would contribute a separator when written
// into an argument, i.e. holds an '=' outside every construct it contains.
func hasAtomic(text []byte) bool {
	if len(text) == 0 {
		return false
	}
	tmp := buffer.New(text)
	parser.Register(tmp, 0, tmp.Bytes())
	whole := Span{Start: -1, End: len(text) + 1}
	return atomicIndex(text, 0, func() func(int) bool { return tmp.NestedFunc(whole) }, '=') >= 0
}

// breaksArgument reports whether text holds a '|', "{{" or "}}" outside
// every construct it contains. Written into an argument, such text would
// end the argument or its owner early once the page is parsed again.
func breaksArgument(text []byte) bool {
	if len(text) == 0 {
		return false
	}
	// text never starts a line inside an argument, so parse it after one byte
	src := append([]byte{'='}, text...)
	tmp := buffer.New(src)
	parser.Register(tmp, 0, tmp.Bytes())

	covered := make([]bool, len(src))
	for _, f := range buffer.Constructs {
		for _, s := range tmp.Spans(f) {
			for i := s.Start; i < s.End; i++ {
				covered[i] = true
			}
		}
	}
	for i := 1; i < len(src); i++ {
		if covered[i] {
			continue
		}
		switch c := src[i]; {
		case c == '|':
			return true
		case c == '{' || c == '}':
			if i+1 < len(src) && src[i+1] == c && !covered[i+1] {
				return true
			}
		}
	}
	return false
}
