package wtp

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/wtp/internal/buffer"
)

// construct is what every view over a delimited construct shares.
type construct struct {
	buf  *buffer.Buffer
	span *Span
}

// Span returns the current byte range, delimiters included.
func (c construct) Span() Span { return *c.span }

// String returns the raw text.
func (c construct) String() string { return string(c.buf.Slice(*c.span)) }

func (c construct) argumentSpans() (Family, []*Span, bool) {
	f, ok := c.buf.FamilyOf(c.span)
	if !ok {
		return 0, nil, false
	}
	return f, c.buf.Spans(f), true
}

func (c construct) arguments() []*Argument {
	f, spans, ok := c.argumentSpans()
	if !ok {
		return nil
	}
	var out []*Argument
	for i, s := range spans {
		if !s.Closed() {
			out = append(out, NewArgument(c.buf, c.buf, f, i))
		}
	}
	return out
}

// firstArgument returns the first open argument span.
func (c construct) firstArgument() *Span {
	_, spans, _ := c.argumentSpans()
	for _, s := range spans {
		if !s.Closed() {
			return s
		}
	}
	return nil
}

// head returns the bytes between an opener of width open and the first
// argument, or the closer of width close when there is no argument.
func (c construct) head(open, close int) []byte {
	start, end := c.span.Start+open, c.span.End-close
	if first := c.firstArgument(); first != nil {
		end = first.Start
	}
	if c.span.Closed() || end < start {
		return nil
	}
	return c.buf.Bytes()[start:end]
}

// Template is a template transclusion such as {{Cite web|url=...}}.
type Template struct {
	construct
}

// Name returns the template name with surrounding whitespace removed.
func (t *Template) Name() string {
	return strings.TrimSpace(string(t.head(2, 2)))
}

// NormalName returns the name the way MediaWiki resolves it: underscores
// are spaces, runs of spaces collapse and the first letter is upper case.
func (t *Template) NormalName() string {
	return normalizeName(t.Name())
}

// Arguments returns the arguments in order.
func (t *Template) Arguments() []*Argument { return t.arguments() }

// SameAs reports whether t and o view the same template of a document.
// Two deleted templates can share a span value, so spans are compared by
// identity.
func (t *Template) SameAs(o *Template) bool {
	return o != nil && t.span == o.span
}

// Argument returns the argument called name. When a name is repeated the
// last one wins, as it does when the page is rendered. It returns nil when
// there is no such argument.
func (t *Template) Argument(name string) *Argument {
	name = strings.TrimSpace(name)
	var found *Argument
	for _, a := range t.arguments() {
		if strings.TrimSpace(a.Name()) == name {
			found = a
		}
	}
	return found
}

// SetArgument sets the value of the argument called name, appending a
// keyword argument when there is none.
func (t *Template) SetArgument(name, value string) error {
	if a := t.Argument(name); a != nil {
		return a.SetValue(value)
	}
	if hasAtomic([]byte(name)) {
		return fmt.Errorf("%w: name %q contains a separator", ErrInvalidOperation, name)
	}
	if breaksArgument([]byte(name)) || breaksArgument([]byte(value)) {
		return fmt.Errorf("%w: argument %q would split the template", ErrInvalidOperation, name)
	}
	f, _, ok := t.argumentSpans()
	if !ok || t.span.Closed() {
		return fmt.Errorf("%w: template is closed", ErrPrecondition)
	}

	text := "|" + name + "=" + value
	pos := t.span.End - 2
	if err := t.buf.Replace(t.span, pos, pos, []byte(text)); err != nil {
		return err
	}
	t.buf.Add(f, pos, pos+len(text))
	return nil
}

// ParserFunction is a parser function call such as {{#if:x|y|z}}. Its first
// argument starts at the colon after the function name.
type ParserFunction struct {
	construct
}

// Name returns the function name, '#' included.
func (pf *ParserFunction) Name() string {
	return strings.TrimSpace(string(pf.head(2, 2)))
}

func (pf *ParserFunction) Arguments() []*Argument { return pf.arguments() }

// Parameter is a template parameter such as {{{1|default}}}.
type Parameter struct {
	construct
}

func (p *Parameter) Name() string {
	return strings.TrimSpace(string(p.head(3, 3)))
}

// Default returns the fallback text after the first pipe.
func (p *Parameter) Default() (string, bool) {
	first := p.firstArgument()
	if first == nil {
		return "", false
	}
	return string(stripMarker(p.buf.Slice(*first))), true
}

// WikiLink is an internal link such as [[Page|text]].
type WikiLink struct {
	construct
}

func (l *WikiLink) Target() string {
	return strings.TrimSpace(string(l.head(2, 2)))
}

// Text returns everything after the first pipe.
func (l *WikiLink) Text() (string, bool) {
	first := l.firstArgument()
	if first == nil {
		return "", false
	}
	end := l.span.End - 2
	if end < first.Start+1 {
		return "", true
	}
	return string(l.buf.Bytes()[first.Start+1 : end]), true
}

// Comment is an HTML comment such as <!-- note -->.
type Comment struct {
	construct
}

// Text returns the comment body with surrounding whitespace removed.
func (c *Comment) Text() string {
	body := strings.TrimPrefix(c.String(), "<!--")
	body = strings.TrimSuffix(body, "-->")
	return strings.TrimSpace(body)
}

func normalizeName(name string) string {
	name = strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
