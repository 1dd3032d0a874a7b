package wtp

import (
	"github.com/gnolang/wtp/internal/buffer"
	"github.com/gnolang/wtp/internal/parser"
)

// Document is parsed wikitext. It owns the text and the spans of every
// construct found in it; the views it hands out share both.
type Document struct {
	buf *buffer.Buffer
}

// Parse records every construct of text. Constructs written later through
// any view are recorded as they are inserted.
func Parse(text string) *Document {
	buf := buffer.New([]byte(text))
	parser.Register(buf, 0, buf.Bytes())
	buf.SetSpanner(parser.Register)
	return &Document{buf: buf}
}

// String returns the current text.
func (d *Document) String() string { return d.buf.String() }

// Templates returns the templates in document order, nested ones included.
func (d *Document) Templates() []*Template {
	var out []*Template
	for _, s := range d.open(buffer.Template) {
		out = append(out, &Template{construct{buf: d.buf, span: s}})
	}
	return out
}

// ParserFunctions returns the parser function calls in document order.
func (d *Document) ParserFunctions() []*ParserFunction {
	var out []*ParserFunction
	for _, s := range d.open(buffer.ParserFunction) {
		out = append(out, &ParserFunction{construct{buf: d.buf, span: s}})
	}
	return out
}

// Parameters returns the template parameters ({{{name|default}}}).
func (d *Document) Parameters() []*Parameter {
	var out []*Parameter
	for _, s := range d.open(buffer.Parameter) {
		out = append(out, &Parameter{construct{buf: d.buf, span: s}})
	}
	return out
}

// WikiLinks returns the internal links.
func (d *Document) WikiLinks() []*WikiLink {
	var out []*WikiLink
	for _, s := range d.open(buffer.WikiLink) {
		out = append(out, &WikiLink{construct{buf: d.buf, span: s}})
	}
	return out
}

// Comments returns the HTML comments, unterminated ones included.
func (d *Document) Comments() []*Comment {
	var out []*Comment
	for _, s := range d.open(buffer.Comment) {
		out = append(out, &Comment{construct{buf: d.buf, span: s}})
	}
	return out
}

func (d *Document) open(f Family) []*Span {
	var out []*Span
	for _, s := range d.buf.Spans(f) {
		if !s.Closed() {
			out = append(out, s)
		}
	}
	return out
}
