package parser

import (
	"bytes"

	"github.com/gnolang/wtp/internal/buffer"
)

// extensionTags maps the tag names whose elements are recorded as single
// constructs to whether their content is itself wikitext.
var extensionTags = map[string]bool{
	"ref":             true,
	"gallery":         true,
	"poem":            true,
	"nowiki":          false,
	"pre":             false,
	"math":            false,
	"source":          false,
	"syntaxhighlight": false,
}

// frame is one construct that has been opened but not closed yet.
type frame struct {
	family buffer.Family
	start  int   // offset of the opening delimiter
	pipes  []int // offsets of top level '|' inside the construct
}

// Parser discovers constructs in a byte range of a buffer and records their
// spans in it. Argument lists of templates, parser functions, parameters and
// wikilinks are recorded in a fresh family bound to the owning construct.
//
// Unclosed openers are dropped once a closer of an enclosing construct is
// seen, and closers without an opener are plain text.
type Parser struct {
	buf   *buffer.Buffer
	src   []byte
	pos   int
	end   int
	stack []*frame
}

// New returns a parser over buf restricted to [from, to).
func New(buf *buffer.Buffer, from, to int) *Parser {
	return &Parser{
		buf: buf,
		src: buf.Bytes(),
		pos: from,
		end: to,
	}
}

// Register parses the n bytes written at offset. It has the shape of
// buffer.Spanner so a buffer can rescan inserted text on its own.
func Register(buf *buffer.Buffer, offset int, data []byte) {
	New(buf, offset, offset+len(data)).Parse()
}

// Parse scans the whole range.
func (p *Parser) Parse() {
	for p.pos < p.end {
		switch c := p.src[p.pos]; {
		case c == '<':
			if p.hasPrefix("<!--") {
				p.lexComment()
				continue
			}
			if p.lexExtensionTag() {
				continue
			}
			p.pos++

		case c == '{':
			switch {
			case p.hasPrefix("{{{"):
				p.push(buffer.Parameter, 3)
			case p.hasPrefix("{{"):
				p.push(buffer.Template, 2)
			case p.hasPrefix("{|") && p.atLineStart():
				p.push(buffer.Table, 2)
			default:
				p.pos++
			}

		case c == '[':
			if p.hasPrefix("[[") {
				p.push(buffer.WikiLink, 2)
				continue
			}
			p.pos++

		case c == '}':
			switch {
			case p.hasPrefix("}}}") && p.innermostBrace() == buffer.Parameter:
				p.close(buffer.Parameter, 3)
			case p.hasPrefix("}}"):
				p.close(buffer.Template, 2)
			default:
				p.pos++
			}

		case c == ']':
			if p.hasPrefix("]]") {
				p.close(buffer.WikiLink, 2)
				continue
			}
			p.pos++

		case c == '|':
			if p.hasPrefix("|}") && p.atLineStart() && p.find(buffer.Table) >= 0 {
				p.close(buffer.Table, 2)
				continue
			}
			p.pipe()
			p.pos++

		default:
			p.pos++
		}
	}
}

func (p *Parser) hasPrefix(s string) bool {
	if p.pos+len(s) > p.end {
		return false
	}
	return string(p.src[p.pos:p.pos+len(s)]) == s
}

// atLineStart reports whether only spaces or tabs separate pos from the
// previous newline or the start of the document.
func (p *Parser) atLineStart() bool {
	for i := p.pos - 1; i >= 0; i-- {
		switch p.src[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (p *Parser) push(family buffer.Family, width int) {
	p.stack = append(p.stack, &frame{family: family, start: p.pos})
	p.pos += width
}

// find returns the stack index of the innermost open frame of family, or -1.
func (p *Parser) find(family buffer.Family) int {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].family == family {
			return i
		}
	}
	return -1
}

// innermostBrace returns the family of the innermost open template or
// parameter, or -1 when neither is open.
func (p *Parser) innermostBrace() buffer.Family {
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch f := p.stack[i].family; f {
		case buffer.Template, buffer.Parameter:
			return f
		}
	}
	return -1
}

func (p *Parser) pipe() {
	if len(p.stack) == 0 {
		return
	}
	top := p.stack[len(p.stack)-1]
	if accepts(top.family) {
		top.pipes = append(top.pipes, p.pos)
	}
}

// accepts reports whether a '|' splits constructs of family into arguments.
func accepts(family buffer.Family) bool {
	switch family {
	case buffer.Template, buffer.Parameter, buffer.WikiLink:
		return true
	}
	return false
}

// close ends the innermost frame of family with a closer of the given width.
func (p *Parser) close(family buffer.Family, width int) {
	i := p.find(family)
	if i < 0 {
		p.pos++
		return
	}
	f := p.stack[i]
	if accepts(f.family) {
		// dropped openers are text, so their pipes split f
		for _, dropped := range p.stack[i+1:] {
			f.pipes = append(f.pipes, dropped.pipes...)
		}
	}
	p.stack = p.stack[:i]
	closer := p.pos
	p.pos += width
	p.record(f, closer)
}

// record stores the span of a closed frame and, for constructs that take
// arguments, the spans of those arguments.
func (p *Parser) record(f *frame, closer int) {
	if f.family == buffer.Table {
		p.buf.Add(buffer.Table, f.start, p.pos)
		return
	}

	family := f.family
	bounds := f.pipes
	if family == buffer.Template {
		if colon, ok := p.parserFunction(f, closer); ok {
			family = buffer.ParserFunction
			bounds = append([]int{colon}, f.pipes...)
		}
	}

	owner := p.buf.Add(family, f.start, p.pos)
	args := p.buf.NewFamily()
	p.buf.Bind(owner, args)
	for i, start := range bounds {
		end := closer
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		p.buf.Add(args, start, end)
	}
}

// parserFunction reports whether a template frame is a parser function call
// such as {{#if:...}} and returns the offset of the colon after its name.
func (p *Parser) parserFunction(f *frame, closer int) (int, bool) {
	nameEnd := closer
	if len(f.pipes) > 0 {
		nameEnd = f.pipes[0]
	}
	name := p.src[f.start+2 : nameEnd]
	trimmed := bytes.TrimLeft(name, " \t\n")
	if len(trimmed) == 0 || trimmed[0] != '#' {
		return 0, false
	}
	colon := bytes.IndexByte(trimmed, ':')
	if colon < 0 {
		return 0, false
	}
	return f.start + 2 + (len(name) - len(trimmed)) + colon, true
}

// lexComment records an HTML comment. An unterminated comment runs to the
// end of the range.
func (p *Parser) lexComment() {
	start := p.pos
	closing := bytes.Index(p.src[p.pos+4:p.end], []byte("-->"))
	if closing < 0 {
		p.pos = p.end
	} else {
		p.pos += 4 + closing + 3
	}
	p.buf.Add(buffer.Comment, start, p.pos)
}

// lexExtensionTag records an extension tag element such as <ref>...</ref>
// or <nowiki/>. Content of tags that hold wikitext is parsed on its own, so
// a '|' inside it never splits an enclosing template; other content is
// skipped.
func (p *Parser) lexExtensionTag() bool {
	name, ok := p.tagName()
	if !ok {
		return false
	}
	parsed, known := extensionTags[name]
	if !known {
		return false
	}

	openEnd := bytes.IndexByte(p.src[p.pos:p.end], '>')
	if openEnd < 0 {
		return false
	}
	openEnd += p.pos + 1
	start := p.pos

	if p.src[openEnd-2] == '/' {
		p.buf.Add(buffer.ExtensionTag, start, openEnd)
		p.pos = openEnd
		return true
	}

	closing := []byte("</" + name)
	rel := bytes.Index(bytes.ToLower(p.src[openEnd:p.end]), closing)
	if rel < 0 {
		return false
	}
	closeStart := openEnd + rel
	closeEnd := bytes.IndexByte(p.src[closeStart:p.end], '>')
	if closeEnd < 0 {
		return false
	}
	closeEnd += closeStart + 1

	p.buf.Add(buffer.ExtensionTag, start, closeEnd)
	if parsed {
		// content is opaque to the constructs open around the tag
		New(p.buf, openEnd, closeStart).Parse()
	}
	p.pos = closeEnd
	return true
}

// tagName reads the lower-cased element name after '<'.
func (p *Parser) tagName() (string, bool) {
	i := p.pos + 1
	for i < p.end && isTagNameByte(p.src[i]) {
		i++
	}
	if i == p.pos+1 || i >= p.end {
		return "", false
	}
	switch p.src[i] {
	case ' ', '\t', '\n', '>', '/':
	default:
		return "", false
	}
	return string(bytes.ToLower(p.src[p.pos+1 : i])), true
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
