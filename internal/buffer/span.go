package buffer

import "fmt"

// Span is a half-open byte range [Start, End) into a Buffer.
// A span whose Start is not less than its End is closed: the construct it
// described has been deleted by an edit.
type Span struct {
	Start int
	End   int
}

func (s Span) Closed() bool { return s.Start >= s.End }
func (s Span) Len() int     { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// encloses reports whether o lies inside s without being the same range.
func (s Span) encloses(o Span) bool {
	if o.Start < s.Start || o.End > s.End {
		return false
	}
	return o.Start != s.Start || o.End != s.End
}

// Family identifies an ordered group of same-type spans.
//
// The construct families below are fixed. Argument lists get their own
// family per owning construct, allocated with Buffer.NewFamily.
type Family int

const (
	Template Family = iota
	ParserFunction
	Parameter
	WikiLink
	Table
	Comment
	ExtensionTag

	firstDynamic
)

// Constructs lists the families whose spans shield separators from the
// argument that contains them.
var Constructs = []Family{
	Template,
	ParserFunction,
	Parameter,
	WikiLink,
	Table,
	Comment,
	ExtensionTag,
}

func (f Family) String() string {
	switch f {
	case Template:
		return "template"
	case ParserFunction:
		return "parser-function"
	case Parameter:
		return "parameter"
	case WikiLink:
		return "wikilink"
	case Table:
		return "table"
	case Comment:
		return "comment"
	case ExtensionTag:
		return "extension-tag"
	default:
		return fmt.Sprintf("arguments#%d", int(f-firstDynamic))
	}
}

// IsConstruct reports whether f is one of the fixed construct families.
func (f Family) IsConstruct() bool { return f >= 0 && f < firstDynamic }
