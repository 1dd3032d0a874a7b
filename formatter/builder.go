package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/gnolang/wtp/internal/engine"
	"github.com/gnolang/wtp/internal/rules"
)

const tabWidth = 8

var (
	templateStyle = color.New(color.FgYellow, color.Bold)
	fileStyle     = color.New(color.FgCyan, color.Bold)
	lineStyle     = color.New(color.FgHiBlue, color.Bold)
	nameStyle     = color.New(color.FgMagenta, color.Bold)
	valueStyle    = color.New(color.FgWhite)
	removedStyle  = color.New(color.FgRed, color.Bold)
	addedStyle    = color.New(color.FgGreen, color.Bold)
	ruleStyle     = color.New(color.FgYellow, color.Bold)
)

// DefaultRecordTemplate renders an argument under the source line it
// starts on.
const DefaultRecordTemplate = `{{header .Template .MaxLineNumWidth .File .Line .Column -}}
{{snippet .SnippetLine .Line .MaxLineNumWidth .Padding -}}
{{underline .Padding .SnippetLine .Column .Text}}
{{argument .Padding .Argument .Value .Positional}}
`

// SourceCode stores the lines of a file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file split into lines.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return &SourceCode{Lines: strings.Split(string(content), "\n")}, nil
}

// RecordData is what a record template is executed with.
type RecordData struct {
	engine.Record
	MaxLineNumWidth int
	Padding         string
	SnippetLine     string
}

var funcMap = template.FuncMap{
	"header":    header,
	"snippet":   codeSnippet,
	"underline": underline,
	"argument":  argument,
}

// ParseRecordTemplate parses layout, or DefaultRecordTemplate when layout is
// empty. The layout sees RecordData and the header, snippet, underline and
// argument helpers.
func ParseRecordTemplate(layout string) (*template.Template, error) {
	if layout == "" {
		layout = DefaultRecordTemplate
	}
	return template.New("record").Funcs(funcMap).Parse(layout)
}

// GenerateFormattedRecords renders the records of one file.
func GenerateFormattedRecords(records []engine.Record, code *SourceCode, tmpl *template.Template) (string, error) {
	var buf bytes.Buffer
	for _, r := range records {
		width := calculateMaxLineNumWidth(r.Line)
		data := RecordData{
			Record:          r,
			MaxLineNumWidth: width,
			Padding:         strings.Repeat(" ", width+1),
		}
		if code != nil && r.Line > 0 && r.Line <= len(code.Lines) {
			data.SnippetLine = code.Lines[r.Line-1]
		}
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("error formatting %s:%d:%d: %w", r.File, r.Line, r.Column, err)
		}
	}
	return buf.String(), nil
}

// GenerateFormattedChanges renders the changes made to one file as removed
// and added argument text.
func GenerateFormattedChanges(file string, changes []rules.Change) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(ruleStyle.Sprint("fix: "))
		b.WriteString(templateStyle.Sprintf("%s\n", c.Rule))
		b.WriteString(lineStyle.Sprint(" --> "))
		b.WriteString(fileStyle.Sprintf("%s@%d", file, c.Offset))
		b.WriteString(" in ")
		b.WriteString(templateStyle.Sprintf("{{%s}}\n", c.Template))
		b.WriteString(removedStyle.Sprintf("  - %s\n", c.Before))
		b.WriteString(addedStyle.Sprintf("  + %s\n", c.After))
		b.WriteString("\n")
	}
	return b.String()
}

// utils functions used in the text templates

func header(name string, maxLineNumWidth int, filename string, line int, column int) string {
	endString := templateStyle.Sprintf("template: %s\n", name)
	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
	return endString
}

func codeSnippet(snippetLine string, line int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += lineStyle.Sprintf("%s | ", lineNum) + snippetLine + "\n"
	return endString
}

// underline marks the argument on its first line. Arguments that continue
// on later lines are marked up to the end of the line.
func underline(padding string, snippetLine string, column int, text string) string {
	endString := lineStyle.Sprintf("%s| ", padding)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}

	start := calculateVisualColumn(snippetLine, column)
	end := calculateVisualColumn(snippetLine, column+utf8.RuneCountInString(text))
	length := end - start
	if length < 1 {
		length = 1
	}

	endString += strings.Repeat(" ", start)
	endString += nameStyle.Sprint(strings.Repeat("~", length))
	return endString
}

func argument(padding string, name string, value string, positional bool) string {
	endString := lineStyle.Sprintf("%s= ", padding)
	if positional {
		endString += nameStyle.Sprintf("%s (positional)", name)
	} else {
		endString += nameStyle.Sprint(name)
	}
	endString += ": "
	endString += valueStyle.Sprintf("%q", value)
	return endString
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual width of the first column-1
// runes of line, taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	visualColumn := 0
	n := 1
	for _, ch := range line {
		if n == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
		n++
	}
	return visualColumn
}
