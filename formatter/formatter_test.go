package formatter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/wtp/internal/engine"
	"github.com/gnolang/wtp/internal/rules"
)

func TestGenerateFormattedRecords(t *testing.T) {
	t.Parallel()
	src := "Intro\n{{Cite web|url=u|x}}\n\t{{#if:é|yes}}"
	code := &SourceCode{Lines: []string{"Intro", "{{Cite web|url=u|x}}", "\t{{#if:é|yes}}"}}
	records := engine.InspectSource("page.wiki", []byte(src))

	tmpl, err := ParseRecordTemplate("")
	require.NoError(t, err)

	expected := `template: Cite web
 --> page.wiki:2:11
  |
2 | {{Cite web|url=u|x}}
  |           ~~~~~~
  = url: "u"
template: Cite web
 --> page.wiki:2:17
  |
2 | {{Cite web|url=u|x}}
  |                 ~~
  = 1 (positional): "x"
template: #if
 --> page.wiki:3:7
  |
3 | 	{{#if:é|yes}}
  |              ~~
  = 1 (positional): "é"
template: #if
 --> page.wiki:3:9
  |
3 | 	{{#if:é|yes}}
  |                ~~~~
  = 2 (positional): "yes"
`

	result, err := GenerateFormattedRecords(records, code, tmpl)
	require.NoError(t, err)
	assert.Equal(t, expected, result, "Formatted output does not match expected")
}

func TestGenerateFormattedRecordsMultipleDigitLines(t *testing.T) {
	t.Parallel()
	code := &SourceCode{Lines: make([]string, 11)}
	code.Lines[9] = "{{t|a="
	code.Lines[10] = "b}}"

	records := []engine.Record{{File: "p.wiki", Template: "t", Argument: "a", Value: "\nb", Text: "|a=\nb", Line: 10, Column: 4}}
	tmpl, err := ParseRecordTemplate("")
	require.NoError(t, err)

	expected := `template: t
  --> p.wiki:10:4
   |
10 | {{t|a=
   |    ~~~
   = a: "\nb"
`
	result, err := GenerateFormattedRecords(records, code, tmpl)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestCustomRecordTemplate(t *testing.T) {
	t.Parallel()
	records := engine.InspectSource("p.wiki", []byte("{{t|k=v}}"))

	tmpl, err := ParseRecordTemplate("{{.File}}:{{.Line}} {{.Template}}.{{.Argument}}={{.Value}}\n")
	require.NoError(t, err)
	result, err := GenerateFormattedRecords(records, nil, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "p.wiki:1 t.k=v\n", result)

	_, err = ParseRecordTemplate("{{.File")
	assert.Error(t, err)

	bad, err := ParseRecordTemplate("{{.Missing}}")
	require.NoError(t, err)
	_, err = GenerateFormattedRecords(records, nil, bad)
	assert.Error(t, err)
}

func TestGenerateFormattedChanges(t *testing.T) {
	t.Parallel()
	changes := []rules.Change{
		{Rule: "hyphenate", Template: "cite web", Argument: "accessdate", Offset: 10, Before: "|accessdate=1", After: "|access-date=1"},
	}

	expected := `fix: hyphenate
 --> a.wiki@10 in {{cite web}}
  - |accessdate=1
  + |access-date=1

`
	assert.Equal(t, expected, GenerateFormattedChanges("a.wiki", changes))
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.wiki")
	require.NoError(t, os.WriteFile(path, []byte("a\nb"), 0o644))

	code, err := ReadSourceCode(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, code.Lines)
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"a\tx", 3, 8},
		{"éa", 2, 1},
		{"ab", 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column), "%q col %d", tt.line, tt.column)
	}
}
