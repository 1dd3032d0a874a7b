package nofix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/wtp"
)

func TestIsNofix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		rule  string
		want  []bool // per template in document order
	}{
		{
			name:  "whole page",
			input: "<!-- wtp:nofix -->\nText {{a}} {{b}}",
			rule:  "any",
			want:  []bool{true, true},
		},
		{
			name:  "standalone before template",
			input: "x {{a}}\n<!-- wtp:nofix -->\n{{b}} {{c}}",
			rule:  "any",
			want:  []bool{false, true, false},
		},
		{
			name:  "inline in template",
			input: "x {{a|{{b|<!--wtp:nofix-->}}}} {{c}}",
			rule:  "any",
			want:  []bool{false, true, false},
		},
		{
			name:  "listed rule",
			input: "x <!-- wtp:nofix: hyphenate, drop 1 -->{{a}}",
			rule:  "drop 1",
			want:  []bool{true},
		},
		{
			name:  "other rule",
			input: "x <!-- wtp:nofix: hyphenate -->{{a}}",
			rule:  "drop 1",
			want:  []bool{false},
		},
		{
			name:  "text between comment and template",
			input: "x <!-- wtp:nofix --> y {{a}}",
			rule:  "any",
			want:  []bool{false},
		},
		{
			name:  "invalid comments",
			input: "x <!-- wtp:nofixes -->{{a}} <!-- wtp:nofix: -->{{b}} <!-- note -->{{c}}",
			rule:  "any",
			want:  []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := wtp.Parse(tt.input)
			m := ParseComments(doc)

			templates := doc.Templates()
			require.Len(t, templates, len(tt.want))
			for i, tpl := range templates {
				assert.Equal(t, tt.want[i], m.IsNofix(tpl, tt.rule), tpl.Name())
			}
		})
	}
}

func TestIsNofixDeletedTemplates(t *testing.T) {
	t.Parallel()
	doc := wtp.Parse("{{#if:x|<!-- wtp:nofix -->{{a}}{{b}}}}")
	m := ParseComments(doc)

	templates := doc.Templates()
	require.Len(t, templates, 2)
	a, b := templates[0], templates[1]
	assert.True(t, m.IsNofix(a, "any"))
	assert.False(t, m.IsNofix(b, "any"))

	// both templates collapse onto the same offset
	fn := doc.ParserFunctions()[0]
	require.NoError(t, fn.Arguments()[1].SetValue("y"))
	require.Equal(t, "{{#if:x|y}}", doc.String())
	require.Equal(t, a.Span(), b.Span())

	assert.True(t, m.IsNofix(a, "any"))
	assert.False(t, m.IsNofix(b, "any"))
}
