package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/wtp"
)

func strPtr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		yamlContent string
		wantRules   []Rule
		wantErr     bool
	}{
		{
			name: "valid rules",
			yamlContent: `
rules:
  - name: hyphenate access date
    template: "[Cc]ite web"
    argument: accessdate
    rename: access-date
  - name: drop explicit 1
    template: Infobox
    argument: "1"
    positional: true
  - name: set language
    template: Cite book
    argument: language
    value: ""
`,
			wantRules: []Rule{
				{Name: "hyphenate access date", Template: "[Cc]ite web", Argument: "accessdate", Rename: "access-date"},
				{Name: "drop explicit 1", Template: "Infobox", Argument: "1", Positional: true},
				{Name: "set language", Template: "Cite book", Argument: "language", Value: strPtr("")},
			},
		},
		{
			name: "invalid yaml",
			yamlContent: `
rules:
  - name: missing colon
    template "x"
`,
			wantErr: true,
		},
		{
			name: "two actions",
			yamlContent: `
rules:
  - name: both
    template: x
    argument: a
    rename: b
    value: c
`,
			wantErr: true,
		},
		{
			name: "no action",
			yamlContent: `
rules:
  - template: x
    argument: a
`,
			wantErr: true,
		},
		{
			name: "missing argument",
			yamlContent: `
rules:
  - template: x
    rename: b
`,
			wantErr: true,
		},
		{
			name: "bad pattern",
			yamlContent: `
rules:
  - template: "(x"
    argument: a
    rename: b
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yamlContent), 0o644))

			got, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantRules))
			for i, want := range tt.wantRules {
				assert.Equal(t, want.Name, got[i].Name)
				assert.Equal(t, want.Template, got[i].Template)
				assert.Equal(t, want.Argument, got[i].Argument)
				assert.Equal(t, want.Rename, got[i].Rename)
				assert.Equal(t, want.Value, got[i].Value)
				assert.Equal(t, want.Positional, got[i].Positional)
				assert.NotNil(t, got[i].pattern)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatches(t *testing.T) {
	t.Parallel()
	rule := Rule{Template: "[Cc]ite (web|news)", Argument: "a", Rename: "b"}
	tests := []struct {
		name string
		want bool
	}{
		{"cite web", true},
		{" Cite news ", true},
		{"Cite webs", false},
		{"Template:Cite web", false},
	}
	for _, tt := range tests {
		got, err := rule.Matches(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		input       string
		rules       string
		want        string
		wantChanges []Change
	}{
		{
			name:  "rename",
			input: "{{cite web|url=u|accessdate=2020}} {{cite book|accessdate=1}}",
			rules: `
rules:
  - name: hyphenate
    template: "[Cc]ite web"
    argument: accessdate
    rename: access-date
`,
			want: "{{cite web|url=u|access-date=2020}} {{cite book|accessdate=1}}",
			wantChanges: []Change{
				{Rule: "hyphenate", Template: "cite web", Argument: "accessdate", Offset: 16, Before: "|accessdate=2020", After: "|access-date=2020"},
			},
		},
		{
			name:  "normalized name",
			input: "{{infobox_person|name=x}}",
			rules: `
rules:
  - name: set name
    template: Infobox person
    argument: name
    value: "[[Y|y=z]]"
`,
			want: "{{infobox_person|name=[[Y|y=z]]}}",
			wantChanges: []Change{
				{Rule: "set name", Template: "infobox_person", Argument: "name", Offset: 16, Before: "|name=x", After: "|name=[[Y|y=z]]"},
			},
		},
		{
			name:  "make positional",
			input: "{{Infobox|1=a|b=c}}",
			rules: `
rules:
  - name: drop 1
    template: Infobox
    argument: "1"
    positional: true
`,
			want: "{{Infobox|a|b=c}}",
			wantChanges: []Change{
				{Rule: "drop 1", Template: "Infobox", Argument: "1", Offset: 9, Before: "|1=a", After: "|a"},
			},
		},
		{
			name:  "already in place",
			input: "{{t|a|k=v}}",
			rules: `
rules:
  - template: t
    argument: k
    value: v
  - template: t
    argument: "1"
    positional: true
  - template: t
    argument: missing
    rename: x
`,
			want: "{{t|a|k=v}}",
		},
		{
			name:  "nofix comment",
			input: "{{t|a=1}}<!-- wtp:nofix: set a -->\n{{t|a=2}}",
			rules: `
rules:
  - name: set a
    template: t
    argument: a
    value: "0"
`,
			want: "{{t|a=0}}<!-- wtp:nofix: set a -->\n{{t|a=2}}",
			wantChanges: []Change{
				{Rule: "set a", Template: "t", Argument: "a", Offset: 3, Before: "|a=1", After: "|a=0"},
			},
		},
		{
			name:  "rules run in order",
			input: "{{t|old=1}}",
			rules: `
rules:
  - name: first
    template: t
    argument: old
    rename: new
  - name: second
    template: t
    argument: new
    value: "2"
`,
			want: "{{t|new=2}}",
			wantChanges: []Change{
				{Rule: "first", Template: "t", Argument: "old", Offset: 3, Before: "|old=1", After: "|new=1"},
				{Rule: "second", Template: "t", Argument: "new", Offset: 3, Before: "|new=1", After: "|new=2"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rules, err := Parse([]byte(tt.rules))
			require.NoError(t, err)

			doc := wtp.Parse(tt.input)
			changes, err := Apply(doc, rules)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.String())
			assert.Equal(t, tt.wantChanges, changes)
		})
	}
}

func TestApplyCollectsErrors(t *testing.T) {
	t.Parallel()
	rules, err := Parse([]byte(`
rules:
  - name: bad rename
    template: t
    argument: a
    rename: "x=y"
  - name: ok
    template: t
    argument: b
    value: "2"
`))
	require.NoError(t, err)

	doc := wtp.Parse("{{t|a=1|b=1}} {{t|a=3}}")
	changes, err := Apply(doc, rules)
	require.Error(t, err)
	assert.ErrorIs(t, err, wtp.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "bad rename")
	assert.Equal(t, "{{t|a=1|b=2}} {{t|a=3}}", doc.String())
	require.Len(t, changes, 1)
	assert.Equal(t, "ok", changes[0].Rule)
}
