package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitThenLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conf.yaml")

	require.NoError(t, Init(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    Config
		wantErr bool
	}{
		{
			name: "full",
			content: `
name: enwiki
extensions: [".txt"]
rules_file: rules.yaml
`,
			want: Config{Name: "enwiki", Extensions: []string{".txt"}, RulesFile: "rules.yaml"},
		},
		{
			name:    "defaults fill missing keys",
			content: "name: x\n",
			want:    Config{Name: "x", Extensions: Default().Extensions},
		},
		{
			name:    "absolute rules file",
			content: "rules_file: /etc/wtp/rules.yaml\n",
			want:    Config{Name: "wtp", Extensions: Default().Extensions, RulesFile: "/etc/wtp/rules.yaml"},
		},
		{
			name:    "invalid yaml",
			content: "name: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := filepath.Join(dir, DefaultPath)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want.RulesFile != "" && !filepath.IsAbs(tt.want.RulesFile) {
				tt.want.RulesFile = filepath.Join(dir, tt.want.RulesFile)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
