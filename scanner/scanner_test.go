package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectScanner(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"Main_Page.wiki":         "{{Infobox}}",
		"Help.WIKITEXT":          "[[Main Page]]",
		"notes.md":               "# notes",
		"sub/Talk.wiki":          "{{talk header}}",
		".git/objects/pack.wiki": "{{x}}",
	}

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scanner := New(tempDir, ".wiki", ".wikitext")
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{
		filepath.Join(tempDir, "Help.WIKITEXT"),
		filepath.Join(tempDir, "Main_Page.wiki"),
		filepath.Join(tempDir, "sub/Talk.wiki"),
	}, paths)
}

func TestIsTarget(t *testing.T) {
	t.Parallel()
	assert.True(t, New(".").IsTarget("anything.bin"))

	s := New(".", ".wiki")
	assert.True(t, s.IsTarget("a/b.wiki"))
	assert.False(t, s.IsTarget("a/b.wiki.bak"))
	assert.False(t, s.IsTarget("wiki"))
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
