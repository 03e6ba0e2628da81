package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exts = map[string]bool{"js": true, "jsx": true, "tsx": true}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestListFiltersAndSorts(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/b.jsx":    "b",
		"src/a.jsx":    "a",
		"src/note.txt": "skip me",
		"top.js":       "top",
	})

	files, err := List(root, exts)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "src/a.jsx", files[0].RelPath)
	assert.Equal(t, "src/b.jsx", files[1].RelPath)
	assert.Equal(t, "top.js", files[2].RelPath)
}

func TestListSkipsDefaultIgnores(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/App.jsx":              "x",
		"node_modules/a/b.jsx":     "x",
		"dist/out.js":              "x",
		".git/hooks/pre-commit.js": "x",
	})

	files, err := List(root, exts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/App.jsx", files[0].RelPath)
}

func TestListHonorsIgnoreFile(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/App.jsx":    "x",
		"legacy/Old.jsx": "x",
		".prismignore":   "# custom\nlegacy\n",
	})

	files, err := List(root, exts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/App.jsx", files[0].RelPath)
}

func TestListSkipsEmptyFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/App.jsx":   "x",
		"src/Empty.jsx": "",
	})

	files, err := List(root, exts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/App.jsx", files[0].RelPath)
}
