package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/model"
)

func testRecords() []model.ComponentRecord {
	return []model.ComponentRecord{
		{ID: "src/Nav.jsx#Nav", FilePath: "src/Nav.jsx", Name: "Nav", Kind: model.KindFunction, Embedding: []float32{1, 0}},
		{ID: "examples/Demo.jsx#Demo", FilePath: "examples/Demo.jsx", Name: "Demo", Kind: model.KindArrow, Embedding: []float32{0, 1}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, New(testRecords(), 2).Save(path))

	ix, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Dim())
	require.Equal(t, 2, ix.Len())
	assert.Equal(t, "Nav", ix.All()[0].Name)
	assert.False(t, ix.CreatedAt().IsZero())
}

func TestLoadBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `[{"id":"a#A","filePath":"a.jsx","name":"A","kind":"function","summary":"","codeSnippet":"","embedding":[0.5,0.5,0.5]}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	ix, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	// Dim recovered from the first non-empty vector.
	assert.Equal(t, 3, ix.Dim())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNoValidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `{"createdAt":"2026-01-01T00:00:00Z","dim":0,"components":[{"name":"","filePath":""}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDropsInvalidKeepsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `{"components":[{"name":"","filePath":""},{"name":"A","filePath":"a.jsx"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	ix, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFilterPreservesOrder(t *testing.T) {
	ix := New(testRecords(), 2)
	got := ix.Filter(func(rec *model.ComponentRecord) bool { return true })
	require.Len(t, got, 2)
	assert.Equal(t, "Nav", got[0].Name)
	assert.Equal(t, "Demo", got[1].Name)

	none := ix.Filter(func(rec *model.ComponentRecord) bool { return false })
	assert.Empty(t, none)
}
