package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTemp(t)
	vec := []float32{0.1, -2.5, 3.75, 0}
	require.NoError(t, c.Put("nomic-embed-text", "Button summary", vec))

	got, ok, err := c.Get("nomic-embed-text", "Button summary")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestGetMiss(t *testing.T) {
	c := openTemp(t)
	_, ok, err := c.Get("nomic-embed-text", "never stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyIncludesModel(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, c.Put("model-a", "same text", []float32{1}))

	_, ok, err := c.Get("model-b", "same text")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplaces(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, c.Put("m", "text", []float32{1, 2}))
	require.NoError(t, c.Put("m", "text", []float32{3, 4, 5}))

	got, ok, err := c.Get("m", "text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{3, 4, 5}, got)
}
