package embed

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineDeterministic(t *testing.T) {
	o := NewOffline(64)
	a := o.Vector("Button is a function component in src/Button.jsx.")
	b := o.Vector("Button is a function component in src/Button.jsx.")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestOfflineDifferentStringsDiffer(t *testing.T) {
	o := NewOffline(64)
	a := o.Vector("Button component")
	b := o.Vector("Navigation bar")
	assert.NotEqual(t, a, b)
}

func TestOfflineDefaultDim(t *testing.T) {
	o := NewOffline(0)
	assert.Len(t, o.Vector("x"), DefaultDim)
}

// flaky fails on texts containing "fail" and succeeds otherwise.
type flaky struct {
	calls atomic.Int64
}

func (f *flaky) Model() string { return "flaky" }

func (f *flaky) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if strings.Contains(text, "fail") {
		return nil, errors.New("backend unavailable")
	}
	return []float32{1, 2, 3}, nil
}

func TestAllPreservesAlignment(t *testing.T) {
	p := &flaky{}
	fb := NewOffline(8)
	texts := []string{"alpha", "fail-me", "gamma", "delta"}

	vecs, usedFallback := All(context.Background(), p, fb, texts, 3)
	require.Len(t, vecs, 4)

	assert.Equal(t, []float32{1, 2, 3}, vecs[0])
	assert.Equal(t, fb.Vector("fail-me"), vecs[1])
	assert.Equal(t, []float32{1, 2, 3}, vecs[2])
	assert.Equal(t, []float32{1, 2, 3}, vecs[3])

	assert.Equal(t, []bool{false, true, false, false}, usedFallback)
	// Fallback is per-item: every text still attempted the provider.
	assert.Equal(t, int64(4), p.calls.Load())
}

func TestAllEmptyInput(t *testing.T) {
	vecs, usedFallback := All(context.Background(), &flaky{}, NewOffline(8), nil, 4)
	assert.Empty(t, vecs)
	assert.Empty(t, usedFallback)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewOfflineBackend(t *testing.T) {
	p, err := New(Config{Backend: BackendOffline, Dim: 16})
	require.NoError(t, err)
	vec, err := p.Embed(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, 16)
}
