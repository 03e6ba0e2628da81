package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/embed"
	"prism/internal/index"
	"prism/internal/model"
	"prism/internal/search"
)

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	fb := embed.NewOffline(32)
	recs := []model.ComponentRecord{
		{ID: "src/Button.jsx#Button", FilePath: "src/Button.jsx", Name: "Button", Kind: model.KindArrow, Summary: "Button is an arrow component in src/Button.jsx.", CodeSnippet: "const Button = () => <button/>;"},
		{ID: "src/Nav.jsx#Nav", FilePath: "src/Nav.jsx", Name: "Nav", Kind: model.KindFunction, Summary: "Nav is a function component in src/Nav.jsx.", CodeSnippet: "function Nav() { return <a/>; }"},
		{ID: "examples/Demo.jsx#Demo", FilePath: "examples/Demo.jsx", Name: "Demo", Kind: model.KindFunction, Summary: "Demo is a function component in examples/Demo.jsx.", CodeSnippet: "function Demo() { return <div/>; }"},
	}
	for i := range recs {
		recs[i].Embedding = fb.Vector(recs[i].EmbedText())
	}
	return index.New(recs, 32)
}

// fakeGen records the prompt and returns a canned answer.
type fakeGen struct {
	prompt string
	err    error
}

func (g *fakeGen) Model() string { return "fake" }

func (g *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return "canned answer", nil
}

// failingProvider always errors, standing in for a dead backend.
type failingProvider struct{}

func (failingProvider) Model() string { return "dead" }

func (failingProvider) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	engine := NewEngine(testIndex(t), failingProvider{}, nil, Options{})
	// Validation happens before any backend call: the dead provider
	// must never be reached.
	_, err := engine.Search(context.Background(), "   ", search.ScopeAll, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchQueryEmbeddingFailureAborts(t *testing.T) {
	engine := NewEngine(testIndex(t), failingProvider{}, nil, Options{})
	_, err := engine.Search(context.Background(), "button", search.ScopeAll, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearchExactMatchRanksFirst(t *testing.T) {
	idx := testIndex(t)
	engine := NewEngine(idx, embed.NewOffline(32), nil, Options{})

	// Querying with a record's own embed text makes its fallback
	// vector identical to the stored one.
	target := idx.All()[0]
	resp, err := engine.Search(context.Background(), target.EmbedText(), search.ScopeAll, 3)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, target.Name, resp.Results[0].Record.Name)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-6)
	assert.Equal(t, 3, resp.Pool)
}

func TestSearchScopeNarrowsPool(t *testing.T) {
	engine := NewEngine(testIndex(t), embed.NewOffline(32), nil, Options{})

	resp, err := engine.Search(context.Background(), "demo", search.ScopeSamples, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pool)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Demo", resp.Results[0].Record.Name)

	resp, err = engine.Search(context.Background(), "demo", search.ScopeCore, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pool)
	for _, r := range resp.Results {
		assert.NotEqual(t, "Demo", r.Record.Name)
	}
}

func TestSearchClampsOversizedK(t *testing.T) {
	engine := NewEngine(testIndex(t), embed.NewOffline(32), nil, Options{})
	resp, err := engine.Search(context.Background(), "anything", search.ScopeAll, 100)
	require.NoError(t, err)
	// Clamped, then bounded by the pool: not padded, not errored.
	assert.Len(t, resp.Results, 3)
}

func TestAnswerGroundsPromptAndReturnsProvenance(t *testing.T) {
	gen := &fakeGen{}
	engine := NewEngine(testIndex(t), embed.NewOffline(32), gen, Options{})

	resp, err := engine.Answer(context.Background(), "what renders a button?", search.ScopeAll, 2)
	require.NoError(t, err)
	assert.Equal(t, "canned answer", resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.Contains(t, gen.prompt, "what renders a button?")
	assert.Contains(t, gen.prompt, resp.Sources[0].File)
}

func TestAnswerGenerationFailureSurfaced(t *testing.T) {
	gen := &fakeGen{err: fmt.Errorf("model not loaded")}
	engine := NewEngine(testIndex(t), embed.NewOffline(32), gen, Options{})
	_, err := engine.Answer(context.Background(), "anything", search.ScopeAll, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestAnswerWithoutGenerator(t *testing.T) {
	engine := NewEngine(testIndex(t), embed.NewOffline(32), nil, Options{})
	_, err := engine.Answer(context.Background(), "anything", search.ScopeAll, 2)
	assert.Error(t, err)
}
