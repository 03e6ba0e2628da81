package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/model"
	"prism/internal/search"
)

func rankedResults(snippetLen int, names ...string) []search.Result {
	out := make([]search.Result, len(names))
	for i, name := range names {
		out[i] = search.Result{
			Record: model.ComponentRecord{
				Name:        name,
				FilePath:    "src/" + name + ".jsx",
				Summary:     name + " is a function component in src/" + name + ".jsx.",
				CodeSnippet: strings.Repeat("x", snippetLen),
			},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return out
}

func TestBuildContextProvenanceOrder(t *testing.T) {
	block, prov := BuildContext(rankedResults(50, "Nav", "Button", "Card"), 0)
	require.Len(t, prov, 3)
	assert.Equal(t, "Nav", prov[0].Name)
	assert.Equal(t, "Button", prov[1].Name)
	assert.Equal(t, "Card", prov[2].Name)
	assert.InDelta(t, 1.0, prov[0].Score, 1e-9)
	assert.Contains(t, block, "src/Nav.jsx")
}

func TestBuildContextMarksTruncation(t *testing.T) {
	block, _ := BuildContext(rankedResults(model.ContextSnippetChars+200, "Big"), 0)
	assert.Contains(t, block, truncatedMark)

	short, _ := BuildContext(rankedResults(10, "Small"), 0)
	assert.NotContains(t, short, truncatedMark)
}

func TestBuildContextNeverDropsRecords(t *testing.T) {
	// A tiny budget shrinks excerpts instead of dropping records.
	results := rankedResults(500, "A", "B", "C", "D", "E")
	block, prov := BuildContext(results, 100)
	require.Len(t, prov, 5)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		assert.Contains(t, block, "src/"+name+".jsx")
	}
	assert.Contains(t, block, truncatedMark)
}

func TestBuildContextRespectsBudget(t *testing.T) {
	results := rankedResults(model.ContextSnippetChars*2, "A", "B", "C")
	budget := 900
	block, _ := BuildContext(results, budget)
	// Excerpt text stays within budget plus per-record markers and
	// headers; each record contributes at most budget/len(results)
	// excerpt characters.
	perRecord := budget / len(results)
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "xxx") {
			assert.LessOrEqual(t, len(strings.TrimSuffix(line, truncatedMark)), perRecord)
		}
	}
}

func TestBuildContextEmpty(t *testing.T) {
	block, prov := BuildContext(nil, 0)
	assert.Empty(t, block)
	assert.Empty(t, prov)
}

func TestBuildPromptContainsQuestionAndContext(t *testing.T) {
	p := buildPrompt("CONTEXT-BLOCK", "which components fetch data?")
	assert.Contains(t, p, "CONTEXT-BLOCK")
	assert.Contains(t, p, "which components fetch data?")
	assert.Less(t, strings.Index(p, "CONTEXT-BLOCK"), strings.Index(p, "which components fetch data?"))
}
