package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prism/internal/embed"
	"prism/internal/index"
	"prism/internal/llm"
	"prism/internal/model"
	"prism/internal/search"
)

// ErrEmptyQuery is returned before any backend call when the query
// string is blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// Options tunes the query surface. Zero values pick the defaults.
type Options struct {
	SearchMaxK    int
	AnswerMaxK    int
	ContextBudget int
}

// Engine is the query surface over an immutable loaded index. Safe
// for concurrent use: queries share the index read-only.
type Engine struct {
	idx      *index.Index
	provider embed.Provider
	gen      llm.Generator
	opts     Options
}

// NewEngine wires the loaded index, the embedding provider, and the
// generation backend. gen may be nil when only Search is needed.
func NewEngine(idx *index.Index, provider embed.Provider, gen llm.Generator, opts Options) *Engine {
	if opts.SearchMaxK <= 0 {
		opts.SearchMaxK = search.MaxSearchK
	}
	if opts.AnswerMaxK <= 0 {
		opts.AnswerMaxK = search.MaxAnswerK
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = DefaultContextBudget
	}
	return &Engine{idx: idx, provider: provider, gen: gen, opts: opts}
}

// Index exposes the loaded corpus to read-only consumers.
func (e *Engine) Index() *index.Index { return e.idx }

// SearchResponse is a ranked result page plus the post-filter,
// pre-ranking pool size.
type SearchResponse struct {
	Results []search.Result
	Pool    int
}

// Search embeds the query and ranks the scoped pool. A query-time
// embedding failure aborts the request: substituting the offline
// fallback here would produce scores incomparable with the corpus.
func (e *Engine) Search(ctx context.Context, query string, scope search.Scope, topK int) (*SearchResponse, error) {
	return e.search(ctx, query, scope, topK, e.opts.SearchMaxK)
}

func (e *Engine) search(ctx context.Context, query string, scope search.Scope, topK, maxK int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	k := search.ClampK(topK, maxK)

	pool := e.idx.Filter(func(rec *model.ComponentRecord) bool {
		return scope.Match(rec.FilePath)
	})

	vec, err := e.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return &SearchResponse{
		Results: search.Retrieve(vec, pool, k),
		Pool:    len(pool),
	}, nil
}

// AnswerResponse is a synthesized answer with its provenance.
type AnswerResponse struct {
	Answer  string
	Sources []Provenance
	Pool    int
}

// Answer retrieves under the stricter answer clamp, assembles bounded
// context, and calls the generation backend. Generation failures are
// surfaced, not retried.
func (e *Engine) Answer(ctx context.Context, query string, scope search.Scope, topK int) (*AnswerResponse, error) {
	if e.gen == nil {
		return nil, errors.New("no generation backend configured")
	}
	resp, err := e.search(ctx, query, scope, topK, e.opts.AnswerMaxK)
	if err != nil {
		return nil, err
	}

	contextBlock, sources := BuildContext(resp.Results, e.opts.ContextBudget)
	answer, err := e.gen.Generate(ctx, buildPrompt(contextBlock, query))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &AnswerResponse{Answer: answer, Sources: sources, Pool: resp.Pool}, nil
}
