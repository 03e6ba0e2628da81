package embed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Provider maps one text to one fixed-width vector. All vectors from a
// single provider configuration share a dimension.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Backend selects the embedding implementation, in priority order:
// local Ollama, hosted OpenAI-compatible API, deterministic offline.
type Backend string

const (
	BackendOllama  Backend = "ollama"
	BackendOpenAI  Backend = "openai"
	BackendOffline Backend = "offline"
)

// Config is passed explicitly at construction time; nothing here is
// read from ambient globals at call sites.
type Config struct {
	Backend    Backend
	OllamaURL  string
	Model      string
	OpenAIBase string
	OpenAIKey  string
	// Dim is the offline fallback vector width.
	Dim int
	// Timeout bounds each outbound embedding call.
	Timeout time.Duration
}

const (
	DefaultDim     = 256
	DefaultTimeout = 30 * time.Second
)

// New builds the configured provider.
func New(cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch cfg.Backend {
	case BackendOllama, "":
		return NewOllama(cfg.OllamaURL, cfg.Model, cfg.Timeout), nil
	case BackendOpenAI:
		return NewOpenAI(cfg.OpenAIBase, cfg.OpenAIKey, cfg.Model), nil
	case BackendOffline:
		return NewOffline(cfg.Dim), nil
	}
	return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
}

// All embeds every text with one provider call per item under a
// bounded worker pool, preserving positional alignment regardless of
// completion order. When the provider errors or times out on an item,
// the deterministic fallback vector is substituted for that item only;
// other items still attempt the provider. usedFallback marks the
// substituted positions so callers can keep them out of caches.
func All(ctx context.Context, p Provider, fallback *Offline, texts []string, workers int) (vecs [][]float32, usedFallback []bool) {
	vecs = make([][]float32, len(texts))
	usedFallback = make([]bool, len(texts))
	if len(texts) == 0 {
		return vecs, usedFallback
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > len(texts) {
		workers = len(texts)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(texts) {
					return
				}
				vec, err := p.Embed(ctx, texts[i])
				if err != nil {
					vec = fallback.Vector(texts[i])
					usedFallback[i] = true
				}
				vecs[i] = vec
			}
		}()
	}
	wg.Wait()
	return vecs, usedFallback
}
