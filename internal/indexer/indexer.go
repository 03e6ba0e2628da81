package indexer

import (
	"context"
	"fmt"
	"time"

	"prism/internal/cache"
	"prism/internal/embed"
	"prism/internal/index"
)

// Config holds the indexing run configuration, passed explicitly at
// construction.
type Config struct {
	Root      string
	IndexPath string
	// CachePath locates the sqlite embedding cache; empty disables
	// caching.
	CachePath string
	// CatalogPath receives the deterministic catalog; empty disables it.
	CatalogPath string
	Workers     int
	Embed       embed.Config
}

// Stats reports an indexing run.
type Stats struct {
	FilesWalked  int
	FilesParsed  int
	FilesSkipped int
	Components   int
	Embedded     int
	CacheHits    int
	Fallbacks    int
	Elapsed      time.Duration
}

// Indexer runs the full pipeline: walk, extract, embed, persist.
type Indexer struct {
	cfg      Config
	provider embed.Provider
	fallback *embed.Offline
	cache    *cache.Cache
}

// New creates an Indexer with the given configuration.
func New(cfg Config) (*Indexer, error) {
	provider, err := embed.New(cfg.Embed)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.CachePath != "" {
		c, err = cache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
	}

	return &Indexer{
		cfg:      cfg,
		provider: provider,
		fallback: embed.NewOffline(cfg.Embed.Dim),
		cache:    c,
	}, nil
}

// Run indexes the configured root and replaces the persisted index
// wholesale.
func (ix *Indexer) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	records, stats, err := ix.extractAll()
	if err != nil {
		return nil, err
	}

	dim := ix.embedAll(ctx, records, stats)

	idx := index.New(records, dim)
	if err := idx.Save(ix.cfg.IndexPath); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	if ix.cfg.CatalogPath != "" {
		if err := writeCatalog(ix.cfg.CatalogPath, records, stats); err != nil {
			return nil, fmt.Errorf("write catalog: %w", err)
		}
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// Close releases the embedding cache.
func (ix *Indexer) Close() error {
	if ix.cache != nil {
		return ix.cache.Close()
	}
	return nil
}
