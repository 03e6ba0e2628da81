package indexer

import (
	"context"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"prism/internal/embed"
	"prism/internal/extract"
	"prism/internal/model"
	"prism/internal/walker"
)

// extractAll walks the root and extracts component records from every
// file in parallel. Extraction is pure per file; results are merged
// back in file order, then finalized with a stable sort by name, so
// the output is deterministic regardless of worker scheduling. Files
// that fail to parse are counted and skipped.
func (ix *Indexer) extractAll() ([]model.ComponentRecord, *Stats, error) {
	files, err := walker.List(ix.cfg.Root, extract.Extensions())
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{FilesWalked: len(files)}
	workers := ix.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	perFile := make([][]model.ComponentRecord, len(files))
	var parsed, skipped atomic.Int64
	var next atomic.Int64
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex := extract.New()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(files) {
					return
				}
				src, err := os.ReadFile(files[i].Path)
				if err != nil {
					skipped.Add(1)
					continue
				}
				recs, err := ex.File(files[i].RelPath, src)
				if err != nil {
					skipped.Add(1)
					continue
				}
				parsed.Add(1)
				perFile[i] = recs
			}
		}()
	}
	wg.Wait()

	var records []model.ComponentRecord
	for _, recs := range perFile {
		records = append(records, recs...)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	stats.FilesParsed = int(parsed.Load())
	stats.FilesSkipped = int(skipped.Load())
	stats.Components = len(records)
	return records, stats, nil
}

// embedAll attaches a vector to every record and returns the
// embedding width. Cached vectors are reused; the rest go to the
// provider one call per item, with the deterministic fallback
// substituted per item on provider failure. Only provider-produced
// vectors enter the cache.
func (ix *Indexer) embedAll(ctx context.Context, records []model.ComponentRecord, stats *Stats) int {
	if len(records) == 0 {
		return 0
	}
	modelName := ix.provider.Model()

	// Cache pass.
	missIdx := make([]int, 0, len(records))
	missTexts := make([]string, 0, len(records))
	for i := range records {
		text := records[i].EmbedText()
		if ix.cache != nil {
			if vec, ok, err := ix.cache.Get(modelName, text); err == nil && ok {
				records[i].Embedding = vec
				stats.CacheHits++
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	// Provider pass for the misses.
	vecs, usedFallback := embed.All(ctx, ix.provider, ix.fallback, missTexts, ix.cfg.Workers)
	for j, i := range missIdx {
		records[i].Embedding = vecs[j]
		if usedFallback[j] {
			stats.Fallbacks++
			continue
		}
		stats.Embedded++
		if ix.cache != nil {
			// Best-effort: a failed cache write only costs a future re-embed.
			_ = ix.cache.Put(modelName, missTexts[j], vecs[j])
		}
	}

	for i := range records {
		if len(records[i].Embedding) > 0 {
			return len(records[i].Embedding)
		}
	}
	return 0
}
