package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prism/internal/model"
)

// ErrNoIndex is returned when the index file does not exist.
var ErrNoIndex = errors.New("index not found")

// Index is the loaded corpus, immutable for the lifetime of a serving
// process. Rebuilds happen out-of-process and replace the file
// wholesale.
type Index struct {
	createdAt time.Time
	dim       int
	records   []model.ComponentRecord
}

// New wraps finalized records into an index. Used by the indexing
// pipeline before Save.
func New(records []model.ComponentRecord, dim int) *Index {
	return &Index{createdAt: time.Now().UTC(), dim: dim, records: records}
}

// Load reads the persisted index. It accepts both the wrapped document
// {createdAt, dim, components} and a bare array of records. A document
// with no structurally valid record is a fatal load error.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoIndex, path)
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("index file %s is empty", path)
	}

	var doc model.IndexFile
	if err := json.Unmarshal(data, &doc); err != nil || doc.Components == nil {
		// Backward compat: bare array of records.
		var bare []model.ComponentRecord
		if err := json.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("parse index %s: %w", path, err)
		}
		doc = model.IndexFile{Components: bare}
	}

	valid := doc.Components[:0:0]
	for _, rec := range doc.Components {
		if rec.Valid() {
			valid = append(valid, rec)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("index %s contains no valid component records", path)
	}

	dim := doc.Dim
	if dim == 0 {
		for _, rec := range valid {
			if len(rec.Embedding) > 0 {
				dim = len(rec.Embedding)
				break
			}
		}
	}

	return &Index{createdAt: doc.CreatedAt, dim: dim, records: valid}, nil
}

// Save writes the index document atomically next to its final path.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	data, err := json.MarshalIndent(model.IndexFile{
		CreatedAt:  ix.createdAt,
		Dim:        ix.dim,
		Components: ix.records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return os.Rename(tmp, path)
}

// CreatedAt reports when the index was built.
func (ix *Index) CreatedAt() time.Time { return ix.createdAt }

// Dim is the embedding width, 0 when the corpus has no vectors.
func (ix *Index) Dim() int { return ix.dim }

// All returns the full record sequence in stored order. Callers must
// not mutate it.
func (ix *Index) All() []model.ComponentRecord { return ix.records }

// Filter returns the subsequence satisfying pred, preserving order.
func (ix *Index) Filter(pred func(*model.ComponentRecord) bool) []model.ComponentRecord {
	var out []model.ComponentRecord
	for i := range ix.records {
		if pred(&ix.records[i]) {
			out = append(out, ix.records[i])
		}
	}
	return out
}

// Len reports the record count.
func (ix *Index) Len() int { return len(ix.records) }
