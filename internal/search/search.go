package search

import (
	"math"
	"sort"
	"strings"

	"prism/internal/model"
)

// Top-k clamps. The answer path carries a stricter ceiling because
// every retrieved record spends generation context.
const (
	MinK       = 1
	MaxSearchK = 20
	MaxAnswerK = 8
)

// Scope is a named filter over record file paths.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeSamples Scope = "samples"
	ScopeCore    Scope = "core"
)

var sampleSegments = map[string]bool{
	"samples": true, "examples": true, "demo": true, "demos": true, "stories": true,
}

// ParseScope resolves a scope name; unknown names fall back to all.
func ParseScope(name string) Scope {
	switch Scope(strings.ToLower(name)) {
	case ScopeSamples:
		return ScopeSamples
	case ScopeCore:
		return ScopeCore
	}
	return ScopeAll
}

// Match reports whether a record file path belongs to the scope.
func (s Scope) Match(filePath string) bool {
	switch s {
	case ScopeSamples:
		return inSamples(filePath)
	case ScopeCore:
		return !inSamples(filePath)
	}
	return true
}

func inSamples(filePath string) bool {
	for _, seg := range strings.Split(filePath, "/") {
		if sampleSegments[strings.ToLower(seg)] {
			return true
		}
	}
	return false
}

// Result pairs a record with its similarity to the query.
type Result struct {
	Record model.ComponentRecord
	Score  float64
}

// Cosine computes cosine similarity over the common leading dimensions
// of a and b. Mismatched lengths are compared over their shared
// prefix; a zero-norm input yields 0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Retrieve ranks records by similarity to the query vector, strictly
// descending, ties broken by pre-existing index order. Up to k records
// are returned; records is assumed to be scope-filtered already.
func Retrieve(queryVec []float32, records []model.ComponentRecord, k int) []Result {
	results := make([]Result, len(records))
	for i, rec := range records {
		results[i] = Result{Record: rec, Score: Cosine(queryVec, rec.Embedding)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ClampK bounds a requested top-k to [MinK, max].
func ClampK(k, max int) int {
	if k < MinK {
		return MinK
	}
	if k > max {
		return max
	}
	return k
}
