package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Truncation caps. These serve different budgets (storage, embedding
// cost, generation-context cost) and must stay independent.
const (
	// SnippetMaxLines and SnippetMaxChars bound the stored code snippet
	// at extraction time.
	SnippetMaxLines = 200
	SnippetMaxChars = 1200
	// EmbedSnippetChars bounds the snippet prefix included in the text
	// sent to the embedding backend.
	EmbedSnippetChars = 400
	// ContextSnippetChars bounds the per-component excerpt placed in the
	// generation prompt.
	ContextSnippetChars = 700
)

// ComponentKind is the recognition rule a component was extracted by.
type ComponentKind string

const (
	KindFunction ComponentKind = "function"
	KindArrow    ComponentKind = "arrow"
	KindClass    ComponentKind = "class"
)

// ComponentRecord describes one recognized UI-component declaration.
// Records are immutable once built; re-indexing replaces them wholesale.
type ComponentRecord struct {
	ID               string        `json:"id"`
	FilePath         string        `json:"filePath"`
	Name             string        `json:"name"`
	Kind             ComponentKind `json:"kind"`
	Props            []string      `json:"props,omitempty"`
	Hooks            []string      `json:"hooks,omitempty"`
	Uses             []string      `json:"uses,omitempty"`
	Imports          []string      `json:"imports,omitempty"`
	Exports          []string      `json:"exports,omitempty"`
	Patterns         []string      `json:"patterns,omitempty"`
	HasErrorBoundary bool          `json:"hasErrorBoundary,omitempty"`
	Summary          string        `json:"summary"`
	CodeSnippet      string        `json:"codeSnippet"`
	Embedding        []float32     `json:"embedding,omitempty"`
}

// IndexFile is the persisted index document.
type IndexFile struct {
	CreatedAt  time.Time         `json:"createdAt"`
	Dim        int               `json:"dim"`
	Components []ComponentRecord `json:"components"`
}

// RecordID derives the stable record key from file path and name.
func RecordID(filePath, name string) string {
	return filePath + "#" + name
}

// Valid reports whether a record is structurally usable: an index load
// fails only when no record in the document passes this check.
func (c *ComponentRecord) Valid() bool {
	return c.Name != "" && c.FilePath != ""
}

// BuildSummary produces the deterministic one-line digest of a record.
// Field order is fixed: kind/file, props, hooks, uses, patterns,
// error-boundary flag. Sets are sorted so equal records always yield
// byte-identical summaries.
func (c *ComponentRecord) BuildSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s component in %s.", c.Name, c.Kind, c.FilePath)
	if len(c.Props) > 0 {
		fmt.Fprintf(&b, " Props: %s.", joinSorted(c.Props))
	}
	if len(c.Hooks) > 0 {
		fmt.Fprintf(&b, " Hooks: %s.", joinSorted(c.Hooks))
	}
	if len(c.Uses) > 0 {
		fmt.Fprintf(&b, " Renders: %s.", joinSorted(c.Uses))
	}
	if len(c.Patterns) > 0 {
		fmt.Fprintf(&b, " Patterns: %s.", joinSorted(c.Patterns))
	}
	if c.HasErrorBoundary {
		b.WriteString(" Acts as an error boundary.")
	}
	return b.String()
}

// EmbedText is the string embedded for a record during indexing: the
// summary plus a capped prefix of the code snippet. Query strings are
// embedded raw; both sides must use the same backend configuration to
// stay comparable.
func (c *ComponentRecord) EmbedText() string {
	snippet := c.CodeSnippet
	if len(snippet) > EmbedSnippetChars {
		snippet = snippet[:EmbedSnippetChars]
	}
	if snippet == "" {
		return c.Summary
	}
	return c.Summary + "\n" + snippet
}

func joinSorted(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
