package rag

import (
	"fmt"
	"strings"

	"prism/internal/model"
	"prism/internal/search"
)

// DefaultContextBudget bounds the total excerpt text placed in one
// generation prompt.
const DefaultContextBudget = 6000

const truncatedMark = "… [truncated]"

// Provenance records where an answer's context came from, in ranked
// order.
type Provenance struct {
	Name  string  `json:"name"`
	File  string  `json:"file"`
	Score float64 `json:"score"`
}

// BuildContext converts ranked results into a bounded context block
// and the matching provenance list. The budget is enforced by
// shrinking per-record excerpts, never by dropping records the
// retrieval engine already selected; each cut excerpt is individually
// marked as truncated.
func BuildContext(results []search.Result, budget int) (string, []Provenance) {
	if len(results) == 0 {
		return "", nil
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	perRecord := model.ContextSnippetChars
	if share := budget / len(results); share < perRecord {
		perRecord = share
	}

	var b strings.Builder
	provenance := make([]Provenance, 0, len(results))
	for i, r := range results {
		rec := r.Record
		fmt.Fprintf(&b, "### %d. %s (%s) — score %.3f\n", i+1, rec.Name, rec.FilePath, r.Score)
		b.WriteString(rec.Summary)
		b.WriteString("\n```jsx\n")
		excerpt := rec.CodeSnippet
		if len(excerpt) > perRecord {
			excerpt = excerpt[:perRecord] + truncatedMark
		}
		b.WriteString(excerpt)
		b.WriteString("\n```\n\n")

		provenance = append(provenance, Provenance{
			Name:  rec.Name,
			File:  rec.FilePath,
			Score: r.Score,
		})
	}
	return b.String(), provenance
}

const answerPreamble = `You are a UI-component knowledge assistant. Answer the question using only the component context below. Reference component names and file paths when relevant. If the context does not contain enough information to answer, say so.`

// buildPrompt assembles the final generation prompt from the context
// block and the user question.
func buildPrompt(contextBlock, question string) string {
	var b strings.Builder
	b.WriteString(answerPreamble)
	b.WriteString("\n\n## Component context\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n## Question\n\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
