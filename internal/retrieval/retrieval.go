// Package retrieval abstracts the context-retrieval capability used by
// ideation: given a query, return the most relevant snippets from the
// brand's knowledge vault.
package retrieval

import (
	"context"
	"sort"
	"strings"
)

// Snippet is one retrieved piece of vault context.
type Snippet struct {
	Text           string  `json:"text"`
	SourceRef      string  `json:"source"`
	RelevanceScore float64 `json:"similarity"`
}

// Retriever returns up to topK snippets relevant to query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error)
}

// Static serves a fixed snippet set ranked by keyword overlap. It stands
// in for a vector search backend in tests and single-node runs.
type Static struct {
	snippets []Snippet
}

// NewStatic builds a Static retriever over the given snippets.
func NewStatic(snippets []Snippet) *Static {
	return &Static{snippets: snippets}
}

// Retrieve ranks the snippet set by word overlap with the query.
func (s *Static) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	if topK <= 0 || len(s.snippets) == 0 {
		return nil, nil
	}

	queryWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 3 {
			queryWords[w] = true
		}
	}

	scored := make([]Snippet, len(s.snippets))
	copy(scored, s.snippets)
	for i := range scored {
		scored[i].RelevanceScore = overlap(queryWords, scored[i].Text)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func overlap(queryWords map[string]bool, text string) float64 {
	if len(queryWords) == 0 {
		return 0
	}
	matched := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if queryWords[w] && !seen[w] {
			matched++
			seen[w] = true
		}
	}
	return float64(matched) / float64(len(queryWords))
}
