// Package search answers free-text recipe queries against a loaded library.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/embeddings"
	"github.com/nickcecere/recipewriter/internal/index"
)

// Searcher embeds queries and runs them against the current library.
type Searcher struct {
	source   Source
	embedder embeddings.Service
}

// New creates a new Searcher.
func New(source Source, emb embeddings.Service) *Searcher {
	return &Searcher{
		source:   source,
		embedder: emb,
	}
}

// Search returns up to k recipes closest to the query that satisfy the filter.
// An empty filter searches the whole library.
func (s *Searcher) Search(ctx context.Context, query string, f index.Filter, k int) ([]index.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	lib, err := s.source.Library()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	log.Debug("Generating query embedding", "query", truncate(query, 50))
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	log.Debug("Searching library", "k", k, "category", f.Category, "tags", f.Tags)
	matches, err := index.FilteredSearch(lib.Index, lib.Entries, f, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	log.Debug("Search complete", "results", len(matches))
	return matches, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
