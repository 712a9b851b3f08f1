package cli

import (
	"context"
	"fmt"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/embeddings"
	"github.com/nickcecere/recipewriter/internal/index"
)

// searchCatalogStore runs the k nearest search inside SQLite and applies the
// filter to those results.
func searchCatalogStore(ctx context.Context, cfg *config.Config, emb embeddings.Service, query string, f index.Filter, k int) ([]index.Match, error) {
	st, err := openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	vec, err := emb.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := st.Search(vec, k)
	if err != nil {
		return nil, err
	}

	matches := make([]index.Match, 0, len(results))
	for _, r := range results {
		if !f.Match(r.Recipe) {
			continue
		}
		matches = append(matches, index.Match{Position: r.Position, Distance: r.Distance, Recipe: r.Recipe})
	}
	return matches, nil
}
