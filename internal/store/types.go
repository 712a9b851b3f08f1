// Package store keeps a SQLite catalog of synced recipes, an embedding cache
// keyed by recipe content, and a sqlite-vec index for catalog searches.
package store

import (
	"time"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

// EmbeddingInfo describes the model the catalog vectors came from.
type EmbeddingInfo struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// SearchResult is a catalog recipe with its distance to the query.
type SearchResult struct {
	Position int           `json:"position"`
	Distance float64       `json:"distance"` // Euclidean distance from sqlite-vec
	Recipe   recipe.Recipe `json:"recipe"`
}

// Stats summarises the catalog.
type Stats struct {
	Recipes          int           `json:"recipes"`
	CachedEmbeddings int           `json:"cached_embeddings"`
	Embedding        EmbeddingInfo `json:"embedding"`
	SyncedAt         time.Time     `json:"synced_at"`
}
