package store

import "github.com/nickcecere/recipewriter/internal/recipe"

// Store defines the catalog operations.
type Store interface {
	// ReplaceRecipes replaces the catalog with an embedded recipe snapshot.
	// Every recipe must carry an embedding of info.Dimensions length.
	ReplaceRecipes(recipes []recipe.Recipe, info EmbeddingInfo) error

	// ListRecipes returns the catalog in position order, embeddings included.
	ListRecipes() ([]recipe.Recipe, error)

	// CachedEmbeddings returns cached vectors for the given content hashes.
	// Hashes without an entry for the model are absent from the result.
	CachedEmbeddings(model string, hashes []string) (map[string][]float32, error)

	// PutEmbeddings adds vectors to the cache, replacing existing entries.
	PutEmbeddings(model string, vectors map[string][]float32) error

	// Search returns the k catalog recipes closest to the query.
	Search(query []float32, k int) ([]SearchResult, error)

	// Stats returns catalog statistics.
	Stats() (*Stats, error)

	Close() error
}
