package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func catalogRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{Title: "Spaghetti Carbonara", Description: "Roman classic", Category: "Italian Main", Tags: []string{"Pasta"}, URL: "https://e.com/1", ImageURL: "https://e.com/1.jpg", Embedding: []float32{1, 0}},
		{Title: "Chana Masala", Description: "Chickpea curry", Category: "Indian", Tags: []string{"Vegan", "Spicy"}, URL: "https://e.com/2", Embedding: []float32{0, 1}},
		{Title: "Penne Arrabbiata", Description: "Spicy tomato", Category: "Italian Main", Tags: []string{"pasta", "spicy"}, URL: "https://e.com/3", Embedding: []float32{0.9, 0.1}},
	}
}

var openaiSmall = EmbeddingInfo{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 2}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "catalog.db")

	st, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	stats, err := st.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Recipes)
	assert.True(t, stats.SyncedAt.IsZero())
}

func TestReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	st, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer st.Close()

	recipes, err := st.ListRecipes()
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
}

func TestReplaceAndListRecipes(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))

	recipes, err := st.ListRecipes()
	require.NoError(t, err)
	assert.Equal(t, catalogRecipes(), recipes)

	stats, err := st.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Recipes)
	assert.Equal(t, 3, stats.CachedEmbeddings)
	assert.Equal(t, openaiSmall, stats.Embedding)
	assert.False(t, stats.SyncedAt.IsZero())
}

func TestReplaceRecipesOverwrites(t *testing.T) {
	st := setupTestStore(t)
	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))

	smaller := catalogRecipes()[1:]
	require.NoError(t, st.ReplaceRecipes(smaller, openaiSmall))

	recipes, err := st.ListRecipes()
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Chana Masala", recipes[0].Title)

	// cache keeps entries for recipes no longer in the catalog
	stats, err := st.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CachedEmbeddings)
}

func TestReplaceRecipesDimensionChange(t *testing.T) {
	st := setupTestStore(t)
	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))

	wide := []recipe.Recipe{{Title: "Wide", Tags: []string{}, Embedding: []float32{1, 2, 3}}}
	info := EmbeddingInfo{Provider: "ollama", Model: "tiny", Dimensions: 3}
	require.NoError(t, st.ReplaceRecipes(wide, info))

	results, err := st.Search([]float32{1, 2, 3}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Wide", results[0].Recipe.Title)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
}

func TestReplaceRecipesValidation(t *testing.T) {
	st := setupTestStore(t)

	bad := catalogRecipes()
	bad[2].Embedding = []float32{1}
	err := st.ReplaceRecipes(bad, openaiSmall)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Penne Arrabbiata")

	_, err = st.ListRecipes()
	require.NoError(t, err)

	err = st.ReplaceRecipes(catalogRecipes(), EmbeddingInfo{Model: "m"})
	assert.Error(t, err)
}

func TestReplaceWithEmptyCatalog(t *testing.T) {
	st := setupTestStore(t)
	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))
	require.NoError(t, st.ReplaceRecipes(nil, openaiSmall))

	recipes, err := st.ListRecipes()
	require.NoError(t, err)
	assert.Empty(t, recipes)

	results, err := st.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch(t *testing.T) {
	st := setupTestStore(t)
	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))

	results, err := st.Search([]float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Position)
	assert.Equal(t, "Spaghetti Carbonara", results[0].Recipe.Title)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.Equal(t, 2, results[1].Position)
	assert.InDelta(t, 0.1414, results[1].Distance, 0.001)
	assert.Equal(t, []string{"pasta", "spicy"}, results[1].Recipe.Tags)
	assert.Nil(t, results[1].Recipe.Embedding)
}

func TestSearchErrors(t *testing.T) {
	st := setupTestStore(t)

	results, err := st.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, st.ReplaceRecipes(catalogRecipes(), openaiSmall))

	_, err = st.Search([]float32{1, 0}, 0)
	assert.Error(t, err)

	_, err = st.Search([]float32{1, 0, 0}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 dimensions")
}

func TestEmbeddingCache(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.PutEmbeddings("m1", map[string][]float32{
		"xxh64:aaaa": {0.5, -1.25},
		"xxh64:bbbb": {2, 4},
	}))
	require.NoError(t, st.PutEmbeddings("m2", map[string][]float32{
		"xxh64:aaaa": {9, 9},
	}))

	found, err := st.CachedEmbeddings("m1", []string{"xxh64:aaaa", "xxh64:cccc", "xxh64:aaaa"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"xxh64:aaaa": {0.5, -1.25}}, found)

	found, err = st.CachedEmbeddings("m2", []string{"xxh64:aaaa", "xxh64:bbbb"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"xxh64:aaaa": {9, 9}}, found)

	// replace
	require.NoError(t, st.PutEmbeddings("m1", map[string][]float32{"xxh64:bbbb": {1, 1}}))
	found, err = st.CachedEmbeddings("m1", []string{"xxh64:bbbb"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, found["xxh64:bbbb"])
}

func TestReplaceRecipesFillsCache(t *testing.T) {
	st := setupTestStore(t)
	recipes := catalogRecipes()
	require.NoError(t, st.ReplaceRecipes(recipes, openaiSmall))

	hash := recipe.ContentHash(recipes[1])
	found, err := st.CachedEmbeddings(openaiSmall.Model, []string{hash})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, found[hash])
}

func TestSerializeEmbedding(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3e-7}
	blob := serializeEmbedding(vec)
	assert.Len(t, blob, 16)
	assert.Equal(t, vec, deserializeEmbedding(blob))
}
