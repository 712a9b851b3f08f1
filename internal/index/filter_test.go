package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

func scenarioRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{Title: "R1", Category: "Italian", Tags: []string{"pasta"}, Embedding: []float32{1, 0}},
		{Title: "R2", Category: "Mexican", Tags: []string{"spicy"}, Embedding: []float32{0, 1}},
		{Title: "R3", Category: "Italian", Tags: []string{"dessert"}, Embedding: []float32{0.9, 0.1}},
	}
}

func setupScenario(t *testing.T) (*Flat, []recipe.Entry) {
	t.Helper()
	recipes := scenarioRecipes()
	idx, err := Build(recipes)
	require.NoError(t, err)
	return idx, recipe.Entries(recipes)
}

func titles(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Recipe.Title
	}
	return out
}

func TestFilteredSearchCategory(t *testing.T) {
	idx, entries := setupScenario(t)

	matches, err := FilteredSearch(idx, entries, Filter{Category: "italian"}, []float32{1, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"R1", "R3"}, titles(matches))
	assert.Zero(t, matches[0].Distance)
	assert.InDelta(t, 0.1414, matches[1].Distance, 0.001)
	assert.Equal(t, 2, matches[1].Position, "positions refer to the main index")
}

func TestFilteredSearchCategorySubstring(t *testing.T) {
	recipes := []recipe.Recipe{
		{Title: "Lasagne", Category: "Italian Main Courses", Embedding: []float32{1, 0}},
		{Title: "Mole", Category: "Mexican", Embedding: []float32{0, 1}},
	}
	idx, err := Build(recipes)
	require.NoError(t, err)

	matches, err := FilteredSearch(idx, recipe.Entries(recipes), Filter{Category: "ITALIAN"}, []float32{0, 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lasagne"}, titles(matches))
}

func TestFilteredSearchTags(t *testing.T) {
	idx, entries := setupScenario(t)

	t.Run("case-insensitive", func(t *testing.T) {
		matches, err := FilteredSearch(idx, entries, Filter{Tags: []string{"SPICY"}}, []float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"R2"}, titles(matches))
	})

	t.Run("any requested tag", func(t *testing.T) {
		matches, err := FilteredSearch(idx, entries, Filter{Tags: []string{"dessert", "spicy"}}, []float32{0, 1}, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"R2", "R3"}, titles(matches))
	})

	t.Run("category and tags combine with AND", func(t *testing.T) {
		matches, err := FilteredSearch(idx, entries, Filter{Category: "italian", Tags: []string{"spicy"}}, []float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestFilterVeganTag(t *testing.T) {
	r := recipe.Recipe{Tags: []string{"Vegan"}}
	assert.True(t, Filter{Tags: []string{"vegan"}}.Match(r))
	assert.False(t, Filter{Tags: []string{"vegetarian"}}.Match(r))
}

func TestFilteredSearchNoMatches(t *testing.T) {
	idx, entries := setupScenario(t)

	matches, err := FilteredSearch(idx, entries, Filter{Category: "klingon"}, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestFilteredSearchZeroFilterMatchesMainIndex(t *testing.T) {
	recipes := randomRecipes(t, 30, 5, 3)
	idx, err := Build(recipes)
	require.NoError(t, err)
	entries := recipe.Entries(recipes)

	query := []float32{0.2, 0.4, 0.6, 0.8, 1.0}
	for _, k := range []int{1, 7, 30, 100} {
		hits, err := idx.Search(query, k)
		require.NoError(t, err)

		matches, err := FilteredSearch(idx, entries, Filter{}, query, k)
		require.NoError(t, err)
		require.Len(t, matches, len(hits))

		for i := range hits {
			assert.Equal(t, hits[i].Position, matches[i].Position)
			assert.Equal(t, hits[i].Distance, matches[i].Distance)
		}
	}
}

func TestFilteredSearchKClampedToSurvivors(t *testing.T) {
	idx, entries := setupScenario(t)

	matches, err := FilteredSearch(idx, entries, Filter{Category: "mexican"}, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFilteredSearchInvalidK(t *testing.T) {
	idx, entries := setupScenario(t)

	_, err := FilteredSearch(idx, entries, Filter{Category: "italian"}, []float32{1, 0}, 0)
	assert.Error(t, err)
}

func TestRecipes(t *testing.T) {
	idx, entries := setupScenario(t)
	matches, err := FilteredSearch(idx, entries, Filter{}, []float32{0, 1}, 1)
	require.NoError(t, err)

	recipes := Recipes(matches)
	require.Len(t, recipes, 1)
	assert.Equal(t, "R2", recipes[0].Title)
}
