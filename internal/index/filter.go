package index

import (
	"fmt"
	"strings"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Filter restricts a search to recipes matching a category and/or tags.
type Filter struct {
	// Category matches when it is a case-insensitive substring of the recipe category.
	Category string `json:"category,omitempty"`

	// Tags matches when any requested tag equals any recipe tag, ignoring case.
	Tags []string `json:"tags,omitempty"`
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.Category == "" && len(f.Tags) == 0
}

// Match reports whether r satisfies the filter.
func (f Filter) Match(r recipe.Recipe) bool {
	if f.Category != "" {
		if !strings.Contains(strings.ToLower(r.Category), strings.ToLower(f.Category)) {
			return false
		}
	}

	if len(f.Tags) > 0 {
		have := make(map[string]struct{}, len(r.Tags))
		for _, t := range r.Tags {
			have[strings.ToLower(t)] = struct{}{}
		}
		for _, want := range f.Tags {
			if _, ok := have[strings.ToLower(want)]; ok {
				return true
			}
		}
		return false
	}

	return true
}

// Match is a recipe returned by a search together with its distance.
// Position refers to the main index, not to any transient sub-index.
type Match struct {
	Position int           `json:"position"`
	Distance float64       `json:"distance"`
	Recipe   recipe.Recipe `json:"recipe"`
}

// Recipes strips matches down to their recipes, keeping order.
func Recipes(matches []Match) []recipe.Recipe {
	out := make([]recipe.Recipe, len(matches))
	for i, m := range matches {
		out[i] = m.Recipe
	}
	return out
}

// FilteredSearch runs a k-NN search restricted by f. With a zero filter it
// delegates to main directly. Otherwise it builds a throwaway index over the
// entries that pass the filter, in their original order, and maps results
// back to the original entries. An empty filter result is not an error.
func FilteredSearch(main *Flat, entries []recipe.Entry, f Filter, query []float32, k int) ([]Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	if f.IsZero() {
		hits, err := main.Search(query, k)
		if err != nil {
			return nil, err
		}
		return resolve(hits, entries)
	}

	var survivors []recipe.Entry
	for _, e := range entries {
		if f.Match(e.Recipe) {
			survivors = append(survivors, e)
		}
	}
	if len(survivors) == 0 {
		return []Match{}, nil
	}

	sub, err := Build(entryRecipes(survivors))
	if err != nil {
		return nil, err
	}

	hits, err := sub.Search(query, min(k, len(survivors)))
	if err != nil {
		return nil, err
	}
	return resolve(hits, survivors)
}

// resolve maps hit positions (relative to list) back to entries.
func resolve(hits []Hit, list []recipe.Entry) ([]Match, error) {
	matches := make([]Match, len(hits))
	for i, h := range hits {
		if h.Position < 0 || h.Position >= len(list) {
			return nil, fmt.Errorf("index position %d has no record (records: %d)", h.Position, len(list))
		}
		e := list[h.Position]
		matches[i] = Match{Position: e.Position, Distance: h.Distance, Recipe: e.Recipe}
	}
	return matches, nil
}

func entryRecipes(entries []recipe.Entry) []recipe.Recipe {
	out := make([]recipe.Recipe, len(entries))
	for i, e := range entries {
		out[i] = e.Recipe
	}
	return out
}
