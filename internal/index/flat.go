// Package index provides an exact (flat) Euclidean k-nearest-neighbour index
// over recipe embeddings, plus filtered search through transient sub-indexes.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Flat is an exhaustive L2 index. Row i holds the embedding of the entry at
// position i. A Flat is never mutated after construction.
type Flat struct {
	dim  int
	rows [][]float32
}

// Hit is a single search result.
type Hit struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

// Build constructs an index from recipes in order. Every recipe must carry an
// embedding of the same length as the first one.
func Build(recipes []recipe.Recipe) (*Flat, error) {
	vectors := make([][]float32, len(recipes))
	for i, r := range recipes {
		vectors[i] = r.Embedding
	}
	return BuildVectors(vectors)
}

// BuildVectors constructs an index from raw vectors.
func BuildVectors(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return &Flat{}, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, &DimensionMismatchError{Position: 0, Want: 0, Got: 0}
	}

	rows := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &DimensionMismatchError{Position: i, Want: dim, Got: len(v)}
		}
		rows[i] = v
	}

	return &Flat{dim: dim, rows: rows}, nil
}

// Dim returns the dimensionality of the index, or 0 when empty.
func (f *Flat) Dim() int {
	return f.dim
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.rows)
}

// Row returns the vector stored at position i. The slice must not be modified.
func (f *Flat) Row(i int) []float32 {
	return f.rows[i]
}

// Search returns the k nearest rows to query by Euclidean distance, ascending.
// Equal distances keep ascending position order. When k exceeds the index
// size every row is returned.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if len(f.rows) == 0 {
		return []Hit{}, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dim)
	}

	hits := make([]Hit, len(f.rows))
	for i, row := range f.rows {
		hits[i] = Hit{Position: i, Distance: l2(query, row)}
	}

	// Stable on a position-ordered slice breaks ties by ascending position.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// l2 returns the Euclidean distance between two equal-length vectors.
func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
