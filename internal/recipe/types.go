// Package recipe provides the recipe record model and the flat-file record store.
package recipe

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Recipe is a single recipe record as synchronized from the upstream source.
// Records are treated as immutable once loaded.
type Recipe struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// HasImage reports whether the recipe carries an image link.
func (r Recipe) HasImage() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}

// HasEmbedding reports whether an embedding has been attached.
func (r Recipe) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// Entry pairs a recipe with its position in the loaded file.
// Positions are dense, 0-based and only stable within one load.
type Entry struct {
	Position int
	Recipe   Recipe
}

// Entries assigns positions to recipes in file order.
func Entries(recipes []Recipe) []Entry {
	entries := make([]Entry, len(recipes))
	for i, r := range recipes {
		entries[i] = Entry{Position: i, Recipe: r}
	}
	return entries
}

// EmbeddingText builds the text sent to the embedding service for a recipe.
func EmbeddingText(r Recipe) string {
	return r.Title + " " + r.Description + " " + strings.Join(r.Tags, " ")
}

// ContentHash returns a stable hash of the embedded text, used to reuse
// embeddings for records whose content has not changed.
func ContentHash(r Recipe) string {
	return fmt.Sprintf("xxh64:%016x", xxhash.Sum64String(EmbeddingText(r)))
}
