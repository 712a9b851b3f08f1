package search

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/index"
	"github.com/nickcecere/recipewriter/internal/observability"
	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Library is a loaded record store and its vector index.
// It is read-only once built and may be shared between requests.
type Library struct {
	Recipes []recipe.Recipe
	Entries []recipe.Entry
	Index   *index.Flat
}

// NewLibrary pairs records with an index built from the same records. The
// index must hold each record's embedding at the record's position; a stale
// index is rejected.
func NewLibrary(recipes []recipe.Recipe, idx *index.Flat) (*Library, error) {
	if idx.Len() != len(recipes) {
		return nil, fmt.Errorf("index holds %d vectors but %d recipes were loaded", idx.Len(), len(recipes))
	}
	if len(recipes) > 0 && idx.Dim() != len(recipes[0].Embedding) {
		return nil, fmt.Errorf("index dimension %d does not match recipe embedding dimension %d", idx.Dim(), len(recipes[0].Embedding))
	}
	for i, r := range recipes {
		if !slices.Equal(idx.Row(i), r.Embedding) {
			return nil, fmt.Errorf("index vector %d does not match the embedding of %q; rebuild the index", i, r.Title)
		}
	}
	return &Library{
		Recipes: recipes,
		Entries: recipe.Entries(recipes),
		Index:   idx,
	}, nil
}

// LoadLibrary reads the embedded recipes file and the binary index built from it.
func LoadLibrary(embeddingsPath, indexPath string) (*Library, error) {
	recipes, err := recipe.Load(embeddingsPath, recipe.LoadOptions{RequireEmbeddings: true})
	if err != nil {
		return nil, err
	}

	idx, err := index.Load(indexPath)
	if err != nil {
		return nil, err
	}

	lib, err := NewLibrary(recipes, idx)
	if err != nil {
		return nil, err
	}

	log.Debug("Loaded library", "recipes", len(recipes), "dim", idx.Dim())
	return lib, nil
}

// Size returns the number of indexed recipes.
func (l *Library) Size() int {
	return len(l.Recipes)
}

// Source supplies the current library. Library may load it; Current only
// reports what is already held and returns nil when nothing is.
type Source interface {
	Library() (*Library, error)
	Current() *Library
}

// Cache loads the library from disk on first use and keeps it until Reload.
// A failed load is not cached; the next call tries again.
type Cache struct {
	embeddingsPath string
	indexPath      string

	mu  sync.Mutex
	lib atomic.Pointer[Library]
}

var _ Source = (*Cache)(nil)

// NewCache creates a cache over the given data files.
func NewCache(embeddingsPath, indexPath string) *Cache {
	return &Cache{embeddingsPath: embeddingsPath, indexPath: indexPath}
}

// Library returns the cached library, loading it if needed.
func (c *Cache) Library() (*Library, error) {
	if lib := c.lib.Load(); lib != nil {
		return lib, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if lib := c.lib.Load(); lib != nil {
		return lib, nil
	}

	lib, err := LoadLibrary(c.embeddingsPath, c.indexPath)
	if err != nil {
		return nil, err
	}
	c.store(lib)
	return lib, nil
}

// Reload reads the data files again and swaps the result in.
// On failure the previous library stays in place.
func (c *Cache) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lib, err := LoadLibrary(c.embeddingsPath, c.indexPath)
	if err != nil {
		return err
	}
	c.store(lib)
	log.Info("Library reloaded", "recipes", lib.Size())
	return nil
}

func (c *Cache) store(lib *Library) {
	c.lib.Store(lib)
	observability.LibraryRecipes.Set(float64(lib.Size()))
}

// Current returns the held library without loading it.
func (c *Cache) Current() *Library {
	return c.lib.Load()
}

// Paths returns the data files the cache reads.
func (c *Cache) Paths() (embeddingsPath, indexPath string) {
	return c.embeddingsPath, c.indexPath
}

// Static is a Source that always returns the same library.
type Static struct {
	Lib *Library
}

// Library returns the wrapped library.
func (s Static) Library() (*Library, error) {
	if s.Lib == nil {
		return nil, fmt.Errorf("no library loaded")
	}
	return s.Lib, nil
}

// Current returns the wrapped library.
func (s Static) Current() *Library {
	return s.Lib
}
