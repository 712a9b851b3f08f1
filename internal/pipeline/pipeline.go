// Package pipeline rebuilds the recipe data files: fetch from the upstream
// source, embed, persist to the catalog and build the search index.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/embeddings"
	"github.com/nickcecere/recipewriter/internal/index"
	"github.com/nickcecere/recipewriter/internal/recipe"
	"github.com/nickcecere/recipewriter/internal/store"
)

// Stage names reported through Progress.
const (
	StageFetch   = "fetch"
	StageEmbed   = "embed"
	StageCatalog = "catalog"
	StageIndex   = "index"
	StageDone    = "done"
)

// Fetcher retrieves the full recipe list from the upstream source.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]recipe.Recipe, error)
}

// Paths locates the files the pipeline writes.
type Paths struct {
	Recipes    string
	Embeddings string
	Index      string
}

// Progress tracks a pipeline run.
type Progress struct {
	Stage     string
	Recipes   int
	Reused    int
	Embedded  int
	StartTime time.Time
}

// ProgressFunc is called to report progress.
type ProgressFunc func(Progress)

// Options configures the pipeline.
type Options struct {
	// BatchSize is the number of recipes per embedding request.
	BatchSize int

	// BatchDelay is the pause between embedding requests.
	BatchDelay time.Duration

	// OnProgress is called whenever the stage or counters change.
	OnProgress ProgressFunc
}

// Result summarizes a completed sync.
type Result struct {
	Recipes  int
	Reused   int
	Embedded int
	Dim      int
	Duration time.Duration
}

// Pipeline runs the rebuild steps. The catalog is optional; without it every
// recipe is embedded and nothing is cached.
type Pipeline struct {
	embedder embeddings.Service
	catalog  store.Store
	paths    Paths
	opts     Options

	progress Progress
	mu       sync.Mutex
}

// New creates a pipeline.
func New(emb embeddings.Service, catalog store.Store, paths Paths, opts Options) *Pipeline {
	return &Pipeline{
		embedder: emb,
		catalog:  catalog,
		paths:    paths,
		opts:     opts,
	}
}

// Progress returns the current progress.
func (p *Pipeline) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Pipeline) update(fn func(*Progress)) {
	p.mu.Lock()
	fn(&p.progress)
	snapshot := p.progress
	p.mu.Unlock()

	if p.opts.OnProgress != nil {
		p.opts.OnProgress(snapshot)
	}
}

// Fetch pulls every recipe from the source and writes the recipes file.
func (p *Pipeline) Fetch(ctx context.Context, src Fetcher) ([]recipe.Recipe, error) {
	p.update(func(pr *Progress) { pr.Stage = StageFetch })

	recipes, err := src.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		recipes[i].Embedding = nil
	}
	if err := recipe.Save(p.paths.Recipes, recipes); err != nil {
		return nil, err
	}

	p.update(func(pr *Progress) { pr.Recipes = len(recipes) })
	log.Info("Fetched recipes", "count", len(recipes), "path", p.paths.Recipes)
	return recipes, nil
}

// Embed attaches an embedding to every recipe and writes the embeddings file.
// Recipes whose content hash is already cached in the catalog for the current
// model reuse that vector when it has the embedder's current width.
func (p *Pipeline) Embed(ctx context.Context, recipes []recipe.Recipe) ([]recipe.Recipe, error) {
	p.update(func(pr *Progress) {
		pr.Stage = StageEmbed
		pr.Recipes = len(recipes)
	})

	model := p.embedder.ModelName()
	hashes := make([]string, len(recipes))
	for i, r := range recipes {
		hashes[i] = recipe.ContentHash(r)
	}

	cached := map[string][]float32{}
	if p.catalog != nil {
		var err error
		cached, err = p.catalog.CachedEmbeddings(model, hashes)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedding cache: %w", err)
		}
	}

	// Cached vectors of another width come from an earlier dimensions setting
	// for the same model and are embedded again.
	width := p.embedder.Dimensions()
	out := make([]recipe.Recipe, len(recipes))
	var missing []int
	stale := 0
	for i, r := range recipes {
		out[i] = r
		if vec, ok := cached[hashes[i]]; ok {
			if width <= 0 || len(vec) == width {
				out[i].Embedding = vec
				continue
			}
			stale++
		}
		out[i].Embedding = nil
		missing = append(missing, i)
	}
	if stale > 0 {
		log.Info("Re-embedding cached vectors of a different width", "count", stale, "width", width)
	}

	reused := len(recipes) - len(missing)
	p.update(func(pr *Progress) { pr.Reused = reused })
	log.Debug("Embedding recipes", "total", len(recipes), "reused", reused, "model", model)

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = recipe.EmbeddingText(recipes[i])
		}

		vectors, err := embeddings.EmbedAll(ctx, p.embedder, texts, embeddings.BatchOptions{
			Size:  p.opts.BatchSize,
			Delay: p.opts.BatchDelay,
			OnBatch: func(done, _ int) {
				p.update(func(pr *Progress) { pr.Embedded = done })
			},
		})
		if err != nil {
			return nil, err
		}

		fresh := make(map[string][]float32, len(missing))
		for j, i := range missing {
			out[i].Embedding = vectors[j]
			fresh[hashes[i]] = vectors[j]
		}

		if p.catalog != nil {
			if err := p.catalog.PutEmbeddings(model, fresh); err != nil {
				log.Warn("Failed to cache embeddings", "error", err)
			}
		}
	}

	if err := recipe.Save(p.paths.Embeddings, out); err != nil {
		return nil, err
	}

	log.Info("Embedded recipes", "count", len(out), "reused", reused, "path", p.paths.Embeddings)
	return out, nil
}

// StoreCatalog replaces the catalog contents with the embedded recipes.
func (p *Pipeline) StoreCatalog(recipes []recipe.Recipe) error {
	if p.catalog == nil {
		return nil
	}
	p.update(func(pr *Progress) { pr.Stage = StageCatalog })

	info := store.EmbeddingInfo{
		Provider: string(p.embedder.Provider()),
		Model:    p.embedder.ModelName(),
	}
	if len(recipes) > 0 {
		info.Dimensions = len(recipes[0].Embedding)
	}

	if err := p.catalog.ReplaceRecipes(recipes, info); err != nil {
		return fmt.Errorf("failed to update catalog: %w", err)
	}
	return nil
}

// BuildIndex builds the search index from embedded recipes and writes it.
func (p *Pipeline) BuildIndex(recipes []recipe.Recipe) (*index.Flat, error) {
	p.update(func(pr *Progress) { pr.Stage = StageIndex })

	idx, err := index.BuildFile(p.paths.Index, recipes)
	if err != nil {
		return nil, err
	}

	log.Info("Built index", "vectors", idx.Len(), "dim", idx.Dim(), "path", p.paths.Index)
	return idx, nil
}

// Sync runs every step in order and stops at the first failure. Files written
// by earlier steps are left in place when a later step fails.
func (p *Pipeline) Sync(ctx context.Context, src Fetcher) (*Result, error) {
	p.mu.Lock()
	p.progress = Progress{StartTime: time.Now()}
	p.mu.Unlock()

	recipes, err := p.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	embedded, err := p.Embed(ctx, recipes)
	if err != nil {
		return nil, err
	}

	if err := p.StoreCatalog(embedded); err != nil {
		return nil, err
	}

	idx, err := p.BuildIndex(embedded)
	if err != nil {
		return nil, err
	}

	final := p.Progress()
	p.update(func(pr *Progress) { pr.Stage = StageDone })

	return &Result{
		Recipes:  len(embedded),
		Reused:   final.Reused,
		Embedded: len(embedded) - final.Reused,
		Dim:      idx.Dim(),
		Duration: time.Since(final.StartTime),
	}, nil
}
