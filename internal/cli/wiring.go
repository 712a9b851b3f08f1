package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickcecere/recipewriter/internal/article"
	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/embeddings"
	"github.com/nickcecere/recipewriter/internal/llm"
	"github.com/nickcecere/recipewriter/internal/pipeline"
	"github.com/nickcecere/recipewriter/internal/query"
	"github.com/nickcecere/recipewriter/internal/search"
	"github.com/nickcecere/recipewriter/internal/store"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openCatalog(cfg *config.Config) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.Data.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return st, nil
}

func newEmbedder(cfg *config.Config) (embeddings.Service, error) {
	emb, err := embeddings.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}
	return emb, nil
}

func newLibraryCache(cfg *config.Config) *search.Cache {
	return search.NewCache(cfg.Data.EmbeddingsPath, cfg.Data.IndexPath)
}

func newAssembler(cfg *config.Config) (*article.Assembler, error) {
	svc, err := llm.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM service: %w", err)
	}

	prompts, err := article.LoadPrompts(cfg.Article.PromptsPath)
	if err != nil {
		return nil, err
	}

	return article.New(svc, prompts,
		article.WithConcurrency(cfg.Article.Concurrency),
		article.WithCompletionOptions(llm.OptionsFromConfig(cfg)),
	)
}

// newQueryService wires retrieval and generation over the given library.
func newQueryService(cfg *config.Config, library search.Source) (*query.Service, error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	assembler, err := newAssembler(cfg)
	if err != nil {
		return nil, err
	}

	return query.NewService(search.New(library, emb), assembler, cfg.Search.DefaultCount), nil
}

func newPipeline(cfg *config.Config, emb embeddings.Service, catalog store.Store, onProgress pipeline.ProgressFunc) *pipeline.Pipeline {
	return pipeline.New(emb, catalog, pipeline.Paths{
		Recipes:    cfg.Data.RecipesPath,
		Embeddings: cfg.Data.EmbeddingsPath,
		Index:      cfg.Data.IndexPath,
	}, pipeline.Options{
		BatchSize:  cfg.Embeddings.BatchSize,
		BatchDelay: cfg.Embeddings.BatchDelay,
		OnProgress: onProgress,
	})
}
