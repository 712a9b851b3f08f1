// Package embeddings turns recipe and query text into vectors.
package embeddings

import (
	"context"
	"fmt"

	"github.com/nickcecere/recipewriter/internal/config"
)

// Provider represents an embedding provider type.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// Service defines the interface for embedding services.
type Service interface {
	// Embed embeds a single recipe text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery embeds a user query. Some models use a different task prefix for queries.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several recipe texts in one request, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector length produced by the model.
	Dimensions() int

	Provider() Provider

	ModelName() string
}

// NewService creates an embedding service based on the configuration.
func NewService(cfg *config.Config) (Service, error) {
	switch Provider(cfg.Embeddings.Provider) {
	case ProviderOllama:
		return NewOllamaService(cfg.Embeddings.Ollama.URL, cfg.Embeddings.Ollama.Model)
	case ProviderOpenAI:
		return NewOpenAIService(
			cfg.Embeddings.OpenAI.APIKey,
			cfg.Embeddings.OpenAI.Model,
			cfg.Embeddings.OpenAI.BaseURL,
			cfg.Embeddings.OpenAI.Dimensions,
		)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embeddings.Provider)
	}
}
