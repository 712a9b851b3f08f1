package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values
const (
	// Embedding defaults
	DefaultEmbeddingProvider = "openai"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultOllamaEmbedModel  = "nomic-embed-text"
	DefaultOpenAIEmbedModel  = "text-embedding-3-small"
	DefaultEmbedBatchSize    = 100
	DefaultEmbedBatchDelay   = time.Second

	// LLM defaults
	DefaultLLMProvider    = "openai"
	DefaultOllamaLLMModel = "llama3"
	DefaultOpenAILLMModel = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-haiku-20240307"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2048

	// Airtable defaults
	DefaultAirtableURL   = "https://api.airtable.com/v0"
	DefaultAirtableTable = "Recipes"

	// Server defaults
	DefaultServerAddr      = ":5000"
	DefaultShutdownTimeout = 30 * time.Second

	// Search and article defaults
	DefaultCount              = 5
	DefaultArticleConcurrency = 4

	// Data file names
	DefaultRecipesFileName    = "recipes.json"
	DefaultEmbeddingsFileName = "recipes_with_embeddings.json"
	DefaultIndexFileName      = "recipes.idx"
	DefaultCatalogFileName    = "catalog.db"
)

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/recipewriter"
	}
	return filepath.Join(home, ".config", "recipewriter")
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/recipewriter"
	}
	return filepath.Join(home, ".local", "share", "recipewriter")
}

// DefaultDataPath returns the default path of a data file.
func DefaultDataPath(name string) string {
	return filepath.Join(DefaultDataDir(), name)
}
