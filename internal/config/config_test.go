package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)

	// Embeddings defaults
	assert.Equal(t, DefaultEmbeddingProvider, cfg.Embeddings.Provider)
	assert.Equal(t, DefaultOllamaURL, cfg.Embeddings.Ollama.URL)
	assert.Equal(t, DefaultOllamaEmbedModel, cfg.Embeddings.Ollama.Model)
	assert.Equal(t, DefaultOpenAIEmbedModel, cfg.Embeddings.OpenAI.Model)
	assert.Equal(t, 100, cfg.Embeddings.BatchSize)
	assert.Equal(t, time.Second, cfg.Embeddings.BatchDelay)

	// LLM defaults
	assert.Equal(t, DefaultLLMProvider, cfg.LLM.Provider)
	assert.Equal(t, DefaultOllamaLLMModel, cfg.LLM.Ollama.Model)
	assert.Equal(t, DefaultOpenAILLMModel, cfg.LLM.OpenAI.Model)
	assert.Equal(t, DefaultAnthropicModel, cfg.LLM.Anthropic.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)

	// Service defaults
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Search.DefaultCount)
	assert.Equal(t, 4, cfg.Article.Concurrency)
	assert.Equal(t, DefaultAirtableURL, cfg.Airtable.BaseURL)
}

func TestDefaultPaths(t *testing.T) {
	configDir := DefaultConfigDir()
	dataDir := DefaultDataDir()
	cfg := DefaultConfig()

	assert.Contains(t, configDir, "recipewriter")
	assert.Contains(t, dataDir, "recipewriter")
	assert.Equal(t, filepath.Join(dataDir, "recipes_with_embeddings.json"), cfg.Data.EmbeddingsPath)
	assert.Equal(t, filepath.Join(dataDir, "recipes.idx"), cfg.Data.IndexPath)
	assert.Equal(t, filepath.Join(dataDir, "catalog.db"), cfg.Data.CatalogPath)
}

func TestLoadWithConfigFile(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil
	t.Setenv("PORT", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
embeddings:
  provider: ollama
  ollama:
    url: http://custom:11434
    model: custom-model
  batch_size: 16
  batch_delay: 250ms
llm:
  provider: anthropic
  anthropic:
    model: claude-3-opus-20240229
  temperature: 0.3
data:
  embeddings_path: /srv/data/recipes_with_embeddings.json
  index_path: /srv/data/recipes.idx
airtable:
  base_id: appXYZ
  table_name: Dinners
server:
  addr: ":8080"
search:
  default_count: 7
article:
  concurrency: 2
  prompts_path: /etc/recipewriter/prompts.yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	require.NoError(t, Load(configPath))
	loadedCfg := Get()

	assert.Equal(t, "ollama", loadedCfg.Embeddings.Provider)
	assert.Equal(t, "http://custom:11434", loadedCfg.Embeddings.Ollama.URL)
	assert.Equal(t, "custom-model", loadedCfg.Embeddings.Ollama.Model)
	assert.Equal(t, 16, loadedCfg.Embeddings.BatchSize)
	assert.Equal(t, 250*time.Millisecond, loadedCfg.Embeddings.BatchDelay)
	assert.Equal(t, "anthropic", loadedCfg.LLM.Provider)
	assert.Equal(t, "claude-3-opus-20240229", loadedCfg.LLM.Anthropic.Model)
	assert.Equal(t, 0.3, loadedCfg.LLM.Temperature)
	assert.Equal(t, 2048, loadedCfg.LLM.MaxTokens)
	assert.Equal(t, "/srv/data/recipes_with_embeddings.json", loadedCfg.Data.EmbeddingsPath)
	assert.Equal(t, "/srv/data/recipes.idx", loadedCfg.Data.IndexPath)
	assert.Equal(t, "appXYZ", loadedCfg.Airtable.BaseID)
	assert.Equal(t, "Dinners", loadedCfg.Airtable.TableName)
	assert.Equal(t, ":8080", loadedCfg.Server.Addr)
	assert.Equal(t, 7, loadedCfg.Search.DefaultCount)
	assert.Equal(t, 2, loadedCfg.Article.Concurrency)
	assert.Equal(t, "/etc/recipewriter/prompts.yaml", loadedCfg.Article.PromptsPath)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	viper.Reset()
	cfg = nil

	t.Setenv("RECIPEWRITER_EMBEDDINGS_PROVIDER", "ollama")
	t.Setenv("RECIPEWRITER_LLM_PROVIDER", "anthropic")
	t.Setenv("OPENAI_API_KEY", "test-api-key")
	t.Setenv("ANTHROPIC_API_KEY", "test-anthropic-key")
	t.Setenv("AIRTABLE_API_KEY", "pat-test")
	t.Setenv("AIRTABLE_BASE_ID", "appENV")
	t.Setenv("AIRTABLE_TABLE_NAME", "FromEnv")
	t.Setenv("PORT", "9090")

	require.NoError(t, Load(""))
	loadedCfg := Get()

	assert.Equal(t, "ollama", loadedCfg.Embeddings.Provider)
	assert.Equal(t, "anthropic", loadedCfg.LLM.Provider)
	assert.Equal(t, "test-api-key", loadedCfg.Embeddings.OpenAI.APIKey)
	assert.Equal(t, "test-api-key", loadedCfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "test-anthropic-key", loadedCfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "pat-test", loadedCfg.Airtable.APIKey)
	assert.Equal(t, "appENV", loadedCfg.Airtable.BaseID)
	assert.Equal(t, "FromEnv", loadedCfg.Airtable.TableName)
	assert.Equal(t, ":9090", loadedCfg.Server.Addr)
}

func TestGet(t *testing.T) {
	cfg = nil

	c1 := Get()
	assert.NotNil(t, c1)

	c2 := Get()
	assert.Same(t, c1, c2)
}

func TestGlobalConfigPath(t *testing.T) {
	path := GlobalConfigPath()
	assert.Contains(t, path, "recipewriter")
	assert.Contains(t, path, "config.yaml")
}
