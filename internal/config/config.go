// Package config handles configuration loading and validation for recipewriter.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete recipewriter configuration.
type Config struct {
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Data       DataConfig       `mapstructure:"data"`
	Airtable   AirtableConfig   `mapstructure:"airtable"`
	Server     ServerConfig     `mapstructure:"server"`
	Search     SearchConfig     `mapstructure:"search"`
	Article    ArticleConfig    `mapstructure:"article"`
}

// EmbeddingsConfig configures the embedding service.
type EmbeddingsConfig struct {
	Provider   string            `mapstructure:"provider"`
	Ollama     OllamaEmbedConfig `mapstructure:"ollama"`
	OpenAI     OpenAIEmbedConfig `mapstructure:"openai"`
	BatchSize  int               `mapstructure:"batch_size"`
	BatchDelay time.Duration     `mapstructure:"batch_delay"`
}

// OllamaEmbedConfig configures Ollama embeddings.
type OllamaEmbedConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAIEmbedConfig configures OpenAI embeddings.
type OpenAIEmbedConfig struct {
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig configures the text generation service.
type LLMConfig struct {
	Provider    string          `mapstructure:"provider"`
	Ollama      OllamaLLMConfig `mapstructure:"ollama"`
	OpenAI      OpenAILLMConfig `mapstructure:"openai"`
	Anthropic   AnthropicConfig `mapstructure:"anthropic"`
	Temperature float64         `mapstructure:"temperature"`
	MaxTokens   int             `mapstructure:"max_tokens"`
}

// OllamaLLMConfig configures Ollama LLM.
type OllamaLLMConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAILLMConfig configures OpenAI LLM.
type OpenAILLMConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AnthropicConfig configures Anthropic LLM.
type AnthropicConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// DataConfig locates the persisted data files.
type DataConfig struct {
	RecipesPath    string `mapstructure:"recipes_path"`
	EmbeddingsPath string `mapstructure:"embeddings_path"`
	IndexPath      string `mapstructure:"index_path"`
	CatalogPath    string `mapstructure:"catalog_path"`
}

// AirtableConfig configures the upstream recipe source.
type AirtableConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseID    string `mapstructure:"base_id"`
	TableName string `mapstructure:"table_name"`
	BaseURL   string `mapstructure:"base_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// LogFormat is text, json or logfmt.
	LogFormat string `mapstructure:"log_format"`
}

// SearchConfig configures retrieval.
type SearchConfig struct {
	DefaultCount int `mapstructure:"default_count"`
}

// ArticleConfig configures article generation.
type ArticleConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	PromptsPath string `mapstructure:"prompts_path"`
}

// Global configuration instance
var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Provider: DefaultEmbeddingProvider,
			Ollama: OllamaEmbedConfig{
				URL:   DefaultOllamaURL,
				Model: DefaultOllamaEmbedModel,
			},
			OpenAI: OpenAIEmbedConfig{
				Model: DefaultOpenAIEmbedModel,
			},
			BatchSize:  DefaultEmbedBatchSize,
			BatchDelay: DefaultEmbedBatchDelay,
		},
		LLM: LLMConfig{
			Provider: DefaultLLMProvider,
			Ollama: OllamaLLMConfig{
				URL:   DefaultOllamaURL,
				Model: DefaultOllamaLLMModel,
			},
			OpenAI: OpenAILLMConfig{
				Model: DefaultOpenAILLMModel,
			},
			Anthropic: AnthropicConfig{
				Model: DefaultAnthropicModel,
			},
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Data: DataConfig{
			RecipesPath:    DefaultDataPath(DefaultRecipesFileName),
			EmbeddingsPath: DefaultDataPath(DefaultEmbeddingsFileName),
			IndexPath:      DefaultDataPath(DefaultIndexFileName),
			CatalogPath:    DefaultDataPath(DefaultCatalogFileName),
		},
		Airtable: AirtableConfig{
			TableName: DefaultAirtableTable,
			BaseURL:   DefaultAirtableURL,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			LogFormat:       "text",
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Search: SearchConfig{
			DefaultCount: DefaultCount,
		},
		Article: ArticleConfig{
			Concurrency: DefaultArticleConcurrency,
		},
	}
}

// Load reads configuration from .env, the config file and environment variables.
func Load(configFile string) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Debug("Failed to read .env", "error", err)
	}

	// Set defaults
	setDefaults()

	// Set config file if specified
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		// Also check for .recipewriterrc.yaml in current directory and parents
		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("RECIPEWRITER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config from", "file", viper.ConfigFileUsed())
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	// Load secrets and hosting conventions from plain environment variables
	loadFromEnv()

	return nil
}

// setDefaults sets default values in viper.
func setDefaults() {
	d := DefaultConfig()

	// Embeddings
	viper.SetDefault("embeddings.provider", d.Embeddings.Provider)
	viper.SetDefault("embeddings.ollama.url", d.Embeddings.Ollama.URL)
	viper.SetDefault("embeddings.ollama.model", d.Embeddings.Ollama.Model)
	viper.SetDefault("embeddings.openai.model", d.Embeddings.OpenAI.Model)
	viper.SetDefault("embeddings.batch_size", d.Embeddings.BatchSize)
	viper.SetDefault("embeddings.batch_delay", d.Embeddings.BatchDelay)

	// LLM
	viper.SetDefault("llm.provider", d.LLM.Provider)
	viper.SetDefault("llm.ollama.url", d.LLM.Ollama.URL)
	viper.SetDefault("llm.ollama.model", d.LLM.Ollama.Model)
	viper.SetDefault("llm.openai.model", d.LLM.OpenAI.Model)
	viper.SetDefault("llm.anthropic.model", d.LLM.Anthropic.Model)
	viper.SetDefault("llm.temperature", d.LLM.Temperature)
	viper.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	// Data
	viper.SetDefault("data.recipes_path", d.Data.RecipesPath)
	viper.SetDefault("data.embeddings_path", d.Data.EmbeddingsPath)
	viper.SetDefault("data.index_path", d.Data.IndexPath)
	viper.SetDefault("data.catalog_path", d.Data.CatalogPath)

	// Airtable
	viper.SetDefault("airtable.table_name", d.Airtable.TableName)
	viper.SetDefault("airtable.base_url", d.Airtable.BaseURL)

	// Server
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	viper.SetDefault("server.log_format", d.Server.LogFormat)

	// Search and article
	viper.SetDefault("search.default_count", d.Search.DefaultCount)
	viper.SetDefault("article.concurrency", d.Article.Concurrency)
	viper.SetDefault("article.prompts_path", "")
}

// findRCFile searches for .recipewriterrc.yaml starting from current directory.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, ".recipewriterrc.yaml")
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadFromEnv fills empty settings from conventional environment variables.
func loadFromEnv() {
	setIfEmpty(&cfg.Embeddings.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")

	setIfEmpty(&cfg.Airtable.APIKey, "AIRTABLE_API_KEY")
	setIfEmpty(&cfg.Airtable.BaseID, "AIRTABLE_BASE_ID")
	if name := os.Getenv("AIRTABLE_TABLE_NAME"); name != "" && !viper.InConfig("airtable.table_name") && os.Getenv("RECIPEWRITER_AIRTABLE_TABLE_NAME") == "" {
		cfg.Airtable.TableName = name
	}

	// Hosting platforms hand out the listen port as PORT
	if port := os.Getenv("PORT"); port != "" && !viper.InConfig("server.addr") && os.Getenv("RECIPEWRITER_SERVER_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
}

func setIfEmpty(dst *string, env string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
