package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/ui"
)

var configShowPath bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Display current configuration settings and config file locations.
API keys are shown only as set or unset.

Examples:
  # Show current configuration
  recipewriter config

  # Show config file paths
  recipewriter config --path`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "show config file paths")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if configShowPath {
		fmt.Println(ui.SectionTitle.Render("Configuration Paths"))
		fmt.Println()
		fmt.Printf("Global config: %s\n", config.GlobalConfigPath())
		fmt.Printf("Local config:  .recipewriterrc.yaml (searched from cwd upward)\n")
		fmt.Printf("Active config: %s\n", config.ConfigFilePath())
		fmt.Printf("Data dir:      %s\n", config.DefaultDataDir())
		return nil
	}

	fmt.Println(ui.SectionTitle.Render("Current Configuration"))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Embeddings:"))
	fmt.Printf("  Provider: %s\n", cfg.Embeddings.Provider)
	fmt.Printf("  Ollama: %s (%s)\n", cfg.Embeddings.Ollama.Model, cfg.Embeddings.Ollama.URL)
	fmt.Printf("  OpenAI Model: %s\n", cfg.Embeddings.OpenAI.Model)
	if cfg.Embeddings.OpenAI.BaseURL != "" {
		fmt.Printf("  OpenAI Base URL: %s\n", cfg.Embeddings.OpenAI.BaseURL)
	}
	fmt.Printf("  OpenAI API Key: %s\n", keyState(cfg.Embeddings.OpenAI.APIKey))
	fmt.Printf("  Batch: %d every %s\n", cfg.Embeddings.BatchSize, cfg.Embeddings.BatchDelay)
	fmt.Println()

	fmt.Println(ui.Bold.Render("LLM:"))
	fmt.Printf("  Provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("  Ollama: %s (%s)\n", cfg.LLM.Ollama.Model, cfg.LLM.Ollama.URL)
	fmt.Printf("  OpenAI Model: %s\n", cfg.LLM.OpenAI.Model)
	fmt.Printf("  Anthropic Model: %s\n", cfg.LLM.Anthropic.Model)
	fmt.Printf("  Anthropic API Key: %s\n", keyState(cfg.LLM.Anthropic.APIKey))
	fmt.Printf("  Temperature: %.2f, Max Tokens: %d\n", cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Airtable:"))
	fmt.Printf("  Base ID: %s\n", cfg.Airtable.BaseID)
	fmt.Printf("  Table: %s\n", cfg.Airtable.TableName)
	fmt.Printf("  API Key: %s\n", keyState(cfg.Airtable.APIKey))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Data:"))
	fmt.Printf("  Recipes: %s\n", cfg.Data.RecipesPath)
	fmt.Printf("  Embeddings: %s\n", cfg.Data.EmbeddingsPath)
	fmt.Printf("  Index: %s\n", cfg.Data.IndexPath)
	fmt.Printf("  Catalog: %s\n", cfg.Data.CatalogPath)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Server:"))
	fmt.Printf("  Address: %s\n", cfg.Server.Addr)
	fmt.Printf("  Shutdown Timeout: %s\n", cfg.Server.ShutdownTimeout)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Articles:"))
	fmt.Printf("  Default Count: %d\n", cfg.Search.DefaultCount)
	fmt.Printf("  Concurrency: %d\n", cfg.Article.Concurrency)
	if cfg.Article.PromptsPath != "" {
		fmt.Printf("  Prompts: %s\n", cfg.Article.PromptsPath)
	}

	return nil
}

func keyState(key string) string {
	if key == "" {
		return ui.Warning.Render("unset")
	}
	return ui.Success.Render("set")
}
