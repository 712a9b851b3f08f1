// Package llm provides text generation services used to write articles.
package llm

import (
	"context"
	"fmt"

	"github.com/nickcecere/recipewriter/internal/config"
)

// Provider represents an LLM provider type.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a single-turn prompt.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// CompletionOptions configures the completion request.
type CompletionOptions struct {
	// Temperature controls randomness (0-1).
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int
}

// DefaultCompletionOptions returns the options articles are written with.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

// OptionsFromConfig returns completion options from configuration, falling back to defaults.
func OptionsFromConfig(cfg *config.Config) CompletionOptions {
	opts := DefaultCompletionOptions()
	if cfg.LLM.Temperature > 0 {
		opts.Temperature = cfg.LLM.Temperature
	}
	if cfg.LLM.MaxTokens > 0 {
		opts.MaxTokens = cfg.LLM.MaxTokens
	}
	return opts
}

// Service generates text. Implementations are safe for concurrent use and
// return a *GenerationError when the provider fails.
type Service interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
	Provider() Provider
	ModelName() string
}

// NewService builds the service selected by llm.provider.
func NewService(cfg *config.Config) (Service, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderOllama:
		return NewOllamaService(cfg.LLM.Ollama.URL, cfg.LLM.Ollama.Model)
	case ProviderOpenAI:
		return NewOpenAIService(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model, cfg.LLM.OpenAI.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicService(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model, cfg.LLM.Anthropic.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
