package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaService implements the LLM service using a local Ollama server.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
}

// NewOllamaService creates a new Ollama LLM service.
func NewOllamaService(baseURL, model string) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	return &OllamaService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  newHTTPClient(),
	}, nil
}

// Complete generates a completion for the given messages.
func (s *OllamaService) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	log.Debug("Requesting completion from Ollama", "model", s.model, "messages", len(messages))

	var result ollamaChatResponse
	status, err := postJSON(ctx, s.client, s.baseURL+"/api/chat", nil, ollamaChatRequest{
		Model:    s.model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}, &result)
	if err != nil {
		return "", s.fail(status, err)
	}

	if result.DoneReason == "length" {
		log.Warn("Completion truncated at token limit", "provider", ProviderOllama, "model", s.model)
	}

	content := strings.TrimSpace(result.Message.Content)
	if content == "" {
		return "", s.fail(0, errors.New("empty completion"))
	}
	return content, nil
}

func (s *OllamaService) fail(status int, err error) error {
	return &GenerationError{Provider: ProviderOllama, Model: s.model, StatusCode: status, Err: err}
}

// Provider returns the provider name.
func (s *OllamaService) Provider() Provider {
	return ProviderOllama
}

// ModelName returns the model name.
func (s *OllamaService) ModelName() string {
	return s.model
}
