package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicService talks to the Anthropic Messages API.
type AnthropicService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
}

// text joins the text blocks of the response.
func (r anthropicResponse) text() string {
	var sb strings.Builder
	for _, b := range r.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// NewAnthropicService creates an Anthropic service. An empty baseURL targets
// the public API.
func NewAnthropicService(apiKey, model, baseURL string) (*AnthropicService, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &AnthropicService{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  newHTTPClient(),
	}, nil
}

// splitSystem pulls system messages out of the conversation; the Messages API
// takes them as a separate field.
func splitSystem(messages []Message) (string, []anthropicMessage) {
	var system []string
	rest := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return strings.Join(system, "\n\n"), rest
}

// Complete generates a completion for the given messages.
func (s *AnthropicService) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	log.Debug("Requesting completion from Anthropic", "model", s.model, "messages", len(messages))

	system, turns := splitSystem(messages)
	headers := map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var result anthropicResponse
	status, err := postJSON(ctx, s.client, s.baseURL+"/v1/messages", headers, anthropicRequest{
		Model:       s.model,
		Messages:    turns,
		System:      system,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}, &result)
	if err != nil {
		return "", s.fail(status, err)
	}

	if result.StopReason == "max_tokens" {
		log.Warn("Completion truncated at token limit", "provider", ProviderAnthropic, "model", s.model)
	}

	out := result.text()
	if out == "" {
		return "", s.fail(0, errors.New("no content in response"))
	}
	return out, nil
}

func (s *AnthropicService) fail(status int, err error) error {
	return &GenerationError{Provider: ProviderAnthropic, Model: s.model, StatusCode: status, Err: err}
}

// Provider returns the provider name.
func (s *AnthropicService) Provider() Provider {
	return ProviderAnthropic
}

// ModelName returns the model name.
func (s *AnthropicService) ModelName() string {
	return s.model
}
