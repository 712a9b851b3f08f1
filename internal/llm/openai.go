package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIService generates text through the OpenAI chat completions API or any
// compatible endpoint.
type OpenAIService struct {
	client openai.Client
	model  string
}

// NewOpenAIService creates an OpenAI service. baseURL is optional.
func NewOpenAIService(apiKey, model, baseURL string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAIService{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Complete generates a completion for the given messages.
func (s *OpenAIService) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	log.Debug("Requesting completion from OpenAI", "model", s.model, "messages", len(messages))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
	})
	if err != nil {
		genErr := &GenerationError{Provider: ProviderOpenAI, Model: s.model, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.StatusCode
		}
		return "", genErr
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: ProviderOpenAI, Model: s.model, Err: errors.New("no completion returned")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		log.Warn("Completion truncated at token limit", "provider", ProviderOpenAI, "model", s.model)
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

// Provider returns the provider name.
func (s *OpenAIService) Provider() Provider {
	return ProviderOpenAI
}

// ModelName returns the model name.
func (s *OpenAIService) ModelName() string {
	return s.model
}
