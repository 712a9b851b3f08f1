package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIDims = 1536

// OpenAIService embeds text through the OpenAI embeddings API or any
// compatible endpoint.
type OpenAIService struct {
	client openai.Client
	model  string
	dims   int

	// shortened is set when the caller asked for fewer dimensions than the
	// model's native size.
	shortened bool
}

// NewOpenAIService creates an OpenAI embedding service. dimensions of 0 uses
// the model's native size.
func NewOpenAIService(apiKey, model, baseURL string, dimensions int) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	s := &OpenAIService{
		client: openai.NewClient(reqOpts...),
		model:  model,
		dims:   dimensions,
	}
	s.shortened = dimensions > 0 && dimensions != GetModelDimensions(model)
	if s.dims == 0 {
		s.dims = GetModelDimensions(model)
	}
	if s.dims == 0 {
		s.dims = defaultOpenAIDims
		log.Debug("Unknown model dimensions, defaulting", "model", model, "dimensions", s.dims)
	}
	return s, nil
}

// Embed embeds a single recipe text.
func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedQuery embeds a query. OpenAI models take no task prefix.
func (s *OpenAIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.Embed(ctx, text)
}

// EmbedBatch embeds several texts in one request.
func (s *OpenAIService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return s.request(ctx, texts)
}

// Dimensions returns the embedding dimensions.
func (s *OpenAIService) Dimensions() int {
	return s.dims
}

// Provider returns the provider name.
func (s *OpenAIService) Provider() Provider {
	return ProviderOpenAI
}

// ModelName returns the model name.
func (s *OpenAIService) ModelName() string {
	return s.model
}

func (s *OpenAIService) request(ctx context.Context, inputs []string) ([][]float32, error) {
	log.Debug("Requesting embeddings from OpenAI", "model", s.model, "count", len(inputs))

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	}
	if s.shortened {
		params.Dimensions = openai.Int(int64(s.dims))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}

	// Items carry their input index and are placed by it.
	vectors := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(vectors) {
			continue
		}
		vec := make([]float32, 0, len(item.Embedding))
		for _, v := range item.Embedding {
			vec = append(vec, float32(v))
		}
		vectors[item.Index] = vec
	}

	if _, err := uniformDims(vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}
