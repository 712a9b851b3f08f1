package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultOllamaURL  = "http://localhost:11434"
	defaultOllamaDims = 768
)

// OllamaService embeds text with a local Ollama server. The reported
// dimensions follow the most recent response, so it starts from a guess for
// unknown models.
type OllamaService struct {
	baseURL string
	model   string
	dims    atomic.Int64
	client  *http.Client
}

type ollamaEmbedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate,omitempty"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaService creates an Ollama embedding service.
func NewOllamaService(baseURL, model string) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	s := &OllamaService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}

	dims := GetModelDimensions(model)
	if dims == 0 {
		dims = defaultOllamaDims
		log.Debug("Unknown model dimensions, defaulting", "model", model, "dimensions", dims)
	}
	s.dims.Store(int64(dims))

	return s, nil
}

// Embed embeds a single recipe text.
func (s *OllamaService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.single(ctx, s.applyPrefix(text, false))
}

// EmbedQuery embeds a query using the model's query prefix.
func (s *OllamaService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.single(ctx, s.applyPrefix(text, true))
}

// EmbedBatch embeds several recipe texts in one request.
func (s *OllamaService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, 0, len(texts))
	for _, text := range texts {
		inputs = append(inputs, s.applyPrefix(text, false))
	}
	return s.request(ctx, inputs)
}

// Dimensions returns the embedding dimensions.
func (s *OllamaService) Dimensions() int {
	return int(s.dims.Load())
}

// Provider returns the provider name.
func (s *OllamaService) Provider() Provider {
	return ProviderOllama
}

// ModelName returns the model name.
func (s *OllamaService) ModelName() string {
	return s.model
}

func (s *OllamaService) applyPrefix(text string, query bool) string {
	return withPrefix(s.model, text, query)
}

func (s *OllamaService) single(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

func (s *OllamaService) request(ctx context.Context, inputs []string) ([][]float32, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: s.model, Input: inputs, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("Requesting embeddings from Ollama", "model", s.model, "count", len(inputs))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama embed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d inputs", len(out.Embeddings), len(inputs))
	}

	dims, err := uniformDims(out.Embeddings)
	if err != nil {
		return nil, err
	}
	s.dims.Store(int64(dims))

	return out.Embeddings, nil
}
