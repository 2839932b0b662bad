// Package gemini provides an embedding service adapter using Google Generative AI.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/studymate/internal/adapters/driven/embedding"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const provider = "gemini"

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is required")

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Endpoint overrides the API endpoint. Empty uses the SDK default.
	Endpoint string

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// batchFunc embeds texts in one round trip.
type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbeddingService generates embeddings using the Gemini embedding API.
type EmbeddingService struct {
	client     *genai.Client
	model      string
	dimensions int
	batch      batchFunc
}

// NewEmbeddingService creates a new Gemini embedding service.
// A missing API key is a fatal embedding error.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, embedding.Fatal(provider, ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, classify(fmt.Errorf("create client: %w", err))
	}

	s := &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
	s.batch = s.batchEmbed
	return s, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts with BatchEmbedContents.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	embeddings, err := s.batch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, embedding.Fatal(provider, fmt.Errorf("expected %d embeddings, got %d",
			len(texts), len(embeddings)))
	}
	return embeddings, nil
}

func (s *EmbeddingService) batchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(s.model)
	b := em.NewBatch()
	for _, text := range texts {
		b.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, classify(fmt.Errorf("batch embed: %w", err))
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, embedding.Fatal(provider, fmt.Errorf("no embedding returned for text %d", i))
		}
		embeddings[i] = e.Values
	}
	return embeddings, nil
}

// classify maps SDK errors onto retryable and fatal embedding errors.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return embedding.StatusError(provider, apiErr.Code, []byte(apiErr.Message))
	}
	return embedding.TransportError(provider, err)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the model exists and the key is accepted.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.EmbeddingModel(s.model).Info(ctx); err != nil {
		return classify(fmt.Errorf("ping failed: %w", err))
	}
	return nil
}

// Close releases the SDK client.
func (s *EmbeddingService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
