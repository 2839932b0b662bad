// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"

	geminiembed "github.com/custodia-labs/studymate/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/studymate/internal/adapters/driven/embedding/guard"
	hashingembed "github.com/custodia-labs/studymate/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/studymate/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/studymate/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// NewEmbeddingService returns the configured provider, built lazily on first
// use and guarded on every call by timeout, rate limit, circuit breaker and
// parallel batching.
func NewEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: %w: embedding provider %q",
			domain.ErrConfiguration, domain.ErrUnsupportedType, settings.Provider)
	}

	lazy := guard.Lazy(func(ctx context.Context) (driven.EmbeddingService, error) {
		return CreateEmbeddingService(ctx, &settings)
	}, modelName(&settings), dimensions(&settings))

	return guard.New(lazy,
		guard.WithTimeout(settings.Timeout),
		guard.WithBatchSize(settings.BatchSize),
		guard.WithConcurrency(settings.Concurrency),
		guard.WithRateLimit(settings.RequestsPerSecond, max(1, settings.Concurrency)),
	), nil
}

// CreateEmbeddingService creates the bare provider adapter for settings.
// Missing credentials and unknown providers fail with a fatal embedding error.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashingembed.NewEmbeddingService(hashingembed.Config{
			Dimensions: dimensions(settings),
		})

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Endpoint:   settings.BaseURL,
			Dimensions: dimensions(settings),
		})

	default:
		return nil, domain.NewEmbeddingError(
			fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider), false)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: dimensions(settings),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: settings.Dimensions,
	})
}

// modelName returns the configured model or the provider default.
func modelName(settings *domain.EmbeddingSettings) string {
	if settings.Model != "" {
		return settings.Model
	}
	return domain.DefaultEmbeddingModels()[settings.Provider]
}

// dimensions returns the explicit dimension, the known model dimension,
// or 0 to let the adapter decide.
func dimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[modelName(settings)]
}
