package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/ports/driving"
	"github.com/custodia-labs/studymate/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds query text and ranks stored chunks against it.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
	}
}

// QuerySimilar returns up to topK stored chunks most similar to text.
// Blank text yields no results without contacting the provider.
func (s *RetrievalService) QuerySimilar(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	logger.Section("Query")
	logger.Debug("Query: %q, top_k: %d", text, topK)

	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if strings.TrimSpace(text) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{text})
	if err == nil && len(vectors) != 1 {
		err = domain.NewEmbeddingError(fmt.Errorf("got %d vectors for 1 text", len(vectors)), false)
	}
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, &domain.RetrievalError{Stage: domain.RetrievalStageEmbed, Err: err}
	}

	scored, err := s.store.Query(ctx, vectors[0], topK)
	if err != nil {
		logger.Warn("Store query failed: %v", err)
		return nil, &domain.RetrievalError{Stage: domain.RetrievalStageStore, Err: err}
	}

	results := make([]domain.RetrievalResult, len(scored))
	for i, se := range scored {
		results[i] = domain.RetrievalResult{
			Text:       se.Entry.Text,
			Metadata:   se.Entry.Metadata,
			Similarity: se.Similarity,
		}
	}
	logger.Debug("Results: %d", len(results))
	return results, nil
}
