package driving

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// RetrievalService answers similarity queries to external actors.
type RetrievalService interface {
	// QuerySimilar returns up to topK stored chunks most similar to text.
	// A non-positive topK fails with domain.ErrInvalidInput. Provider and store
	// failures are *domain.RetrievalError values naming the failed stage.
	QuerySimilar(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error)
}
