package driven

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// VectorStore is an append-only collection of embedded chunks that answers
// cosine-similarity nearest-neighbour queries.
//
// Every entry in a store shares one vector dimension, fixed by the first Add
// after the store was created or cleared.
type VectorStore interface {
	// Add validates the batch, assigns each chunk a fresh unique id and
	// appends it. The batch is committed entirely or not at all.
	// Failures match domain.ErrStoreWrite or domain.ErrInvalidInput.
	// An empty batch is a no-op.
	Add(ctx context.Context, chunks []domain.EmbeddedChunk) ([]domain.IndexEntry, error)

	// Query returns up to topK entries ranked by descending cosine similarity
	// to vector, ties broken by insertion order. An empty store yields an
	// empty result. A dimension mismatch fails with domain.ErrStoreQuery.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error)

	// HasSource reports whether any entry was written for source.
	HasSource(ctx context.Context, source string) (bool, error)

	// Stats summarises the store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Clear removes every entry and forgets the dimension.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
