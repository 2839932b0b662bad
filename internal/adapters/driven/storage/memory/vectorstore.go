package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/similarity"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// snapshot is an immutable view of the store. Writers publish a new one.
type snapshot struct {
	entries []domain.IndexEntry
	dim     int
	sources map[string]int
}

// VectorStore keeps entries in process memory.
// Queries read the current snapshot without locking; writers serialise on mu
// and swap in a new snapshot only after the whole batch is built.
type VectorStore struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	nextSeq int64
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	s := &VectorStore{}
	s.current.Store(&snapshot{sources: map[string]int{}})
	return s
}

// Add validates the batch and publishes it atomically.
func (s *VectorStore) Add(ctx context.Context, chunks []domain.EmbeddedChunk) ([]domain.IndexEntry, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	dim := len(chunks[0].Vector)
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", domain.ErrStoreWrite, i, err)
		}
		if len(c.Vector) != dim {
			return nil, fmt.Errorf("%w: chunk %d has dimension %d, batch has %d",
				domain.ErrStoreWrite, i, len(c.Vector), dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	if old.dim != 0 && old.dim != dim {
		return nil, fmt.Errorf("%w: dimension mismatch: store holds %d, batch has %d",
			domain.ErrStoreWrite, old.dim, dim)
	}

	next := &snapshot{
		entries: make([]domain.IndexEntry, len(old.entries), len(old.entries)+len(chunks)),
		dim:     dim,
		sources: make(map[string]int, len(old.sources)+1),
	}
	copy(next.entries, old.entries)
	for k, v := range old.sources {
		next.sources[k] = v
	}

	added := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		s.nextSeq++
		e := domain.IndexEntry{
			ID:       uuid.NewString(),
			Seq:      s.nextSeq,
			Vector:   append([]float32(nil), c.Vector...),
			Text:     c.Text,
			Metadata: c.Metadata,
		}
		next.entries = append(next.entries, e)
		next.sources[c.Metadata.Source]++
		added[i] = e
	}

	s.current.Store(next)
	return added, nil
}

// Query ranks the current snapshot against vector.
func (s *VectorStore) Query(_ context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	snap := s.current.Load()
	if len(snap.entries) == 0 {
		return []domain.ScoredEntry{}, nil
	}
	if len(vector) != snap.dim {
		return nil, fmt.Errorf("%w: dimension mismatch: query has %d, store holds %d",
			domain.ErrStoreQuery, len(vector), snap.dim)
	}
	return similarity.Rank(snap.entries, vector, topK)
}

// HasSource reports whether any entry was written for source.
func (s *VectorStore) HasSource(_ context.Context, source string) (bool, error) {
	return s.current.Load().sources[source] > 0, nil
}

// Stats summarises the store contents.
func (s *VectorStore) Stats(_ context.Context) (domain.StoreStats, error) {
	snap := s.current.Load()
	return domain.StoreStats{
		Entries:   len(snap.entries),
		Dimension: snap.dim,
		Sources:   len(snap.sources),
	}, nil
}

// Clear removes every entry and forgets the dimension.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(&snapshot{sources: map[string]int{}})
	return nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
