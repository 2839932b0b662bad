package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// mockEmbedder is a test double for driven.EmbeddingService.
// Vectors are [word count, character count, 1].
type mockEmbedder struct {
	mu      sync.Mutex
	err     error
	short   bool
	batches [][]string
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, texts)

	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, []float32{float32(len(strings.Fields(t))), float32(len(t)), 1})
	}
	if m.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// mockVectorStore wraps a real store and injects failures.
type mockVectorStore struct {
	driven.VectorStore
	addErr   error
	queryErr error
	hasErr   error
	adds     int
}

func (m *mockVectorStore) Add(ctx context.Context, chunks []domain.EmbeddedChunk) ([]domain.IndexEntry, error) {
	m.adds++
	if m.addErr != nil {
		return nil, m.addErr
	}
	return m.VectorStore.Add(ctx, chunks)
}

func (m *mockVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.VectorStore.Query(ctx, vector, topK)
}

func (m *mockVectorStore) HasSource(ctx context.Context, source string) (bool, error) {
	if m.hasErr != nil {
		return false, m.hasErr
	}
	return m.VectorStore.HasSource(ctx, source)
}

// upperProcessor upper-cases every page.
type upperProcessor struct {
	err error
}

func (p *upperProcessor) Name() string { return "upper" }

func (p *upperProcessor) Process(_ context.Context, doc domain.Document) (domain.Document, error) {
	if p.err != nil {
		return domain.Document{}, p.err
	}
	pages := make([]string, len(doc.Pages))
	for i, page := range doc.Pages {
		pages[i] = strings.ToUpper(page)
	}
	return domain.Document{Source: doc.Source, Pages: pages}, nil
}
