package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/studymate/internal/chunker"
	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/ports/driving"
	"github.com/custodia-labs/studymate/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithDuplicatePolicy sets what happens when a source already has entries.
// Defaults to domain.DuplicateReject.
func WithDuplicatePolicy(policy domain.DuplicatePolicy) IngestOption {
	return func(s *IngestService) {
		s.duplicates = policy
	}
}

// WithPageProcessor cleans pages before they are chunked.
func WithPageProcessor(p driven.PageProcessor) IngestOption {
	return func(s *IngestService) {
		s.processor = p
	}
}

// IngestService chunks documents, embeds the chunks in one batch and stores
// them with a single Add.
type IngestService struct {
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	processor  driven.PageProcessor
	duplicates domain.DuplicatePolicy

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	c *chunker.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		chunker:    c,
		embedder:   embedder,
		store:      store,
		duplicates: domain.DuplicateReject,
		inflight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest chunks, embeds and stores doc.
func (s *IngestService) Ingest(ctx context.Context, doc domain.Document) (domain.IngestReport, error) {
	logger.Section("Ingest " + doc.Source)
	defer logger.Timed("ingest "+doc.Source, time.Now())

	if doc.Source == "" {
		return domain.IngestReport{}, fmt.Errorf("%w: document source is empty", domain.ErrInvalidInput)
	}

	release, err := s.reserve(ctx, doc.Source)
	if err != nil {
		return domain.IngestReport{}, err
	}
	defer release()

	chunks, err := s.Preview(ctx, doc)
	if err != nil {
		return domain.IngestReport{}, err
	}

	report := domain.IngestReport{
		Source:     doc.Source,
		Pages:      len(doc.Pages),
		BlankPages: doc.BlankPages(),
		EntryIDs:   []string{},
	}
	logger.Debug("Pages: %d (%d blank), chunks: %d", report.Pages, report.BlankPages, len(chunks))

	if len(chunks) == 0 {
		logger.Info("%s has no text, nothing stored", doc.Source)
		return report, nil
	}

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return domain.IngestReport{}, err
	}

	batch := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		batch[i] = domain.EmbeddedChunk{
			Text:     c.Text,
			Metadata: c.Metadata(),
			Vector:   vectors[i],
		}
	}

	start := time.Now()
	entries, err := s.store.Add(ctx, batch)
	if err != nil {
		logger.Warn("Store write failed for %s: %v", doc.Source, err)
		return domain.IngestReport{}, fmt.Errorf("store %s: %w", doc.Source, err)
	}
	logger.Timed("store write", start)

	report.Chunks = len(entries)
	report.EntryIDs = make([]string, len(entries))
	for i, e := range entries {
		report.EntryIDs[i] = e.ID
	}
	logger.Info("Stored %d chunks from %s", report.Chunks, doc.Source)
	return report, nil
}

// Preview cleans and chunks doc without embedding or storing anything.
func (s *IngestService) Preview(ctx context.Context, doc domain.Document) ([]domain.Chunk, error) {
	if s.processor != nil {
		cleaned, err := s.processor.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("clean pages of %s: %w", doc.Source, err)
		}
		doc = cleaned
	}

	chunks, err := s.chunker.SplitDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", doc.Source, err)
	}
	return chunks, nil
}

// Stats summarises the store.
func (s *IngestService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// Clear removes every stored entry.
func (s *IngestService) Clear(ctx context.Context) error {
	logger.Info("Clearing vector store")
	return s.store.Clear(ctx)
}

// embed converts chunk texts to vectors in one batch.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	defer logger.Timed(fmt.Sprintf("embed %d chunks", len(chunks)), time.Now())

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding failed (retryable=%t): %v", domain.IsRetryable(err), err)
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed chunks: %w",
			domain.NewEmbeddingError(fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts)), false))
	}
	return vectors, nil
}

// reserve applies the duplicate policy and blocks concurrent ingestion of
// the same source. The returned func releases the reservation.
func (s *IngestService) reserve(ctx context.Context, source string) (func(), error) {
	if s.duplicates == domain.DuplicateAppend {
		return func() {}, nil
	}

	s.mu.Lock()
	if _, busy := s.inflight[source]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s is already being ingested", domain.ErrDuplicateSource, source)
	}
	s.inflight[source] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.inflight, source)
		s.mu.Unlock()
	}

	exists, err := s.store.HasSource(ctx, source)
	if err != nil {
		release()
		return nil, fmt.Errorf("check source %s: %w", source, err)
	}
	if exists {
		release()
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSource, source)
	}
	return release, nil
}
