package mcp

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error

	lastText string
	lastTopK int
}

func (m *mockRetrievalService) QuerySimilar(_ context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	m.lastText = text
	m.lastTopK = topK
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report domain.IngestReport
	stats  domain.StoreStats
	err    error

	lastDoc domain.Document
}

func (m *mockIngestService) Ingest(_ context.Context, doc domain.Document) (domain.IngestReport, error) {
	m.lastDoc = doc
	return m.report, m.err
}

func (m *mockIngestService) Preview(_ context.Context, _ domain.Document) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockIngestService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockIngestService) Clear(_ context.Context) error {
	return m.err
}
