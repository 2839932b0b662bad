package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "plain query",
			uri:      "studymate://context/photosynthesis",
			expected: "photosynthesis",
		},
		{
			name:     "encoded query",
			uri:      "studymate://context/what%20is%20ATP%3F",
			expected: "what is ATP?",
		},
		{
			name:     "invalid prefix",
			uri:      "file://context/photosynthesis",
			expected: "",
		},
		{
			name:     "bad escape",
			uri:      "studymate://context/%zz",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractQuery(tt.uri))
		})
	}
}

func newReadRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats as JSON", func(t *testing.T) {
		ingest := &mockIngestService{stats: domain.StoreStats{Entries: 12, Dimension: 384, Sources: 2}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Ingest: ingest})
		require.NoError(t, err)

		result, err := server.handleStatsResource(ctx, newReadRequest("studymate://stats"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"entries": 12`)
		assert.Contains(t, result.Contents[0].Text, `"dimension": 384`)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		ingest := &mockIngestService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Ingest: ingest})
		require.NoError(t, err)

		_, err = server.handleStatsResource(ctx, newReadRequest("studymate://stats"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

func TestServer_handleContextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("formats chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.RetrievalResult{
				{Text: "first", Metadata: domain.Metadata{Source: "a.pdf", Index: 0}},
				{Text: "second", Metadata: domain.Metadata{Source: "b.pdf", Index: 7}},
			},
		}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		result, err := server.handleContextResource(ctx, newReadRequest("studymate://context/cell%20walls"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[a.pdf #0] first\n\n[b.pdf #7] second", result.Contents[0].Text)
		assert.Equal(t, "cell walls", retrieval.lastText)
	})

	t.Run("empty result", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleContextResource(ctx, newReadRequest("studymate://context/x"))

		require.NoError(t, err)
		assert.Equal(t, noResults, result.Contents[0].Text)
	})

	t.Run("failure degrades to no results", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: errors.New("timeout")}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		result, err := server.handleContextResource(ctx, newReadRequest("studymate://context/x"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, noResults)
		assert.Contains(t, result.Contents[0].Text, "timeout")
	})

	t.Run("missing query is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleContextResource(ctx, newReadRequest("studymate://context/"))

		assert.Error(t, err)
	})
}
