package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/logger"
)

// noResults prefixes the message returned when a query cannot be answered.
const noResults = "no results available"

// QueryInput is the input schema for the query_similar tool.
type QueryInput struct {
	Text string `json:"text" jsonschema:"the question or text to find related lecture material for"`
	TopK int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// QueryOutput is the output schema for the query_similar tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`

	// Message explains an empty result caused by a failure.
	Message string `json:"message,omitempty"`
}

// QueryResultOutput represents a single retrieved chunk.
type QueryResultOutput struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Index      int     `json:"index"`
	Similarity float64 `json:"similarity"`
}

// IngestInput is the input schema for the ingest_text tool.
type IngestInput struct {
	Source string   `json:"source" jsonschema:"name recorded as the provenance of every chunk"`
	Pages  []string `json:"pages" jsonschema:"page texts in order; blank pages are skipped"`
}

// IngestOutput is the output schema for the ingest_text tool.
type IngestOutput struct {
	Source     string `json:"source"`
	Pages      int    `json:"pages"`
	BlankPages int    `json:"blank_pages"`
	Chunks     int    `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_similar",
		Description: "Find the lecture chunks most similar to a question",
	}, s.handleQuery)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_text",
			Description: "Chunk, embed and store a document given as page texts",
		}, s.handleIngest)
	}
}

// handleQuery handles the query_similar tool invocation.
// Retrieval failures produce an empty result with a message, not a tool error.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	results, err := s.ports.Retrieval.QuerySimilar(ctx, input.Text, topK)
	if err != nil {
		logger.Warn("query_similar failed: %v", err)
		return nil, QueryOutput{
			Results: []QueryResultOutput{},
			Message: fmt.Sprintf("%s: %v", noResults, err),
		}, nil
	}

	output := QueryOutput{
		Results: make([]QueryResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = QueryResultOutput{
			Text:       r.Text,
			Source:     r.Metadata.Source,
			Index:      r.Metadata.Index,
			Similarity: r.Similarity,
		}
	}
	return nil, output, nil
}

// handleIngest handles the ingest_text tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	report, err := s.ports.Ingest.Ingest(ctx, domain.Document{
		Source: input.Source,
		Pages:  input.Pages,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Source:     report.Source,
		Pages:      report.Pages,
		BlankPages: report.BlankPages,
		Chunks:     report.Chunks,
	}, nil
}
