// Package mcp provides an MCP (Model Context Protocol) server adapter for studymate.
// It lets AI assistants retrieve lecture material as context for their answers.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
