package driven

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// PageProcessor cleans extracted page text before it is chunked
// (e.g., rejoining hyphenated words, dropping page numbers).
// Processors never change the number or order of pages.
type PageProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns a cleaned copy of doc. The input is not modified.
	Process(ctx context.Context, doc domain.Document) (domain.Document, error)
}
