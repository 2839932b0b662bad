package driven

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// PageSource extracts a document's ordered page texts.
// Blank pages are kept as empty strings so page numbers stay aligned.
type PageSource interface {
	// Load reads the document at path. The returned Document's Source is
	// the base name of path.
	Load(ctx context.Context, path string) (domain.Document, error)

	// Supports reports whether this source can read path.
	Supports(path string) bool
}
