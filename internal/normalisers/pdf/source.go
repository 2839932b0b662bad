package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.PageSource = (*Source)(nil)

// Source extracts page text from PDF files.
// Pages without a content stream, or whose text cannot be decoded, are kept
// as blank pages so later page numbers stay aligned.
type Source struct{}

// New creates a new PDF page source.
func New() *Source {
	return &Source{}
}

// Supports reports whether path has a .pdf extension.
func (s *Source) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Load opens the PDF and extracts the plain text of every page.
func (s *Source) Load(ctx context.Context, path string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	source := filepath.Base(path)
	n := reader.NumPage()
	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return domain.Document{}, err
		}
		pages[i-1] = pageText(source, i, reader.Page(i))
	}

	return domain.Document{Source: source, Pages: pages}, nil
}

// pageText returns the plain text of page num, or "" if it has none.
func pageText(source string, num int, page pdf.Page) string {
	if page.V.IsNull() || page.V.Key("Contents").IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Warn("%s: page %d unreadable, treating as blank: %v", source, num, err)
		return ""
	}
	return text
}
