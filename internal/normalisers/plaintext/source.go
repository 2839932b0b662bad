package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.PageSource = (*Source)(nil)

// PageBreak separates pages in a plain text file.
const PageBreak = "\f"

// Source reads plain text files. Form feed characters split pages.
type Source struct{}

// New creates a new plain text page source.
func New() *Source {
	return &Source{}
}

// Supports reports whether path has a plain text extension.
func (s *Source) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return true
	default:
		return false
	}
}

// Load reads the file and splits it into pages.
func (s *Source) Load(ctx context.Context, path string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return domain.Document{}, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, filepath.Base(path))
	}

	return Parse(filepath.Base(path), string(data)), nil
}

// Parse splits text into pages on form feeds.
func Parse(source, text string) domain.Document {
	return domain.Document{
		Source: source,
		Pages:  strings.Split(text, PageBreak),
	}
}
