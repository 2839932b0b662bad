package normalisers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/normalisers/markdown"
	"github.com/custodia-labs/studymate/internal/normalisers/pdf"
	"github.com/custodia-labs/studymate/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.PageSource = (*Registry)(nil)

// Registry selects the page source for a path.
// Sources are tried in registration order.
type Registry struct {
	sources []driven.PageSource
}

// NewRegistry creates a registry over the given sources.
func NewRegistry(sources ...driven.PageSource) *Registry {
	return &Registry{sources: sources}
}

// Defaults returns a registry with every built-in page source.
func Defaults() *Registry {
	return NewRegistry(pdf.New(), markdown.New(), plaintext.New())
}

// Register adds a source after the existing ones.
func (r *Registry) Register(source driven.PageSource) {
	r.sources = append(r.sources, source)
}

// Supports reports whether any registered source can read path.
func (r *Registry) Supports(path string) bool {
	return r.find(path) != nil
}

// Load reads path with the first source that supports it.
func (r *Registry) Load(ctx context.Context, path string) (domain.Document, error) {
	path = ResolvePath(path)
	source := r.find(path)
	if source == nil {
		return domain.Document{}, fmt.Errorf("%w: no page source for %s", domain.ErrUnsupportedType, filepath.Base(path))
	}
	return source.Load(ctx, path)
}

func (r *Registry) find(path string) driven.PageSource {
	for _, s := range r.sources {
		if s.Supports(path) {
			return s
		}
	}
	return nil
}

// Expand resolves paths into the supported files they name.
// Directories are walked recursively, skipping hidden entries. Files given
// explicitly must be supported. The result is sorted and free of duplicates.
func (r *Registry) Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		p = ResolvePath(p)
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, p)
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if !r.Supports(p) {
				return nil, fmt.Errorf("%w: no page source for %s", domain.ErrUnsupportedType, filepath.Base(p))
			}
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && r.Supports(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ResolvePath converts a file:// URI to a local path.
// Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
