package postprocessors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

var (
	_ driven.PageProcessor = (*Dehyphenator)(nil)
	_ driven.PageProcessor = (*LineFilter)(nil)
)

var hyphenBreak = regexp.MustCompile(`(\pL)-[ \t]*\r?\n[ \t]*(\p{Ll})`)

// Dehyphenator rejoins words that extraction split across line breaks,
// e.g. "gradi-\nent" becomes "gradient".
type Dehyphenator struct{}

// NewDehyphenator creates a new dehyphenating processor.
func NewDehyphenator() *Dehyphenator {
	return &Dehyphenator{}
}

// Name returns the processor name.
func (d *Dehyphenator) Name() string {
	return NameDehyphenate
}

// Process rejoins hyphenated line breaks on every page.
func (d *Dehyphenator) Process(_ context.Context, doc domain.Document) (domain.Document, error) {
	return mapPages(doc, func(page string) string {
		return hyphenBreak.ReplaceAllString(page, "$1$2")
	}), nil
}

// LineFilter drops every line matching any of its patterns.
type LineFilter struct {
	name     string
	patterns []*regexp.Regexp
}

// NewLineFilter compiles patterns into a strip_lines processor.
// An invalid pattern fails with ErrConfiguration.
func NewLineFilter(patterns ...string) (*LineFilter, error) {
	f := &LineFilter{name: NameStripLines}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrConfiguration, p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// NewPageNumberFilter drops lines such as "12", "Page 3" or "4 / 20".
func NewPageNumberFilter() *LineFilter {
	return &LineFilter{
		name:     NamePageNumbers,
		patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)^\s*(page|slide)?\s*\d+\s*((/|of)\s*\d+)?\s*$`)},
	}
}

// Name returns the processor name.
func (f *LineFilter) Name() string {
	return f.name
}

// Process removes matching lines on every page.
func (f *LineFilter) Process(_ context.Context, doc domain.Document) (domain.Document, error) {
	return mapPages(doc, f.filter), nil
}

func (f *LineFilter) filter(page string) string {
	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !f.matches(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (f *LineFilter) matches(line string) bool {
	for _, re := range f.patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
