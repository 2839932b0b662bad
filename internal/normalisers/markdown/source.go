package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.PageSource = (*Source)(nil)

var (
	slideBreak   = regexp.MustCompile(`(?m)^---+[ \t]*$`)
	frontMatter  = regexp.MustCompile(`(?s)\A---[ \t]*\n.*?\n---[ \t]*(\n|\z)`)
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	htmlComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// Source reads Markdown slide decks.
// A line holding only dashes starts a new page, as in Marp and reveal.js decks.
type Source struct{}

// New creates a new Markdown page source.
func New() *Source {
	return &Source{}
}

// Supports reports whether path has a Markdown extension.
func (s *Source) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// Load reads the deck and returns one page per slide.
func (s *Source) Load(ctx context.Context, path string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(filepath.Base(path), string(data)), nil
}

// Parse splits a deck into slides and strips Markdown formatting from each.
func Parse(source, content string) domain.Document {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = frontMatter.ReplaceAllString(content, "")

	slides := slideBreak.Split(content, -1)
	pages := make([]string, len(slides))
	for i, slide := range slides {
		pages[i] = stripMarkdown(slide)
	}
	return domain.Document{Source: source, Pages: pages}
}

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = htmlComment.ReplaceAllString(content, "")
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	return strings.TrimSpace(content)
}
