// Package chunker splits page text into overlapping word windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// Chunker cuts page text into windows of Size words, adjacent windows
// sharing Overlap words. It holds no state beyond its settings and is safe
// for concurrent use.
type Chunker struct {
	settings domain.ChunkSettings
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.settings.Size = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.settings.Overlap = overlap
	}
}

// WithSettings replaces both size and overlap.
func WithSettings(s domain.ChunkSettings) Option {
	return func(c *Chunker) {
		c.settings = s
	}
}

// New creates a chunker with the given options.
// Invalid settings fail with domain.ErrConfiguration.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		settings: domain.ChunkSettings{
			Size:    domain.DefaultChunkSize,
			Overlap: domain.DefaultChunkOverlap,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.settings.Validate(); err != nil {
		return nil, fmt.Errorf("create chunker: %w", err)
	}
	return c, nil
}

// Settings returns the chunk size and overlap in use.
func (c *Chunker) Settings() domain.ChunkSettings {
	return c.settings
}

// window is a half-open word range.
type window struct {
	start, end int
}

// windows computes the word ranges for n words.
// The last window always ends at n; once a window reaches it, cutting stops.
func (c *Chunker) windows(n int) []window {
	if n == 0 {
		return nil
	}
	step := c.settings.Step()
	out := make([]window, 0, n/step+1)
	for start := 0; ; start += step {
		end := min(start+c.settings.Size, n)
		out = append(out, window{start: start, end: end})
		if end >= n {
			return out
		}
	}
}

// Split returns the window texts of text, words joined by single spaces.
// Empty or whitespace-only text yields no windows.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	wins := c.windows(len(words))
	out := make([]string, len(wins))
	for i, w := range wins {
		out[i] = strings.Join(words[w.start:w.end], " ")
	}
	return out
}

// SplitPage chunks one page. Chunk indexes start at firstIndex.
// page is the 1-based page number recorded on each chunk.
func (c *Chunker) SplitPage(source string, page int, text string, firstIndex int) []domain.Chunk {
	words := strings.Fields(text)
	wins := c.windows(len(words))
	chunks := make([]domain.Chunk, len(wins))
	for i, w := range wins {
		chunks[i] = domain.Chunk{
			Index:     firstIndex + i,
			Source:    source,
			Page:      page,
			Text:      strings.Join(words[w.start:w.end], " "),
			StartWord: w.start,
			EndWord:   w.end,
		}
	}
	return chunks
}

// SplitDocument chunks every page of doc in page order.
// Blank pages produce no chunks and consume no index.
func (c *Chunker) SplitDocument(doc domain.Document) ([]domain.Chunk, error) {
	if doc.Source == "" {
		return nil, fmt.Errorf("%w: document source is empty", domain.ErrInvalidInput)
	}
	var chunks []domain.Chunk
	for i, text := range doc.Pages {
		chunks = append(chunks, c.SplitPage(doc.Source, i+1, text, len(chunks))...)
	}
	return chunks, nil
}

// SplitDocuments chunks each document in order and concatenates the results.
// Indexes restart at zero for every document.
func (c *Chunker) SplitDocuments(docs ...domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for _, doc := range docs {
		chunks, err := c.SplitDocument(doc)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// ExpectedCount returns the number of windows for words words.
func (c *Chunker) ExpectedCount(words int) int {
	if words == 0 {
		return 0
	}
	if words <= c.settings.Size {
		return 1
	}
	step := c.settings.Step()
	return (words-c.settings.Size+step-1)/step + 1
}
