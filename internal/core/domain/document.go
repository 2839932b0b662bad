package domain

import "strings"

// Document is a named, ordered sequence of page texts.
// It is owned by the caller; the core only reads it.
type Document struct {
	// Source identifies the document (usually the file name).
	// It is stored verbatim as provenance on every entry.
	Source string

	// Pages holds one string per page in page order.
	// Blank pages are kept as empty strings.
	Pages []string
}

// BlankPages returns the number of pages with no visible text.
func (d Document) BlankPages() int {
	n := 0
	for _, p := range d.Pages {
		if strings.TrimSpace(p) == "" {
			n++
		}
	}
	return n
}

// Chunk is an overlapping word window cut from one page.
// Chunks are created only by the chunker and never modified.
type Chunk struct {
	// Index is the sequence index within the document.
	// It is continuous across pages; blank pages consume no index.
	Index int

	// Source is the owning document's source name.
	Source string

	// Page is the 1-based page number the window was cut from.
	Page int

	// Text is the window's words joined by single spaces. Never empty.
	Text string

	// StartWord is the offset of the first word within the page.
	StartWord int

	// EndWord is the offset one past the last word within the page.
	EndWord int
}

// WordCount returns the number of words in the chunk.
func (c Chunk) WordCount() int {
	return c.EndWord - c.StartWord
}

// Metadata returns the provenance record stored with the chunk.
func (c Chunk) Metadata() Metadata {
	return Metadata{Source: c.Source, Index: c.Index}
}
