package domain

import (
	"fmt"
	"math"
)

// Metadata is the fixed-shape provenance record stored with every entry.
type Metadata struct {
	// Source is the document source name, preserved verbatim.
	Source string `json:"source"`

	// Index is the chunk's sequence index within its document.
	Index int `json:"index"`
}

// Validate checks the record at the write boundary.
func (m Metadata) Validate() error {
	if m.Source == "" {
		return fmt.Errorf("%w: metadata source is empty", ErrInvalidInput)
	}
	if m.Index < 0 {
		return fmt.Errorf("%w: metadata index %d is negative", ErrInvalidInput, m.Index)
	}
	return nil
}

// EmbeddedChunk is chunk text paired with its vector, ready to be stored.
type EmbeddedChunk struct {
	Text     string
	Metadata Metadata
	Vector   []float32
}

// Validate checks the chunk before it is written.
func (c EmbeddedChunk) Validate() error {
	if c.Text == "" {
		return fmt.Errorf("%w: chunk text is empty", ErrInvalidInput)
	}
	if len(c.Vector) == 0 {
		return fmt.Errorf("%w: chunk vector is empty", ErrInvalidInput)
	}
	if err := CheckFinite(c.Vector); err != nil {
		return err
	}
	return c.Metadata.Validate()
}

// CheckFinite fails with ErrInvalidInput if any component is NaN or infinite.
func CheckFinite(v []float32) error {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: vector component %d is %v", ErrInvalidInput, i, x)
		}
	}
	return nil
}

// IndexEntry is a stored vector with its chunk text and provenance.
// Entries are owned by the vector store.
type IndexEntry struct {
	// ID is generated by the store at write time and unique for its lifetime.
	ID string `json:"id"`

	// Seq is the insertion order. Earlier entries have smaller values.
	Seq int64 `json:"seq"`

	Vector   []float32 `json:"-"`
	Text     string    `json:"text"`
	Metadata Metadata  `json:"metadata"`
}

// ScoredEntry is an entry ranked against a query vector.
type ScoredEntry struct {
	Entry      IndexEntry
	Similarity float64
}

// StoreStats summarises a vector store.
type StoreStats struct {
	// Entries is the number of stored entries.
	Entries int `json:"entries"`

	// Dimension is the shared vector dimension, or 0 when empty.
	Dimension int `json:"dimension"`

	// Sources is the number of distinct document sources.
	Sources int `json:"sources"`
}
