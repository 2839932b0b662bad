// Package hashing provides a deterministic, offline embedding service.
//
// Text is lowercased and split into word tokens. Every token and every pair
// of adjacent tokens is hashed with HighwayHash into one of Dimensions signed
// buckets, and the resulting vector is scaled to unit length. Texts sharing
// vocabulary therefore have high cosine similarity. No model download or
// network access is needed.
package hashing

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/similarity"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches all-MiniLM-L6-v2 so stores can switch between
// the hashing model and a MiniLM-backed provider without a resize.
const DefaultDimensions = 384

// defaultKey seeds HighwayHash. It must be 32 bytes.
var defaultKey = []byte("studymate-hashing-embedding-key!")

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the number of hash buckets (default: 384).
	Dimensions int

	// Key seeds the hash; 32 bytes. Changing it changes every vector.
	Key []byte
}

// EmbeddingService generates feature-hashed embeddings.
// It is stateless and safe for concurrent use.
type EmbeddingService struct {
	dimensions int
	key        []byte
}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Dimensions < 0 {
		return nil, fmt.Errorf("hashing: dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.Key == nil {
		cfg.Key = defaultKey
	}
	if len(cfg.Key) != highwayhash.Size {
		return nil, fmt.Errorf("hashing: key must be %d bytes, got %d", highwayhash.Size, len(cfg.Key))
	}
	return &EmbeddingService{dimensions: cfg.Dimensions, key: cfg.Key}, nil
}

// Embed generates a vector embedding for the given text.
// Text without any word token yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, s.dimensions)
	tokens := Tokenize(text)
	for i, tok := range tokens {
		s.add(vec, tok)
		if i > 0 {
			s.add(vec, tokens[i-1]+" "+tok)
		}
	}
	return similarity.Normalize(vec), nil
}

// add hashes one feature into its signed bucket.
func (s *EmbeddingService) add(vec []float32, feature string) {
	h := highwayhash.Sum64([]byte(feature), s.key)
	bucket := h % uint64(len(vec))
	if h>>63 == 1 {
		vec[bucket]--
	} else {
		vec[bucket]++
	}
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model name, including the dimension.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("hashing-%d", s.dimensions)
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize lowercases text and splits it on anything that is not a letter
// or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
