package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Default chunking values, matching the page windows used for lecture slides.
const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 80
)

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = 5

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in deterministic feature-hashing model.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Generative AI cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// IsLocal returns true if this provider runs without a network service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies a vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite persists entries in a SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory keeps entries in process memory only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendSQLite || b == StoreBackendMemory
}

// DuplicatePolicy decides what ingestion does when a source already has entries.
type DuplicatePolicy string

// Available duplicate policies.
const (
	// DuplicateReject fails ingestion with ErrDuplicateSource.
	DuplicateReject DuplicatePolicy = "reject"

	// DuplicateAppend adds a second set of entries for the same source.
	DuplicateAppend DuplicatePolicy = "append"
)

// IsValid returns true if the policy is recognised.
func (p DuplicatePolicy) IsValid() bool {
	return p == DuplicateReject || p == DuplicateAppend
}

// ChunkSettings holds word-window chunking configuration.
type ChunkSettings struct {
	// Size is the number of words per chunk.
	Size int

	// Overlap is the number of words shared by adjacent chunks.
	Overlap int
}

// Validate reports ErrConfiguration unless 0 <= Overlap < Size.
func (c ChunkSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrConfiguration, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be less than chunk size %d",
			ErrConfiguration, c.Overlap, c.Size)
	}
	return nil
}

// Step returns how many words the window advances per chunk.
func (c ChunkSettings) Step() int {
	return c.Size - c.Overlap
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI and Gemini).
	APIKey string

	// Dimensions overrides the model's vector size when non-zero.
	Dimensions int

	// Timeout bounds every provider call.
	Timeout time.Duration

	// BatchSize is the maximum number of texts per provider call.
	BatchSize int

	// Concurrency is the number of provider calls made in parallel.
	Concurrency int

	// RequestsPerSecond limits provider calls; zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// Dir is the directory holding persisted store files.
	// Empty means ~/.studymate/data.
	Dir string
}

// IngestSettings holds ingestion behaviour configuration.
type IngestSettings struct {
	// Duplicates decides what happens when a source is ingested twice.
	Duplicates DuplicatePolicy

	// Processors names the page cleaners run before chunking, in order.
	// Empty means pages are chunked exactly as extracted.
	Processors []string

	// StripPatterns are line patterns removed by the strip_lines processor.
	StripPatterns []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunk     ChunkSettings
	Embedding EmbeddingSettings
	Store     StoreSettings
	Ingest    IngestSettings
}

// Validate checks settings that would otherwise fail late.
func (s AppSettings) Validate() error {
	if err := s.Chunk.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: %w: embedding provider %q",
			ErrConfiguration, ErrUnsupportedType, s.Embedding.Provider)
	}
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: %w: store backend %q",
			ErrConfiguration, ErrUnsupportedType, s.Store.Backend)
	}
	if !s.Ingest.Duplicates.IsValid() {
		return fmt.Errorf("%w: duplicate policy %q", ErrConfiguration, s.Ingest.Duplicates)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// The built-in hashing provider works offline, so a fresh install can
// ingest and query without any account.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunk: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:    AIProviderHashing,
			Model:       DefaultEmbeddingModels()[AIProviderHashing],
			Timeout:     30 * time.Second,
			BatchSize:   64,
			Concurrency: 4,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Ingest: IngestSettings{
			Duplicates: DuplicateReject,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-384",
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderGemini:  "text-embedding-004",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
