package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize         = "chunk.size"
	keyChunkOverlap      = "chunk.overlap"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedTimeout      = "embedding.timeout"
	keyEmbedBatchSize    = "embedding.batch_size"
	keyEmbedConcurrency  = "embedding.concurrency"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyStoreBackend      = "store.backend"
	keyStoreDir          = "store.dir"
	keyIngestDuplicates  = "ingest.duplicates"
	keyIngestProcessors  = "ingest.processors"
	keyIngestStripLines  = "ingest.strip_patterns"
	defaultOllamaBaseURL = "http://localhost:11434"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
)

// settableKeys maps every key accepted by Set to its value kind.
var settableKeys = map[string]valueKind{
	keyChunkSize:        kindInt,
	keyChunkOverlap:     kindInt,
	keyEmbedProvider:    kindString,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedDimensions:  kindInt,
	keyEmbedTimeout:     kindDuration,
	keyEmbedBatchSize:   kindInt,
	keyEmbedConcurrency: kindInt,
	keyEmbedRPS:         kindFloat,
	keyStoreBackend:     kindString,
	keyStoreDir:         kindString,
	keyIngestDuplicates: kindString,
	keyIngestProcessors: kindList,
	keyIngestStripLines: kindList,
}

// OverrideFunc adjusts loaded settings, e.g. from environment variables.
type OverrideFunc func(settings *domain.AppSettings) error

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithOverrides applies fn to every result of Get.
func WithOverrides(fn OverrideFunc) SettingsOption {
	return func(s *SettingsService) {
		s.overrides = append(s.overrides, fn)
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	overrides   []OverrideFunc
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings.
// Values are returned as stored; Validate reports unknown providers or backends.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunk.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunk.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String())),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDimensions),
			Timeout:           timeout,
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			Concurrency:       s.getInt(keyEmbedConcurrency, defaults.Embedding.Concurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Store: domain.StoreSettings{
			Backend: domain.StoreBackend(s.getString(keyStoreBackend, string(defaults.Store.Backend))),
			Dir:     s.configStore.GetString(keyStoreDir),
		},
		Ingest: domain.IngestSettings{
			Duplicates:    domain.DuplicatePolicy(s.getString(keyIngestDuplicates, string(defaults.Ingest.Duplicates))),
			Processors:    s.configStore.GetStringSlice(keyIngestProcessors),
			StripPatterns: s.configStore.GetStringSlice(keyIngestStripLines),
		},
	}

	// Overlap may legitimately be zero, which getInt would treat as unset.
	if _, exists := s.configStore.Get(keyChunkOverlap); exists {
		settings.Chunk.Overlap = s.configStore.GetInt(keyChunkOverlap)
	}

	for _, fn := range s.overrides {
		if err := fn(settings); err != nil {
			return nil, err
		}
	}

	// Model defaults follow the provider chosen after overrides.
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.Chunk.Size},
		{keyChunkOverlap, settings.Chunk.Overlap},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedConcurrency, settings.Embedding.Concurrency},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyStoreBackend, string(settings.Store.Backend)},
		{keyStoreDir, settings.Store.Dir},
		{keyIngestDuplicates, string(settings.Ingest.Duplicates)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if len(settings.Ingest.Processors) > 0 {
		if err := s.configStore.Set(keyIngestProcessors, settings.Ingest.Processors); err != nil {
			return fmt.Errorf("save %s: %w", keyIngestProcessors, err)
		}
	}
	if len(settings.Ingest.StripPatterns) > 0 {
		if err := s.configStore.Set(keyIngestStripLines, settings.Ingest.StripPatterns); err != nil {
			return fmt.Errorf("save %s: %w", keyIngestStripLines, err)
		}
	}

	return nil
}

// Set parses value according to key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrConfiguration, key, strings.Join(s.Keys(), ", "))
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
	}

	switch key {
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfiguration, value)
		}
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid store backend: %s", domain.ErrConfiguration, value)
		}
	case keyIngestDuplicates:
		if !domain.DuplicatePolicy(value).IsValid() {
			return fmt.Errorf("%w: invalid duplicate policy: %s", domain.ErrConfiguration, value)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a stored key.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settableKeys[key]; !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrConfiguration, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfiguration, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Only Ollama is reached through a configurable base URL by default.
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	// A new model brings its own vector size.
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s requires an API key",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", domain.ErrConfiguration, key, val)
	}
	return d, nil
}

// parseValue converts a command-line value to the type stored for kind.
func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("%q is not a duration", value)
		}
		return value, nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}
