package driving

import "github.com/custodia-labs/studymate/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings: stored values over
	// defaults, then any configured overrides (e.g., environment).
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses value for a known key and persists it.
	// Unknown keys or malformed values fail with domain.ErrConfiguration.
	Set(key, value string) error

	// Unset removes a stored key so its default applies again.
	Unset(key string) error

	// Keys returns every settable key, sorted.
	Keys() []string

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the current settings without contacting any provider.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}
