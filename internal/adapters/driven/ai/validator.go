package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// defaultPingTimeout bounds a connectivity check.
const defaultPingTimeout = 5 * time.Second

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks embedding settings by building the bare provider
// and pinging it once. It does not go through the guard, so a failed check
// never trips a breaker shared with real traffic.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator. A non-positive timeout uses
// the default of five seconds.
func NewConfigValidator(timeout ...time.Duration) *ConfigValidator {
	v := &ConfigValidator{timeout: defaultPingTimeout}
	if len(timeout) > 0 && timeout[0] > 0 {
		v.timeout = timeout[0]
	}
	return v
}

// ValidateEmbedding returns nil when settings are absent or incomplete,
// since there is nothing to reach yet.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable (%w). Run 'studymate config provider' to fix",
			settings.Provider, err)
	}
	return nil
}
