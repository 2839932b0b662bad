package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// Built-in processor names.
const (
	NameDehyphenate = "dehyphenate"
	NamePageNumbers = "page_numbers"
	NameStripLines  = "strip_lines"
)

// ConfigStripPatterns is the config key holding strip_lines patterns.
const ConfigStripPatterns = "strip_patterns"

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(NameDehyphenate, func(map[string]any) (driven.PageProcessor, error) {
		return NewDehyphenator(), nil
	})
	r.Register(NamePageNumbers, func(map[string]any) (driven.PageProcessor, error) {
		return NewPageNumberFilter(), nil
	})
	r.Register(NameStripLines, buildStripLines)
}

// buildStripLines creates a line filter from generic config.
// Supported config keys:
//   - strip_patterns ([]string): regular expressions matched against each line
func buildStripLines(cfg map[string]any) (driven.PageProcessor, error) {
	patterns := getStringsFromConfig(cfg, ConfigStripPatterns)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one pattern in %s",
			domain.ErrConfiguration, NameStripLines, ConfigStripPatterns)
	}
	return NewLineFilter(patterns...)
}

// getStringsFromConfig safely extracts a string list from generic config map.
// Handles []string and the []any produced by TOML parsing.
func getStringsFromConfig(cfg map[string]any, key string) []string {
	val, ok := cfg[key]
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
