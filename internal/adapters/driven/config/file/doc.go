// Package file provides file-based configuration for studymate.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.studymate/config.toml)
//   - LoadDotEnv and ApplyEnv: environment overrides, optionally read from .env
package file
