// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService turns documents into stored chunk entries,
// RetrievalService answers similarity queries and SettingsService
// resolves configuration from the config file and environment.
package services
