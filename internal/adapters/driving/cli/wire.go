package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/studymate/internal/adapters/driven/ai"
	"github.com/custodia-labs/studymate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/studymate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studymate/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/studymate/internal/chunker"
	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/ports/driving"
	"github.com/custodia-labs/studymate/internal/core/services"
	"github.com/custodia-labs/studymate/internal/logger"
	"github.com/custodia-labs/studymate/internal/normalisers"
	"github.com/custodia-labs/studymate/internal/postprocessors"
)

// closers release wired resources in reverse order.
var closers []func() error

func closeAll() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	return errors.Join(errs...)
}

// requireSettings wires the settings service.
// Precedence: defaults, then the config file, then the environment, then flags.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}

	if err := file.LoadDotEnv(".env"); err != nil {
		logger.Warn("Ignoring .env: %v", err)
	}

	store, err := openConfigStore()
	if err != nil {
		return nil, err
	}
	logger.Debug("Config: %s", store.Path())

	settingsService = services.NewSettingsService(store, ai.NewConfigValidator(),
		services.WithOverrides(func(s *domain.AppSettings) error {
			return file.ApplyEnv(s, os.LookupEnv)
		}),
		services.WithOverrides(func(s *domain.AppSettings) error {
			if dataDir != "" {
				s.Store.Dir = dataDir
			}
			return nil
		}),
	)
	return settingsService, nil
}

func openConfigStore() (driven.ConfigStore, error) {
	if noConfig {
		return memory.NewConfigStore(), nil
	}
	if configPath != "" {
		return file.NewConfigStoreAt(configPath)
	}
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}
	return file.NewConfigStore(dir)
}

// requireSources returns the page source registry.
func requireSources() *normalisers.Registry {
	if pageSources == nil {
		pageSources = normalisers.Defaults()
	}
	return pageSources
}

// requireIndex wires the ingestion and retrieval services over one store and
// one embedding provider.
func requireIndex() error {
	if ingestService != nil && retrievalService != nil {
		return nil
	}

	settingsSvc, err := requireSettings()
	if err != nil {
		return err
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	c, err := chunker.New(chunker.WithSettings(settings.Chunk))
	if err != nil {
		return err
	}

	embedder, err := ai.NewEmbeddingService(settings.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)
	logger.Debug("Embedding: %s (%s)", settings.Embedding.Provider, embedder.ModelName())

	store, err := openVectorStore(settings.Store)
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)

	opts := []services.IngestOption{services.WithDuplicatePolicy(settings.Ingest.Duplicates)}
	if len(settings.Ingest.Processors) > 0 {
		pipeline, err := buildPipeline(settings.Ingest)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithPageProcessor(pipeline))
	}

	ingestService = services.NewIngestService(c, embedder, store, opts...)
	retrievalService = services.NewRetrievalService(embedder, store)
	return nil
}

func openVectorStore(settings domain.StoreSettings) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.StoreBackendMemory:
		logger.Debug("Store: memory")
		return memory.NewVectorStore(), nil
	case domain.StoreBackendSQLite:
		store, err := sqlite.NewStore(settings.Dir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Store: %s", store.Path())
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %w: store backend %q",
			domain.ErrConfiguration, domain.ErrUnsupportedType, settings.Backend)
	}
}

func buildPipeline(settings domain.IngestSettings) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	cfg := map[string]any{
		postprocessors.ConfigStripPatterns: settings.StripPatterns,
	}
	pipeline, err := registry.BuildPipeline(settings.Processors, cfg)
	if err != nil {
		return nil, fmt.Errorf("build page processors: %w", err)
	}
	logger.Debug("Page processors: %v", settings.Processors)
	return pipeline, nil
}
