package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/logger"
)

// Ensure LazyService implements the interface.
var _ driven.EmbeddingService = (*LazyService)(nil)

// Factory constructs an embedding service.
type Factory func(ctx context.Context) (driven.EmbeddingService, error)

// LazyService defers building the real provider until it is first used.
//
// The factory runs at most once successfully: concurrent first calls wait
// for a single construction, and the built service is reused afterwards.
// A failed construction is not remembered, so the next call tries again.
type LazyService struct {
	factory    Factory
	model      string
	dimensions int

	mu  sync.Mutex
	svc driven.EmbeddingService
}

// Lazy wraps factory. model and dimensions are reported until the real
// service exists.
func Lazy(factory Factory, model string, dimensions int) *LazyService {
	return &LazyService{
		factory:    factory,
		model:      model,
		dimensions: dimensions,
	}
}

// get returns the service, building it on first use.
func (l *LazyService) get(ctx context.Context) (driven.EmbeddingService, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.svc != nil {
		return l.svc, nil
	}

	logger.Debug("Initialising embedding model %s", l.model)
	svc, err := l.factory(ctx)
	if err != nil {
		var embErr *domain.EmbeddingError
		if errors.As(err, &embErr) {
			return nil, err
		}
		return nil, domain.NewEmbeddingError(fmt.Errorf("initialise embedding model: %w", err), true)
	}
	l.svc = svc
	return svc, nil
}

// loaded returns the service if it has been built.
func (l *LazyService) loaded() driven.EmbeddingService {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc
}

// Embed generates a vector embedding for the given text.
func (l *LazyService) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (l *LazyService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

// Dimensions returns the built service's dimension, or the hint.
func (l *LazyService) Dimensions() int {
	if svc := l.loaded(); svc != nil {
		return svc.Dimensions()
	}
	return l.dimensions
}

// ModelName returns the built service's model, or the hint.
func (l *LazyService) ModelName() string {
	if svc := l.loaded(); svc != nil {
		return svc.ModelName()
	}
	return l.model
}

// Ping builds the service if needed and pings it.
func (l *LazyService) Ping(ctx context.Context) error {
	svc, err := l.get(ctx)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close releases the built service, if any.
func (l *LazyService) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.svc == nil {
		return nil
	}
	err := l.svc.Close()
	l.svc = nil
	return err
}
