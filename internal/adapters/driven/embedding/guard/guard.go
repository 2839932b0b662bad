// Package guard decorates an embedding service with the protections every
// provider call needs: a per-call timeout, client-side rate limiting, a
// circuit breaker, parallel sub-batching with ordered reassembly, result
// validation and retryable/fatal error classification.
//
// Wrap a LazyService in a Service to get a provider that is constructed on
// first use and guarded on every call:
//
//	svc := guard.New(guard.Lazy(factory, model, dims), guard.WithTimeout(10*time.Second))
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/studymate/internal/adapters/driven/embedding"
	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default guard values.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultBatchSize      = 64
	DefaultConcurrency    = 4
	DefaultBreakerTrips   = 5
	DefaultBreakerTimeout = 30 * time.Second
)

// Service guards every call to an inner embedding service.
type Service struct {
	inner       driven.EmbeddingService
	timeout     time.Duration
	batchSize   int
	concurrency int
	limiter     *RateLimiter
	breaker     *gobreaker.CircuitBreaker

	breakerTrips   uint32
	breakerTimeout time.Duration
	breakerOff     bool
}

// Option configures the guard.
type Option func(*Service)

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBatchSize sets the largest batch sent in one provider call.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency sets how many sub-batches are embedded in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRateLimit paces provider calls. A non-positive rate disables pacing.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(s *Service) {
		s.limiter = NewRateLimiter(requestsPerSecond, burst)
	}
}

// WithBreaker opens the circuit after trips consecutive failures and
// probes again after timeout.
func WithBreaker(trips uint32, timeout time.Duration) Option {
	return func(s *Service) {
		if trips > 0 {
			s.breakerTrips = trips
		}
		if timeout > 0 {
			s.breakerTimeout = timeout
		}
	}
}

// WithoutBreaker disables the circuit breaker.
func WithoutBreaker() Option {
	return func(s *Service) {
		s.breakerOff = true
	}
}

// New wraps inner with the given options.
func New(inner driven.EmbeddingService, opts ...Option) *Service {
	s := &Service{
		inner:          inner,
		timeout:        DefaultTimeout,
		batchSize:      DefaultBatchSize,
		concurrency:    DefaultConcurrency,
		limiter:        NewRateLimiter(0, 1),
		breakerTrips:   DefaultBreakerTrips,
		breakerTimeout: DefaultBreakerTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if !s.breakerOff {
		trips := s.breakerTrips
		s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "embedding",
			MaxRequests: 1,
			Timeout:     s.breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= trips
			},
			IsSuccessful: func(err error) bool {
				// Cancellation says nothing about provider health.
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
			},
		})
	}
	return s
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in sub-batches of at most the configured batch
// size, several at a time. Results are reassembled in input order. If any
// sub-batch fails the whole call fails and no vectors are returned.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batches := split(texts, s.batchSize)
	results := make([][][]float32, len(batches))
	if len(batches) > 1 {
		logger.Debug("Embedding %d texts in %d batches (concurrency %d)",
			len(texts), len(batches), s.concurrency)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			vecs, err := s.call(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
			}
			results[i] = vecs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, vecs := range results {
		embeddings = append(embeddings, vecs...)
	}
	if err := validate(embeddings, len(texts)); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// call embeds one sub-batch under the rate limiter, breaker and timeout.
func (s *Service) call(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, classify(fmt.Errorf("rate limit wait: %w", err))
	}

	run := func() ([][]float32, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		vecs, err := s.inner.EmbedBatch(callCtx, texts)
		if err != nil {
			return nil, err
		}
		if err := validate(vecs, len(texts)); err != nil {
			return nil, err
		}
		return vecs, nil
	}

	var vecs [][]float32
	var err error
	if s.breaker == nil {
		vecs, err = run()
	} else {
		var out any
		out, err = s.breaker.Execute(func() (any, error) {
			return run()
		})
		if err == nil {
			vecs = out.([][]float32)
		}
	}
	if err != nil {
		if embedding.IsRateLimited(err) {
			s.limiter.Backoff(0)
		}
		return nil, classify(err)
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping validates the provider within the configured timeout.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.inner.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the inner service.
func (s *Service) Close() error {
	return s.inner.Close()
}

// split cuts texts into consecutive slices of at most size elements.
func split(texts []string, size int) [][]string {
	batches := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		batches = append(batches, texts[start:min(start+size, len(texts))])
	}
	return batches
}

// validate checks count, uniform non-zero dimension and finite components.
func validate(vecs [][]float32, want int) error {
	if len(vecs) != want {
		return domain.NewEmbeddingError(
			fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), want), false)
	}
	if want == 0 {
		return nil
	}
	dim := len(vecs[0])
	for i, v := range vecs {
		if len(v) == 0 || len(v) != dim {
			return domain.NewEmbeddingError(
				fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim), false)
		}
		if err := domain.CheckFinite(v); err != nil {
			return domain.NewEmbeddingError(fmt.Errorf("vector %d: %w", i, err), false)
		}
	}
	return nil
}

// classify turns any failure into an *domain.EmbeddingError.
func classify(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.NewEmbeddingError(fmt.Errorf("provider circuit open: %w", err), true)
	default:
		return embedding.TransportError("embedding", err)
	}
}
