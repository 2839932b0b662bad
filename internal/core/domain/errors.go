package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates invalid chunking or provider parameters.
	// It is fatal and reported before any work begins.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmbeddingUnavailable indicates the embedding provider could not be
	// initialised or failed a call. See EmbeddingError for retryability.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreWrite indicates a persistence failure during Add.
	// No entry of the failed batch is visible afterwards.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrStoreQuery indicates a corrupt index or a dimension mismatch
	// detected while answering a query.
	ErrStoreQuery = errors.New("vector store query failed")

	// ErrDuplicateSource indicates a document source already has entries
	// and the duplicate policy forbids adding more.
	ErrDuplicateSource = errors.New("source already indexed")
)

// EmbeddingError is returned by embedding providers.
// It always matches ErrEmbeddingUnavailable via errors.Is.
type EmbeddingError struct {
	// Retryable is true for timeouts, rate limits and transient network faults.
	// It is false for misconfiguration such as a missing API key.
	Retryable bool

	// Err is the underlying cause.
	Err error
}

// NewEmbeddingError wraps err as an EmbeddingError.
func NewEmbeddingError(err error, retryable bool) *EmbeddingError {
	return &EmbeddingError{Retryable: retryable, Err: err}
}

// Error implements error.
func (e *EmbeddingError) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "retryable"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrEmbeddingUnavailable, kind)
	}
	return fmt.Sprintf("%s (%s): %v", ErrEmbeddingUnavailable, kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEmbeddingUnavailable.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingUnavailable
}

// IsRetryable reports whether err carries a retryable EmbeddingError.
func IsRetryable(err error) bool {
	var embErr *EmbeddingError
	if errors.As(err, &embErr) {
		return embErr.Retryable
	}
	return false
}

// RetrievalStage identifies where a similarity query failed.
type RetrievalStage string

// Retrieval stages.
const (
	// RetrievalStageEmbed means the query text could not be embedded.
	RetrievalStageEmbed RetrievalStage = "embed"

	// RetrievalStageStore means the vector store rejected the query.
	RetrievalStageStore RetrievalStage = "store"
)

// RetrievalError is returned by the retrieval service.
// Callers distinguish provider failures from store failures via Stage,
// or via errors.Is against ErrEmbeddingUnavailable and ErrStoreQuery.
type RetrievalError struct {
	Stage RetrievalStage
	Err   error
}

// Error implements error.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed at %s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}
