package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrStoreWrite", ErrStoreWrite},
		{"ErrStoreQuery", ErrStoreQuery},
		{"ErrDuplicateSource", ErrDuplicateSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrConfiguration, ErrEmbeddingUnavailable, ErrStoreWrite, ErrStoreQuery,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestEmbeddingError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("matches ErrEmbeddingUnavailable", func(t *testing.T) {
		err := NewEmbeddingError(cause, true)
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("embed chunks: %w", NewEmbeddingError(cause, false))
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

		var embErr *EmbeddingError
		require.ErrorAs(t, err, &embErr)
		assert.False(t, embErr.Retryable)
	})

	t.Run("message names retryability", func(t *testing.T) {
		assert.Contains(t, NewEmbeddingError(cause, true).Error(), "retryable")
		assert.Contains(t, NewEmbeddingError(cause, false).Error(), "fatal")
		assert.Contains(t, NewEmbeddingError(cause, false).Error(), "connection refused")
	})

	t.Run("nil cause", func(t *testing.T) {
		err := &EmbeddingError{Retryable: true}
		assert.Contains(t, err.Error(), "embedding service unavailable")
		assert.NoError(t, err.Unwrap())
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"bare sentinel", ErrEmbeddingUnavailable, false},
		{"retryable", NewEmbeddingError(errors.New("timeout"), true), true},
		{"fatal", NewEmbeddingError(errors.New("no key"), false), false},
		{"wrapped retryable", fmt.Errorf("x: %w", NewEmbeddingError(errors.New("t"), true)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestRetrievalError(t *testing.T) {
	t.Run("embed stage unwraps to embedding error", func(t *testing.T) {
		err := &RetrievalError{
			Stage: RetrievalStageEmbed,
			Err:   NewEmbeddingError(errors.New("timeout"), true),
		}
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		assert.NotErrorIs(t, err, ErrStoreQuery)
		assert.True(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "embed stage")
	})

	t.Run("store stage unwraps to store error", func(t *testing.T) {
		err := &RetrievalError{
			Stage: RetrievalStageStore,
			Err:   fmt.Errorf("%w: dimension mismatch", ErrStoreQuery),
		}
		assert.ErrorIs(t, err, ErrStoreQuery)
		assert.NotErrorIs(t, err, ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "store stage")
	})
}
