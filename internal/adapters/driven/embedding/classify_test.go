package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := StatusError("openai", tt.status, []byte("nope"))
			assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
			assert.Contains(t, err.Error(), "openai")
		})
	}
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := []byte(strings.Repeat("x", 4096))
	err := StatusError("ollama", 500, body)
	assert.Less(t, len(err.Error()), 1024)
}

func TestTransportError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, TransportError("p", nil))
	})

	t.Run("deadline is retryable", func(t *testing.T) {
		err := TransportError("p", fmt.Errorf("send: %w", context.DeadlineExceeded))
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("cancel is fatal", func(t *testing.T) {
		err := TransportError("p", context.Canceled)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("network error is retryable", func(t *testing.T) {
		err := TransportError("p", &net.OpError{Op: "dial", Err: errors.New("connection refused")})
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("classified passes through", func(t *testing.T) {
		orig := domain.NewEmbeddingError(errors.New("bad key"), false)
		assert.Same(t, orig, TransportError("p", orig))
	})

	t.Run("unknown is fatal", func(t *testing.T) {
		err := TransportError("p", errors.New("decode response: unexpected EOF"))
		assert.False(t, domain.IsRetryable(err))
	})
}

func TestFatal(t *testing.T) {
	err := Fatal("gemini", errors.New("API key is required"))
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.False(t, domain.IsRetryable(err))
}

func TestToFloat32(t *testing.T) {
	assert.Equal(t, []float32{1, 0.5, -2}, ToFloat32([]float64{1, 0.5, -2}))
	assert.Empty(t, ToFloat32(nil))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(StatusError("openai", 429, nil)))
	assert.True(t, IsRateLimited(fmt.Errorf("batch 1: %w", StatusError("openai", 429, nil))))
	assert.False(t, IsRateLimited(StatusError("openai", 500, nil)))
	assert.False(t, IsRateLimited(errors.New("429")))

	var respErr *ResponseError
	assert.True(t, errors.As(StatusError("ollama", 503, []byte("busy")), &respErr))
	assert.Equal(t, "ollama", respErr.Provider)
	assert.Equal(t, "busy", respErr.Body)
}
