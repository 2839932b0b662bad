// Package embedding holds helpers shared by the embedding provider adapters.
//
// Providers report failures as *domain.EmbeddingError so callers can tell
// retryable causes (timeouts, rate limits, transient network faults) from
// fatal ones (bad credentials, unknown model, malformed request).
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// maxBodyInError caps how much of a provider's error body ends up in messages.
const maxBodyInError = 512

// ResponseError is a non-2xx reply from a provider.
type ResponseError struct {
	Provider string
	Status   int
	Body     string
}

// Error implements error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.Status, e.Body)
}

// StatusError classifies a non-2xx provider response.
// 408, 429 and 5xx are retryable; any other status is fatal.
func StatusError(provider string, status int, body []byte) error {
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError]
	}
	err := &ResponseError{Provider: provider, Status: status, Body: string(body)}
	return domain.NewEmbeddingError(err, RetryableStatus(status))
}

// IsRateLimited reports whether err carries a 429 provider response.
func IsRateLimited(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Status == http.StatusTooManyRequests
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// TransportError classifies an error from sending a request or reading a reply.
// Deadlines and network faults are retryable; cancellation and anything else
// is fatal. Errors that are already classified pass through unchanged.
func TransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var embErr *domain.EmbeddingError
	if errors.As(err, &embErr) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", provider, err)
	return domain.NewEmbeddingError(wrapped, RetryableTransport(err))
}

// RetryableTransport reports whether a transport error is transient.
func RetryableTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Fatal wraps err as a non-retryable embedding failure.
func Fatal(provider string, err error) error {
	return domain.NewEmbeddingError(fmt.Errorf("%s: %w", provider, err), false)
}

// ToFloat32 converts a JSON-decoded vector.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
