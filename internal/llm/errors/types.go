// Package errors defines the shared failure taxonomy for provider calls.
// Error types determine whether the orchestrator should retry an operation
// and with what backoff, separating transient from permanent failures.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// ErrorType categorizes provider call failures for retry classification.
type ErrorType string

const (
	// ErrorTypeTimeout indicates request timeout or deadline exceeded (retryable).
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeRateLimit indicates rate limit exceeded, retry with backoff (retryable).
	ErrorTypeRateLimit ErrorType = "rate_limited"

	// ErrorTypeNetwork indicates network connectivity issues (retryable).
	ErrorTypeNetwork ErrorType = "network_error"

	// ErrorTypeAuth indicates authentication failed (non-retryable).
	ErrorTypeAuth ErrorType = "auth_failed"

	// ErrorTypeInvalidResponse indicates the provider returned a malformed
	// or unusable response (non-retryable).
	ErrorTypeInvalidResponse ErrorType = "invalid_response"

	// ErrorTypeUnknown indicates an unclassified error (non-retryable by
	// conservative default).
	ErrorTypeUnknown ErrorType = "unknown"
)

// Common provider operation errors for consistent error handling.
var (
	// ErrInvalidResponse indicates the provider returned an invalid response.
	ErrInvalidResponse = errors.New("invalid provider response")

	// ErrMaxRetriesExceeded indicates maximum retry attempts exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

// ProviderError captures a structured failure from a provider call. It
// includes the HTTP status, provider-specific error code, classified type,
// and retry timing guidance when the backend supplied it.
type ProviderError struct {
	Provider   string    `json:"provider"`    // Provider name
	StatusCode int       `json:"status_code"` // HTTP status code, 0 for transport failures
	Message    string    `json:"message"`     // Error message
	Code       string    `json:"code"`        // Provider error code
	Type       ErrorType `json:"type"`        // Classified error type
	RetryAfter int       `json:"retry_after"` // Retry-After header value in seconds
}

// Error returns the formatted provider error with status code context.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// IsRetryable reports whether the error warrants a retry attempt.
// Timeouts, rate limits, and network failures are transient; authentication
// and invalid-response failures are permanent.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// GetRetryAfter returns the backend-specified retry delay, zero when absent.
func (e *ProviderError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// IsRetryableError reports whether an arbitrary error warrants retry.
// Classifies structured provider errors first, then transport-level
// conditions; unknown errors default to non-retryable to avoid retry loops.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.IsRetryable()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return isNetworkError(err)
}

// Classify wraps an arbitrary transport error into a ProviderError for the
// named provider. Structured provider errors pass through unchanged.
func Classify(provider string, err error) *ProviderError {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr
	}

	errType := ErrorTypeUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = ErrorTypeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		errType = ErrorTypeTimeout
	case isNetworkError(err):
		errType = ErrorTypeNetwork
	case errors.Is(err, ErrInvalidResponse):
		errType = ErrorTypeInvalidResponse
	}

	return &ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Type:     errType,
	}
}

// isNetworkError checks for network-related errors using type assertions
// rather than fragile string matching.
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
