package providers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
)

func TestClassifyErrorType(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		want       llmerrors.ErrorType
	}{
		{"rate limit status", http.StatusTooManyRequests, "", llmerrors.ErrorTypeRateLimit},
		{"rate limit code wins over status", http.StatusOK, "rate_limit_exceeded", llmerrors.ErrorTypeRateLimit},
		{"overloaded code", http.StatusInternalServerError, "overloaded_error", llmerrors.ErrorTypeRateLimit},
		{"unauthorized", http.StatusUnauthorized, "", llmerrors.ErrorTypeAuth},
		{"forbidden", http.StatusForbidden, "", llmerrors.ErrorTypeAuth},
		{"auth code", http.StatusBadRequest, "authentication_error", llmerrors.ErrorTypeAuth},
		{"request timeout", http.StatusRequestTimeout, "", llmerrors.ErrorTypeTimeout},
		{"gateway timeout", http.StatusGatewayTimeout, "", llmerrors.ErrorTypeTimeout},
		{"timeout code", http.StatusOK, "timeout", llmerrors.ErrorTypeTimeout},
		{"bad request", http.StatusBadRequest, "", llmerrors.ErrorTypeInvalidResponse},
		{"unprocessable", http.StatusUnprocessableEntity, "", llmerrors.ErrorTypeInvalidResponse},
		{"server error", http.StatusInternalServerError, "", llmerrors.ErrorTypeNetwork},
		{"bad gateway", http.StatusBadGateway, "", llmerrors.ErrorTypeNetwork},
		{"service unavailable", http.StatusServiceUnavailable, "", llmerrors.ErrorTypeNetwork},
		{"unmapped status", http.StatusTeapot, "", llmerrors.ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyErrorType(tt.statusCode, tt.errorCode))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	header := http.Header{}
	assert.Zero(t, parseRetryAfter(header), "absent header yields zero")

	header.Set("Retry-After", "30")
	assert.Equal(t, 30, parseRetryAfter(header))

	header.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	assert.Zero(t, parseRetryAfter(header), "non-numeric header yields zero")

	header.Set("Retry-After", "-5")
	assert.Zero(t, parseRetryAfter(header))
}
