package providers

import (
	"net/http"
	"strconv"
	"strings"

	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
)

// classifyErrorType determines ErrorType from HTTP status and provider error
// codes. Provider-specific codes take precedence over status codes because
// backends reuse statuses across distinct failure modes.
func classifyErrorType(statusCode int, errorCode string) llmerrors.ErrorType {
	lowerCode := strings.ToLower(errorCode)
	if strings.Contains(lowerCode, "rate") || strings.Contains(lowerCode, "overloaded") {
		return llmerrors.ErrorTypeRateLimit
	}
	if strings.Contains(lowerCode, "timeout") {
		return llmerrors.ErrorTypeTimeout
	}
	if strings.Contains(lowerCode, "auth") || strings.Contains(lowerCode, "unauthorized") ||
		strings.Contains(lowerCode, "permission") || strings.Contains(lowerCode, "forbidden") {
		return llmerrors.ErrorTypeAuth
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return llmerrors.ErrorTypeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmerrors.ErrorTypeAuth
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return llmerrors.ErrorTypeTimeout
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return llmerrors.ErrorTypeInvalidResponse
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llmerrors.ErrorTypeNetwork
	default:
		if statusCode >= http.StatusInternalServerError {
			return llmerrors.ErrorTypeNetwork
		}
		return llmerrors.ErrorTypeUnknown
	}
}

// parseRetryAfter extracts the Retry-After header as whole seconds.
// Returns 0 when the header is absent or not a numeric value.
func parseRetryAfter(header http.Header) int {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
