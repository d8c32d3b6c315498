package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited indicates the API rejected the call for quota reasons.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAuthenticationFailed indicates a missing or invalid API key.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrBlocked indicates the prompt was blocked by safety filters.
	ErrBlocked = errors.New("content blocked")

	// ErrEmptyResponse indicates a response without usable parts.
	ErrEmptyResponse = errors.New("empty response")
)

// APIError is the error object returned by the API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error (code %d, status %s): %s", e.Code, e.Status, e.Message)
}

// IsRateLimit reports whether the error is a quota rejection.
func (e *APIError) IsRateLimit() bool {
	return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// IsRetryable reports whether a later retry may succeed.
func (e *APIError) IsRetryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

// classify wraps an API error in the matching sentinel.
func classify(apiErr *APIError) error {
	switch {
	case apiErr.IsRateLimit():
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, apiErr)
	default:
		return apiErr
	}
}
