package fleetdesk

import (
	"context"
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("fleetdesk: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fleetdesk: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// Error codes the API returns that callers commonly branch on.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeStepIncomplete     = "STEP_INCOMPLETE"
	CodeEmptyQuote         = "EMPTY_QUOTE"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsUnauthorized reports whether err means the token is missing or expired.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsRetryable reports whether err is worth repeating: transport failures and 5xx.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var decodeErr *decodeError
	return !errors.As(err, &decodeErr)
}

// decodeError is a response that arrived but could not be parsed.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "failed to decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
