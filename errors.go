package streamui

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidModel indicates the requested model is not supported by the provider.
	ErrInvalidModel = errors.New("streamui: invalid or unsupported model")

	// ErrInvalidAPIKey indicates the API key is missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("streamui: invalid API key")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("streamui: rate limit exceeded")

	// ErrInvalidRequest indicates the request, or the model's tool arguments, are invalid.
	ErrInvalidRequest = errors.New("streamui: invalid request")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("streamui: provider unavailable")
)

// ModelError represents an error related to model validation or availability.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrInvalidModel)
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model '%s' for provider '%s': %s (%v)", e.Model, e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid request parameter or tool argument.
type ValidationError struct {
	Field  string // The parameter field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped error (usually ErrInvalidRequest)
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for '%s' (value: %v): %s (%v)", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ProviderError represents an error from the underlying provider API.
type ProviderError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message from provider
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies an HTTP status from a provider SDK error.
func NewProviderError(provider ProviderID, statusCode int, message string) *ProviderError {
	pe := &ProviderError{
		Provider:   provider.String(),
		StatusCode: statusCode,
		Message:    message,
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		pe.Err = ErrInvalidAPIKey
	case statusCode == 429:
		pe.Err = ErrRateLimited
		pe.Retryable = true
	case statusCode == 400 || statusCode == 404 || statusCode == 422:
		pe.Err = ErrInvalidRequest
	default:
		pe.Err = ErrProviderUnavailable
		pe.Retryable = statusCode >= 500 || statusCode == 408
	}
	return pe
}

// IsRetryable checks if an error is potentially retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// IsInvalidRequest checks if an error indicates invalid request parameters.
// These errors are not retryable and require request changes.
func IsInvalidRequest(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidModel) {
		return true
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
	}

	return false
}
