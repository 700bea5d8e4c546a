// Package errors provides standardized error handling for the chat service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Generative provider errors
	ErrCodeProviderAuthFailed  ErrorCode = "PROVIDER_AUTH_FAILED"
	ErrCodeProviderForbidden   ErrorCode = "PROVIDER_FORBIDDEN"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"

	// Personalization provider errors
	ErrCodeRecommenderTimeout     ErrorCode = "RECOMMENDER_TIMEOUT"
	ErrCodeRecommenderUnavailable ErrorCode = "RECOMMENDER_UNAVAILABLE"

	// Profile lookup errors
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileLookupFailed ErrorCode = "PROFILE_LOOKUP_FAILED"

	// Boundary errors
	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"

	// Extraction errors
	ErrCodeExtractionEmpty ErrorCode = "EXTRACTION_EMPTY"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewProviderAuthError creates a non-retryable generative provider credential error.
func NewProviderAuthError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderAuthFailed,
		Message:   "Generative provider rejected the configured credentials",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderForbiddenError creates a non-retryable generative provider permission error.
func NewProviderForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderForbidden,
		Message:   "Generative provider denied access for this account",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates a retryable generative provider transport error.
func NewProviderUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Generative provider is unreachable or returned a malformed response",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommenderTimeoutError creates a retryable personalization timeout error.
func NewRecommenderTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommenderTimeout,
		Message:   "Personalization service did not answer within the deadline",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommenderUnavailableError creates a retryable personalization transport error.
func NewRecommenderUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommenderUnavailable,
		Message:   "Personalization service request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable profile lookup error.
func NewProfileNotFoundError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "No user profile registered for this identity",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileLookupFailedError creates a retryable profile database error.
func NewProfileLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileLookupFailed,
		Message:   "Database error during profile lookup",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestValidationError creates a non-retryable boundary validation error.
func NewRequestValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Chat request payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionEmptyError marks a reply from which no menu items could be read.
// Callers degrade to the default extraction list; this error is for logging only.
func NewExtractionEmptyError(reply string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionEmpty,
		Message:   "No known menu items found in generative reply",
		Details:   reply,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Policy Helpers
// ==========================

// GetRetryCount returns how many extra attempts a failure with this code earns.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRecommenderTimeout, ErrCodeRecommenderUnavailable:
		return 2
	case ErrCodeProfileLookupFailed:
		return 1
	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeProviderAuthFailed, ErrCodeProviderForbidden, ErrCodeProviderUnavailable:
		return "generative"
	case ErrCodeRecommenderTimeout, ErrCodeRecommenderUnavailable:
		return "personalization"
	case ErrCodeProfileNotFound, ErrCodeProfileLookupFailed:
		return "profile"
	case ErrCodeRequestValidationFailed:
		return "boundary"
	case ErrCodeExtractionEmpty:
		return "extraction"
	default:
		return "internal"
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
