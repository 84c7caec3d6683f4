package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for storage and lookup failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidMethod  = errors.New("invalid risk scoring method")
	ErrSessionExpired = errors.New("session not found or expired")
)

// ValidationError is a single field-level violation found by the input
// validator.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the complete set of violations for one record. The
// validator never fails fast: callers receive every problem at once.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Messages returns the human-readable field-error strings in order.
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return msgs
}

// APIError is the standardized transport-level error payload.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for the different failure classes.
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidMethod  = "INVALID_METHOD"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeDatabase       = "DATABASE_ERROR"
	ErrCodeSessionStore   = "SESSION_STORE_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new APIError with a UTC timestamp.
func NewAPIError(code, message, requestID string, details ...string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
