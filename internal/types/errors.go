package types

import (
	"errors"
	"fmt"
	"time"
)

// APIError is the single normalized shape for every failed backend call. The
// transport constructs one fresh per failure; it is never reused or persisted.
type APIError struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode,omitempty"`
	Timestamp  string `json:"timestamp"`
	Err        error  `json:"-"`
}

// NewAPIError creates an APIError stamped with the current time.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		Success:    false,
		Message:    message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches target
func (e *APIError) Is(target error) bool {
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}

	t, ok := target.(*APIError)
	if !ok {
		return false
	}

	if t.ErrorCode != "" {
		return e.ErrorCode == t.ErrorCode
	}
	return e.StatusCode == t.StatusCode
}

// IsTimeout reports whether the error represents a request timeout.
func (e *APIError) IsTimeout() bool {
	return e.StatusCode == 408
}

// IsNetwork reports whether the error represents a connectivity failure
// where no response reached the server.
func (e *APIError) IsNetwork() bool {
	return e.StatusCode == 0
}
