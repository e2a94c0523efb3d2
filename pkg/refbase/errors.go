package refbase

import (
	"errors"

	internalTypes "github.com/refbase/refbase-go/internal/types"
)

var (
	// ErrNotAuthenticated is returned when no credential is stored
	ErrNotAuthenticated = internalTypes.ErrNotAuthenticated

	// ErrEmailNotVerified is the client-side condition raised when sign-in
	// succeeds but the account's email has not been verified. It never
	// originates from the backend.
	ErrEmailNotVerified = internalTypes.ErrEmailNotVerified

	// ErrCredentialExpired is returned when a stored credential is too old
	ErrCredentialExpired = internalTypes.ErrCredentialExpired

	// ErrTimeout is returned on request timeout (APIError status 408)
	ErrTimeout = internalTypes.ErrTimeout

	// ErrNetwork is returned when no response reached the server
	// (APIError status 0)
	ErrNetwork = internalTypes.ErrNetwork

	// ErrServerError is returned for 5xx responses
	ErrServerError = internalTypes.ErrServerError
)

// APIError is the normalized shape of every failed backend call. Message is
// already localized; callers display it directly.
type APIError = internalTypes.APIError

// EmailNotVerifiedError carries the localized unverified-email condition for
// a specific account. It matches ErrEmailNotVerified under errors.Is so
// callers can route the user into a verification flow instead of showing a
// generic failure.
type EmailNotVerifiedError struct {
	Email   string
	Message string
}

func (e *EmailNotVerifiedError) Error() string {
	return e.Message
}

// Is reports a match against the ErrEmailNotVerified sentinel
func (e *EmailNotVerifiedError) Is(target error) bool {
	return target == ErrEmailNotVerified
}

// AsAPIError extracts the normalized *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrEmailNotVerified) ||
		errors.Is(err, ErrCredentialExpired) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.ErrorCode == "INVALID_CREDENTIALS"
	}

	return false
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}
