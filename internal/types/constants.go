package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default Refbase API base URL
	DefaultBaseURL = "https://api.refbase.io"

	// EnvBaseURL is the environment variable overriding the base URL
	EnvBaseURL = "REFBASE_API_URL"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "refbase-go/1.0.0"

	// CredentialTTL is how long a stored credential stays valid without use.
	// Mirrors the 7-day sliding expiry of the web client's auth cookie.
	CredentialTTL = 7 * 24 * time.Hour
)

// Common errors
var (
	// ErrNotAuthenticated is returned when no credential is stored
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmailNotVerified is raised client-side when sign-in succeeds but the
	// account's email address has not been verified
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrCredentialExpired is returned when a stored credential is too old
	ErrCredentialExpired = errors.New("credential expired")

	// ErrTimeout is returned on request timeout
	ErrTimeout = errors.New("request timeout")

	// ErrNetwork is returned when no response reached the server
	ErrNetwork = errors.New("network error")

	// ErrServerError is returned for 5xx responses
	ErrServerError = errors.New("server error")
)
