package types

import (
	"context"
	"net/http"
	"time"
)

// CredentialStore abstracts where the bearer token lives (memory, file,
// platform keychain). The transport reads it on every request and clears it
// on 401 responses.
type CredentialStore interface {
	// Get returns the stored token, or "" when no credential is stored.
	Get() (string, error)

	// Set stores the token, replacing any previous one.
	Set(token string) error

	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries"`
	RetryWait  time.Duration `json:"retryWait"`
	MaxWait    time.Duration `json:"maxWait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}
