package refbase

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/refbase/refbase-go/internal/locale"
	"github.com/refbase/refbase-go/internal/transport"
	internalTypes "github.com/refbase/refbase-go/internal/types"
)

const (
	// DefaultBaseURL is the default Refbase API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent
)

// Client is the main Refbase API client
type Client struct {
	// Auth exposes all authentication and account operations
	Auth AuthService

	// Internal fields
	baseURL   string
	transport Transport
	store     CredentialStore
	catalog   *locale.Catalog
	options   *ClientOptions
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL. The REFBASE_API_URL
	// environment variable is consulted when unset.
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Token seeds the credential store with an existing bearer token
	Token string

	// Store is the credential store backing the bearer token. Defaults to
	// an in-memory store; see CredentialFile for file persistence.
	Store CredentialStore

	// CredentialFile persists the credential to a JSON file at this path
	// when Store is unset
	CredentialFile string

	// Locale selects the language of error messages (BCP-47, e.g. "es").
	// Defaults to English.
	Locale string

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures retry behavior; nil means a single attempt
	// per request
	RetryConfig *RetryConfig

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NewClient creates a new Refbase client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	sentryEnabled := opts.SentryDSN != "" || opts.SentryOptions != nil
	if sentryEnabled {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
			sentryEnabled = false
		}
	}

	// Set defaults
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	// Resolve the credential store
	store := opts.Store
	if store == nil {
		if opts.CredentialFile != "" {
			store = NewFileStore(opts.CredentialFile)
		} else {
			store = NewMemoryStore()
		}
	}

	// Seed the store if a token was provided
	if opts.Token != "" {
		if err := store.Set(opts.Token); err != nil {
			return nil, err
		}
	}

	// Capture transport failures in Sentry via the error hook
	hooks := opts.Hooks
	if sentryEnabled {
		hooks = withSentryCapture(hooks)
	}

	// Create transport using the internal package
	trans := transport.NewREST(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		Store:       store,
		Locale:      opts.Locale,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       hooks,
	})

	c := &Client{
		baseURL:   opts.BaseURL,
		transport: trans,
		store:     store,
		catalog:   trans.Catalog(),
		options:   opts,
	}

	c.Auth = &authService{client: c}

	return c, nil
}

// NewClientWithToken creates a client with an auth token
func NewClientWithToken(token string) (*Client, error) {
	return NewClient(&ClientOptions{
		Token: token,
	})
}

// SetToken stores the authentication token
func (c *Client) SetToken(token string) error {
	return c.store.Set(token)
}

// ClearToken removes the stored authentication token
func (c *Client) ClearToken() error {
	return c.store.Clear()
}

// Token returns the currently stored bearer token, or "" when anonymous.
func (c *Client) Token() string {
	token, err := c.store.Get()
	if err != nil {
		return ""
	}
	return token
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)
}

// withSentryCapture chains Sentry capture onto the caller's error hook.
func withSentryCapture(hooks *Hooks) *Hooks {
	wrapped := &Hooks{}
	if hooks != nil {
		*wrapped = *hooks
	}

	userOnError := wrapped.OnError
	wrapped.OnError = func(ctx context.Context, err error) {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		if userOnError != nil {
			userOnError(ctx, err)
		}
	}
	return wrapped
}
