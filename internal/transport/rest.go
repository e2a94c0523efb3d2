package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/refbase/refbase-go/internal/locale"
	"github.com/refbase/refbase-go/internal/types"
)

const (
	authHeaderKey = "Authorization"
	contentType   = "application/json"
)

// authRouteMarkers identify authentication endpoints. On these routes a bare
// 401 means invalid credentials and a bare 404 means user not found, instead
// of the generic status messages.
var authRouteMarkers = []string{
	"/auth/signin",
	"/auth/signup",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/auth/verify",
	"/auth/change-password",
}

// REST is the single chokepoint for all backend calls. It attaches the bearer
// token from the credential store to every request, clears the token on any
// 401 response, and converts every failure into a *types.APIError.
type REST struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	store       types.CredentialStore
	catalog     *locale.Catalog
	logger      types.Logger
	hooks       *types.Hooks
}

// Options for the REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	Store       types.CredentialStore
	Locale      string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// Envelope is the backend's wrapped response shape. Endpoints may also return
// the resource directly; decode handles both through the same path.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody is the backend's error payload, either nested under "error" in an
// envelope or returned flat.
type ErrorBody struct {
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode"`
	StatusCode int    `json:"statusCode"`
}

// NewREST creates a new REST transport
func NewREST(opts *Options) *REST {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv(types.EnvBaseURL)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Create retry client if configured; default is a single attempt
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	// Set default headers
	headers := map[string]string{
		"Accept":       contentType,
		"Content-Type": contentType,
		"User-Agent":   types.UserAgent,
		"X-Device-Id":  uuid.New().String(),
	}

	// Merge custom headers
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &REST{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		store:       opts.Store,
		catalog:     locale.Resolve(opts.Locale),
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// Get executes a GET request
func (t *REST) Get(ctx context.Context, path string, result interface{}) error {
	return t.do(ctx, http.MethodGet, path, nil, result)
}

// Post executes a POST request with an optional JSON body
func (t *REST) Post(ctx context.Context, path string, body, result interface{}) error {
	return t.do(ctx, http.MethodPost, path, body, result)
}

// Put executes a PUT request with an optional JSON body
func (t *REST) Put(ctx context.Context, path string, body, result interface{}) error {
	return t.do(ctx, http.MethodPut, path, body, result)
}

// Delete executes a DELETE request
func (t *REST) Delete(ctx context.Context, path string, result interface{}) error {
	return t.do(ctx, http.MethodDelete, path, nil, result)
}

// Catalog returns the transport's resolved message catalog, shared with the
// session layer so client-side conditions localize consistently.
func (t *REST) Catalog() *locale.Catalog {
	return t.catalog
}

// do executes one request. Single attempt unless a retry client is configured.
func (t *REST) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	// Set headers
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}

	// Attach bearer token if one is stored
	if token := t.token(); token != "" {
		httpReq.Header.Set(authHeaderKey, "Bearer "+token)
	}

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("API request", "method", method, "path", path)
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		apiErr := t.normalizeTransportError(err)
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, apiErr)
		}
		return apiErr
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("API response", "method", method, "path", path, "status", resp.StatusCode, "duration", duration)
	}

	// A 401 from any call invalidates the stored token. No redirect happens
	// here; that decision belongs to the caller.
	if resp.StatusCode == http.StatusUnauthorized {
		t.clearToken()
	}

	if resp.StatusCode >= 400 {
		apiErr := t.normalizeHTTPError(resp.StatusCode, path, respBody)
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, apiErr)
		}
		return apiErr
	}

	return t.decode(resp.StatusCode, path, respBody, result)
}

// decode unmarshals a success response into result, accepting both the
// wrapped {success, data, error} envelope and a direct resource body.
func (t *REST) decode(status int, path string, body []byte, result interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && (env.Success != nil || env.Data != nil || env.Error != nil) {
		// Wrapped envelope. A success=false body on a 2xx response is still
		// a failure and normalizes like any other error.
		if env.Success != nil && !*env.Success {
			return t.normalizeHTTPError(status, path, body)
		}
		if result == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal response data")
		}
		return nil
	}

	// Direct resource body
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}

// normalizeHTTPError converts an HTTP failure into an APIError with a
// localized message. Resolution order: error-code table, message-content
// signals, status fallback (with auth-route reclassification of 401/404),
// raw backend message, generic message.
func (t *REST) normalizeHTTPError(httpStatus int, path string, body []byte) *types.APIError {
	parsed := parseErrorBody(body)

	status := httpStatus
	if parsed.StatusCode != 0 {
		status = parsed.StatusCode
	}

	message := ""
	if parsed.ErrorCode != "" {
		if msg, ok := t.catalog.ErrorCode(parsed.ErrorCode); ok {
			message = msg
		}
	}
	if message == "" && parsed.Message != "" {
		if msg, ok := t.catalog.FromMessage(parsed.Message); ok {
			message = msg
		}
	}
	if message == "" {
		if msg, ok := t.catalog.Status(status, isAuthRoute(path)); ok {
			message = msg
		}
	}
	if message == "" {
		message = parsed.Message
	}
	if message == "" {
		message = t.catalog.Unexpected()
	}

	apiErr := types.NewAPIError(status, parsed.ErrorCode, message)
	if status >= 500 {
		apiErr.Err = types.ErrServerError
	}
	return apiErr
}

// normalizeTransportError classifies a failure where no response reached the
// server: timeouts map to status 408, everything else to status 0.
func (t *REST) normalizeTransportError(err error) *types.APIError {
	if isTimeout(err) {
		apiErr := types.NewAPIError(http.StatusRequestTimeout, "", t.catalog.Timeout())
		apiErr.Err = types.ErrTimeout
		return apiErr
	}
	apiErr := types.NewAPIError(0, "", t.catalog.Network())
	apiErr.Err = types.ErrNetwork
	return apiErr
}

// parseErrorBody extracts the backend error payload from either an envelope
// with a nested error object or a flat error body.
func parseErrorBody(body []byte) ErrorBody {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return *env.Error
	}

	var flat ErrorBody
	_ = json.Unmarshal(body, &flat)
	return flat
}

// isAuthRoute reports whether the request path targets an authentication
// endpoint.
func isAuthRoute(path string) bool {
	for _, marker := range authRouteMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// isTimeout reports whether a transport error represents a timeout rather
// than a connectivity failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// token reads the stored bearer token; a store failure reads as "no token".
func (t *REST) token() string {
	if t.store == nil {
		return ""
	}
	token, err := t.store.Get()
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("Failed to read credential", "error", err)
		}
		return ""
	}
	return token
}

// clearToken removes the stored credential. Failures are logged, never fatal.
func (t *REST) clearToken() {
	if t.store == nil {
		return
	}
	if err := t.store.Clear(); err != nil && t.logger != nil {
		t.logger.Warn("Failed to clear credential", "error", err)
	}
}

// doRequest executes the HTTP request with retry if configured
func (t *REST) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		// Convert to retryable request
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
