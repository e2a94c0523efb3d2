package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refbase/refbase-go/internal/types"
)

// memStore is a minimal in-memory credential store for tests
type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func newTestTransport(baseURL string, store types.CredentialStore) *REST {
	return NewREST(&Options{
		BaseURL: baseURL,
		Store:   store,
	})
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	store := &memStore{token: "tok-123"}
	trans := newTestTransport(server.URL, store)

	require.NoError(t, trans.Get(context.Background(), "/library/items", nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoTokenNoAuthHeader(t *testing.T) {
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	require.NoError(t, trans.Get(context.Background(), "/auth/forgot-password", nil))
	assert.False(t, hasAuth)
}

func TestUnauthorizedClearsTokenOnAnyRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	store := &memStore{token: "stale"}
	trans := newTestTransport(server.URL, store)

	err := trans.Get(context.Background(), "/library/items", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)

	token, _ := store.Get()
	assert.Empty(t, token, "401 must clear the stored token")
}

func TestErrorCodeTableWinsOverRawMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"errorCode":"INVALID_RESET_TOKEN","message":"raw backend text"}}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Post(context.Background(), "/auth/reset-password", map[string]string{"token": "x"}, nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_RESET_TOKEN", apiErr.ErrorCode)
	assert.Equal(t, "This password reset link is invalid or has expired.", apiErr.Message)
	assert.NotEqual(t, "raw backend text", apiErr.Message)
}

func TestMessageSignalWhenNoErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"message":"usuario no encontrado"}}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Get(context.Background(), "/library/items", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "No account exists with this email address.", apiErr.Message)
}

func TestAuthRouteReclassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	// 404 on an auth route reads as "user not found" even without an errorCode
	err := trans.Post(context.Background(), "/auth/signin", map[string]string{}, nil)
	require.Error(t, err)
	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "No account exists with this email address.", apiErr.Message)

	// The same status on a non-auth route stays generic
	err = trans.Get(context.Background(), "/library/items/42", nil)
	require.Error(t, err)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "The requested resource was not found.", apiErr.Message)
}

func TestBodyStatusCodeTakesPrecedence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"statusCode":409,"errorCode":"EMAIL_ALREADY_REGISTERED"}}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Post(context.Background(), "/auth/signup", map[string]string{"email": "a@b.c"}, nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "This email address is already registered.", apiErr.Message)
	assert.False(t, apiErr.Success)
	assert.NotEmpty(t, apiErr.Timestamp)
}

func TestRawMessageFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"message":"teapot overheated"}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Get(context.Background(), "/library/items", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "teapot overheated", apiErr.Message)
}

func TestUnexpectedFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Get(context.Background(), "/library/items", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "An unexpected error occurred. Please try again.", apiErr.Message)
}

func TestWrappedEnvelopeDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"id":"u-1","email":"a@b.c"}}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	var result struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, trans.Get(context.Background(), "/auth/me", &result))
	assert.Equal(t, "u-1", result.ID)
	assert.Equal(t, "a@b.c", result.Email)
}

func TestDirectResourceDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u-1","email":"a@b.c"}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	var result struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, trans.Put(context.Background(), "/auth/profile", map[string]string{"firstName": "Ada"}, &result))
	assert.Equal(t, "u-1", result.ID)
}

func TestSuccessFalseOn200IsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"errorCode":"VALIDATION_ERROR"}}`))
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Delete(context.Background(), "/library/items/9", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_ERROR", apiErr.ErrorCode)
	assert.Equal(t, "Some fields are invalid. Please review them and try again.", apiErr.Message)
}

func TestTimeoutBecomes408(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	trans := NewREST(&Options{
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 20 * time.Millisecond},
		Store:      &memStore{},
	})

	err := trans.Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 408, apiErr.StatusCode)
	assert.True(t, apiErr.IsTimeout())
	assert.True(t, errors.Is(err, types.ErrTimeout))
	assert.Equal(t, "The request timed out. Please try again.", apiErr.Message)
}

func TestConnectivityFailureBecomesStatusZero(t *testing.T) {
	// Nothing listens on this address
	trans := newTestTransport("http://127.0.0.1:1", &memStore{})

	err := trans.Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.True(t, apiErr.IsNetwork())
	assert.True(t, errors.Is(err, types.ErrNetwork))
}

func TestSingleAttemptByDefault(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	trans := newTestTransport(server.URL, &memStore{})

	err := trans.Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retry without RetryConfig")
	assert.True(t, errors.Is(err, types.ErrServerError))
}

func TestRetryConfigEnablesRetries(t *testing.T) {
	var mu sync.Mutex
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	trans := NewREST(&Options{
		BaseURL: server.URL,
		Store:   &memStore{},
		RetryConfig: &types.RetryConfig{
			MaxRetries: 3,
			RetryWait:  time.Millisecond,
			MaxWait:    5 * time.Millisecond,
		},
	})

	require.NoError(t, trans.Get(context.Background(), "/auth/me", nil))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestSpanishLocale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"errorCode":"INVALID_CREDENTIALS"}}`))
	}))
	defer server.Close()

	trans := NewREST(&Options{
		BaseURL: server.URL,
		Store:   &memStore{},
		Locale:  "es-MX",
	})

	err := trans.Post(context.Background(), "/auth/signin", map[string]string{}, nil)
	require.Error(t, err)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "El correo o la contraseña que ingresaste es incorrecto.", apiErr.Message)
}

func TestErrorHookReceivesNormalizedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var hookErr error
	trans := NewREST(&Options{
		BaseURL: server.URL,
		Store:   &memStore{},
		Hooks: &types.Hooks{
			OnError: func(ctx context.Context, err error) { hookErr = err },
		},
	})

	err := trans.Get(context.Background(), "/library/items", nil)
	require.Error(t, err)
	require.NotNil(t, hookErr)

	var apiErr *types.APIError
	assert.True(t, errors.As(hookErr, &apiErr))
	assert.Equal(t, 403, apiErr.StatusCode)
}
