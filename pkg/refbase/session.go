package refbase

import (
	"context"
	"sync"

	"github.com/refbase/refbase-go/internal/locale"
)

// SessionManager owns the single authoritative authentication state for a
// client: who is signed in, which credential backs that belief, and whether
// a transition is in flight. UI layers observe it via Subscribe; nothing
// else should hold authentication state.
//
// Overlapping SignIn/RefreshUser calls are not serialized or deduplicated;
// the last call to resolve wins for user/token. The mutex protects field
// access only, not whole operations.
type SessionManager struct {
	auth      AuthService
	store     CredentialStore
	catalog   *locale.Catalog
	navigator Navigator
	logger    Logger

	mu          sync.Mutex
	user        *User
	token       string
	loading     bool
	subscribers map[int]func(Session)
	nextSub     int
}

// SessionManagerOptions configures a SessionManager
type SessionManagerOptions struct {
	// Navigator receives the SignOut redirect side effect; nil disables
	// navigation
	Navigator Navigator

	// Observer, when set, is subscribed before bootstrap so it sees every
	// state transition including the initial refresh
	Observer func(Session)

	// BootstrapContext bounds the initial RefreshUser call. Defaults to
	// context.Background().
	BootstrapContext context.Context
}

// NewSessionManager creates the session coordinator for a client and runs
// the bootstrap refresh exactly once before returning: the manager starts
// loading, resolves the stored credential against /auth/me, and comes back
// Authenticated or Anonymous. There is no retry.
func NewSessionManager(client *Client, opts *SessionManagerOptions) *SessionManager {
	if opts == nil {
		opts = &SessionManagerOptions{}
	}

	m := &SessionManager{
		auth:        client.Auth,
		store:       client.store,
		catalog:     client.catalog,
		navigator:   opts.Navigator,
		logger:      client.options.Logger,
		loading:     true,
		subscribers: make(map[int]func(Session)),
	}

	if opts.Observer != nil {
		m.subscribers[m.nextSub] = opts.Observer
		m.nextSub++
	}

	ctx := opts.BootstrapContext
	if ctx == nil {
		ctx = context.Background()
	}
	m.RefreshUser(ctx)

	return m
}

// RefreshUser re-resolves the session from the stored credential. With no
// credential it transitions to Anonymous without a network call. With one,
// it fetches /auth/me; on failure the credential is treated as stale and
// cleared silently, with no redirect and no error surfaced.
func (m *SessionManager) RefreshUser(ctx context.Context) {
	m.setLoading(true)

	token := m.storedToken()
	if token == "" {
		m.setAnonymous()
		m.setLoading(false)
		return
	}

	// Mirror the credential into state before the check so observers see
	// the token while the profile fetch is in flight.
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.notify()

	user, err := m.auth.Me(ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Info("Stored credential rejected, signing out silently", "error", err)
		}
		m.clearStore()
		m.setAnonymous()
		m.setLoading(false)
		return
	}

	m.adopt(user, token)
	m.setLoading(false)
}

// SignIn authenticates and adopts the issued session. When the backend
// returns an unverified account, the session is NOT adopted and the issued
// token is never persisted: the call fails with an EmailNotVerifiedError so
// the caller can route into a verification flow.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*User, error) {
	m.setLoading(true)

	payload, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		m.setLoading(false)
		return nil, err
	}

	// Client-side policy gate: the backend authenticated the account, but
	// unverified accounts do not get a session.
	if payload.User != nil && !payload.User.EmailVerified {
		m.setLoading(false)
		return nil, &EmailNotVerifiedError{
			Email:   payload.User.Email,
			Message: m.catalog.EmailNotVerified(),
		}
	}

	if err := m.store.Set(payload.AccessToken); err != nil && m.logger != nil {
		m.logger.Warn("Failed to persist credential", "error", err)
	}

	m.adopt(payload.User, payload.AccessToken)
	m.setLoading(false)
	return payload.User, nil
}

// SignOut clears the session. The state transition to Anonymous is
// unconditional: a failure clearing the stored credential is logged, never
// surfaced. With redirectToSignIn the navigator is invoked exactly once;
// without it only state is cleared, for silent cleanup after a stale-token
// detection.
func (m *SessionManager) SignOut(redirectToSignIn bool) {
	m.clearStore()
	m.setAnonymous()

	if redirectToSignIn && m.navigator != nil {
		m.navigator.ToSignIn()
	}
}

// VerifyEmail consumes an email verification token. When the backend issues
// a fresh credential alongside the verified profile, the session adopts it.
func (m *SessionManager) VerifyEmail(ctx context.Context, token string) (*User, error) {
	payload, err := m.auth.VerifyEmail(ctx, token)
	if err != nil {
		return nil, err
	}

	if payload.AccessToken != "" {
		if err := m.store.Set(payload.AccessToken); err != nil && m.logger != nil {
			m.logger.Warn("Failed to persist credential", "error", err)
		}
		m.adopt(payload.User, payload.AccessToken)
	}

	return payload.User, nil
}

// Snapshot returns the current session state. IsAuthenticated is derived
// from User at snapshot time.
func (m *SessionManager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers an observer called with a snapshot after every state
// transition. The returned function unsubscribes.
func (m *SessionManager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *SessionManager) snapshotLocked() Session {
	return Session{
		User:            m.user,
		Token:           m.token,
		IsLoading:       m.loading,
		IsAuthenticated: m.user != nil,
	}
}

// notify delivers the current snapshot to all subscribers, outside the lock
func (m *SessionManager) notify() {
	m.mu.Lock()
	snap := m.snapshotLocked()
	fns := make([]func(Session), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (m *SessionManager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
	m.notify()
}

func (m *SessionManager) setAnonymous() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	m.notify()
}

func (m *SessionManager) adopt(user *User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.mu.Unlock()
	m.notify()
}

func (m *SessionManager) storedToken() string {
	token, err := m.store.Get()
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("Failed to read credential", "error", err)
		}
		return ""
	}
	return token
}

func (m *SessionManager) clearStore() {
	if err := m.store.Clear(); err != nil && m.logger != nil {
		m.logger.Warn("Failed to clear credential", "error", err)
	}
}
