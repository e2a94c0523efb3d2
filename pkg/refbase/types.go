package refbase

import (
	"time"

	internalTypes "github.com/refbase/refbase-go/internal/types"
)

// User represents a Refbase account profile
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	EmailVerified bool      `json:"emailVerified"`
	Plan          string    `json:"plan,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// AuthPayload is the response of authentication endpoints that issue a
// credential (sign-up, sign-in, verify-email).
type AuthPayload struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

// Session is a snapshot of the authentication state owned by a
// SessionManager. IsAuthenticated is always derived from User at snapshot
// time, never stored.
type Session struct {
	User            *User
	Token           string
	IsLoading       bool
	IsAuthenticated bool
}

// SignUpParams are the fields for account registration
type SignUpParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfileParams are the updatable profile fields. Nil fields are left
// unchanged.
type UpdateProfileParams struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// RetryConfig configures optional transport retries. When unset the
// transport makes exactly one attempt per request.
type RetryConfig = internalTypes.RetryConfig

// Hooks provides request lifecycle callbacks for observability
type Hooks = internalTypes.Hooks

// CredentialStore abstracts where the bearer token is persisted. See
// MemoryStore and FileStore for the provided implementations.
type CredentialStore = internalTypes.CredentialStore
