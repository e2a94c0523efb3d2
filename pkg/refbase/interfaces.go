package refbase

import (
	"context"
)

// AuthService handles all authentication and account operations
type AuthService interface {
	// SignUp registers a new account and returns the issued credential
	SignUp(ctx context.Context, params *SignUpParams) (*AuthPayload, error)

	// SignIn authenticates with email and password
	SignIn(ctx context.Context, email, password string) (*AuthPayload, error)

	// Me fetches the current session's profile
	Me(ctx context.Context) (*User, error)

	// UpdateProfile updates profile fields
	UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*User, error)

	// ChangePassword changes the password for the current session
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error

	// ForgotPassword requests a password reset email
	ForgotPassword(ctx context.Context, email string) error

	// VerifyResetToken validates a reset token before the reset form is shown
	VerifyResetToken(ctx context.Context, token string) error

	// ResetPassword consumes a reset token together with the new password
	ResetPassword(ctx context.Context, token, newPassword string) error

	// VerifyEmail consumes an email verification token; the backend may
	// return a fresh credential
	VerifyEmail(ctx context.Context, token string) (*AuthPayload, error)

	// ResendVerificationEmail re-sends the verification email to the
	// current session's user
	ResendVerificationEmail(ctx context.Context) error
}

// Transport handles HTTP communication with the backend. Every failure is
// surfaced as an *APIError; success bodies are decoded into result.
type Transport interface {
	Get(ctx context.Context, path string, result interface{}) error
	Post(ctx context.Context, path string, body, result interface{}) error
	Put(ctx context.Context, path string, body, result interface{}) error
	Delete(ctx context.Context, path string, result interface{}) error
}

// Navigator receives the navigation side effect of SignOut. Implementations
// route the user to the sign-in entry point of whatever surface embeds the
// SDK.
type Navigator interface {
	ToSignIn()
}
