package refbase

import (
	"context"
	"net/url"
)

const (
	signUpEndpoint             = "/auth/signup"
	signInEndpoint             = "/auth/signin"
	meEndpoint                 = "/auth/me"
	profileEndpoint            = "/auth/profile"
	changePasswordEndpoint     = "/auth/change-password"
	forgotPasswordEndpoint     = "/auth/forgot-password"
	verifyResetTokenEndpoint   = "/auth/verify-reset-token"
	resetPasswordEndpoint      = "/auth/reset-password"
	verifyEmailEndpoint        = "/auth/verify-email"
	resendVerificationEndpoint = "/auth/resend-verification-email"
)

// authService implements the AuthService interface
type authService struct {
	client *Client
}

// SignUp registers a new account
func (a *authService) SignUp(ctx context.Context, params *SignUpParams) (*AuthPayload, error) {
	var payload AuthPayload
	if err := a.client.transport.Post(ctx, signUpEndpoint, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SignIn authenticates with email and password
func (a *authService) SignIn(ctx context.Context, email, password string) (*AuthPayload, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var payload AuthPayload
	if err := a.client.transport.Post(ctx, signInEndpoint, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Me fetches the current session's profile
func (a *authService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.client.transport.Get(ctx, meEndpoint, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates profile fields
func (a *authService) UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*User, error) {
	var user User
	if err := a.client.transport.Put(ctx, profileEndpoint, params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the password for the current session
func (a *authService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return a.client.transport.Post(ctx, changePasswordEndpoint, body, nil)
}

// ForgotPassword requests a password reset email
func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{
		"email": email,
	}
	return a.client.transport.Post(ctx, forgotPasswordEndpoint, body, nil)
}

// VerifyResetToken validates a reset token before the reset form is shown
func (a *authService) VerifyResetToken(ctx context.Context, token string) error {
	path := verifyResetTokenEndpoint + "?token=" + url.QueryEscape(token)
	return a.client.transport.Get(ctx, path, nil)
}

// ResetPassword consumes a reset token together with the new password
func (a *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}
	return a.client.transport.Post(ctx, resetPasswordEndpoint, body, nil)
}

// VerifyEmail consumes an email verification token. The backend may issue a
// fresh credential in the payload; adopting it is the session layer's call.
func (a *authService) VerifyEmail(ctx context.Context, token string) (*AuthPayload, error) {
	path := verifyEmailEndpoint + "?token=" + url.QueryEscape(token)

	var payload AuthPayload
	if err := a.client.transport.Get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResendVerificationEmail re-sends the verification email to the current
// session's user
func (a *authService) ResendVerificationEmail(ctx context.Context) error {
	return a.client.transport.Post(ctx, resendVerificationEndpoint, nil, nil)
}
