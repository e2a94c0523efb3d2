// Package locale resolves localized, user-presentable messages for normalized
// API errors. Callers above the HTTP layer display these verbatim; no further
// translation happens upstream.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // default
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

// Catalog holds the message tables for one supported locale.
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// Resolve returns the catalog best matching a BCP-47 preference string such as
// "es" or "es-MX". Unknown or empty preferences fall back to English.
func Resolve(pref string) *Catalog {
	tag := language.English
	if pref != "" {
		if parsed, err := language.Parse(pref); err == nil {
			tag, _, _ = matcher.Match(parsed)
		}
	}

	base, _ := tag.Base()
	if base.String() == "es" {
		return &Catalog{tag: language.Spanish, messages: messagesES}
	}
	return &Catalog{tag: language.English, messages: messagesEN}
}

// Tag returns the catalog's resolved language tag.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// ErrorCode looks up the localized message for a backend error code.
func (c *Catalog) ErrorCode(code string) (string, bool) {
	msg, ok := c.messages[code]
	return msg, ok
}

// FromMessage inspects a raw backend message for known signals and maps it to
// a localized message. Patterns cover English and Spanish backend phrasings so
// the mapping works regardless of which locale the server answered in.
func (c *Catalog) FromMessage(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, sig := range messageSignals {
		for _, pattern := range sig.patterns {
			if strings.Contains(lower, pattern) {
				return c.messages[sig.code], true
			}
		}
	}
	return "", false
}

// Status returns the fallback message for a bare HTTP status. For requests to
// authentication routes, 401 reads as invalid credentials and 404 as user not
// found instead of the generic variants.
func (c *Catalog) Status(status int, authRoute bool) (string, bool) {
	if authRoute {
		switch status {
		case 401:
			return c.messages["INVALID_CREDENTIALS"], true
		case 404:
			return c.messages["USER_NOT_FOUND"], true
		}
	}

	switch status {
	case 400:
		return c.messages["BAD_REQUEST"], true
	case 401:
		return c.messages["UNAUTHORIZED"], true
	case 403:
		return c.messages["FORBIDDEN"], true
	case 404:
		return c.messages["NOT_FOUND"], true
	case 409:
		return c.messages["CONFLICT"], true
	case 422:
		return c.messages["VALIDATION_ERROR"], true
	}
	if status >= 500 {
		return c.messages["INTERNAL_SERVER_ERROR"], true
	}
	return "", false
}

// Network returns the message for a connectivity failure.
func (c *Catalog) Network() string {
	return c.messages[keyNetwork]
}

// Timeout returns the message for a request timeout.
func (c *Catalog) Timeout() string {
	return c.messages[keyTimeout]
}

// Unexpected returns the generic fallback message.
func (c *Catalog) Unexpected() string {
	return c.messages[keyUnexpected]
}

// EmailNotVerified returns the message for the client-side unverified-email
// sign-in gate.
func (c *Catalog) EmailNotVerified() string {
	return c.messages["EMAIL_NOT_VERIFIED"]
}

const (
	keyNetwork    = "_NETWORK"
	keyTimeout    = "_TIMEOUT"
	keyUnexpected = "_UNEXPECTED"
)

// messageSignals are case-insensitive substring patterns matched against raw
// backend messages when no error code resolved. Each signal carries at least
// one English and one Spanish phrasing.
var messageSignals = []struct {
	code     string
	patterns []string
}{
	{
		code:     "USER_NOT_FOUND",
		patterns: []string{"user not found", "no user found", "usuario no encontrado"},
	},
	{
		code:     "EMAIL_NOT_VERIFIED",
		patterns: []string{"email not verified", "not been verified", "correo no verificado"},
	},
	{
		code:     "INVALID_CREDENTIALS",
		patterns: []string{"invalid credentials", "incorrect password", "credenciales inv"},
	},
}

var messagesEN = map[string]string{
	"USER_NOT_FOUND":             "No account exists with this email address.",
	"INVALID_CREDENTIALS":        "The email or password you entered is incorrect.",
	"UNAUTHORIZED":               "Your session has expired. Please sign in again.",
	"FORBIDDEN":                  "You don't have permission to do that.",
	"EMAIL_NOT_VERIFIED":         "Please verify your email address before signing in.",
	"EMAIL_ALREADY_EXISTS":       "An account with this email address already exists.",
	"EMAIL_ALREADY_REGISTERED":   "This email address is already registered.",
	"EMAIL_ALREADY_VERIFIED":     "This email address has already been verified.",
	"INVALID_PASSWORD":           "The current password you entered is incorrect.",
	"SAME_PASSWORD":              "Your new password must be different from the current one.",
	"INVALID_RESET_TOKEN":        "This password reset link is invalid or has expired.",
	"INVALID_VERIFICATION_TOKEN": "This verification link is invalid or has expired.",
	"BAD_REQUEST":                "The request could not be processed. Please check your input.",
	"NOT_FOUND":                  "The requested resource was not found.",
	"CONFLICT":                   "This action conflicts with the current state. Please refresh and try again.",
	"VALIDATION_ERROR":           "Some fields are invalid. Please review them and try again.",
	"INTERNAL_SERVER_ERROR":      "Something went wrong on our end. Please try again later.",
	keyNetwork:                   "Unable to reach the server. Please check your connection.",
	keyTimeout:                   "The request timed out. Please try again.",
	keyUnexpected:                "An unexpected error occurred. Please try again.",
}

var messagesES = map[string]string{
	"USER_NOT_FOUND":             "No existe ninguna cuenta con este correo electrónico.",
	"INVALID_CREDENTIALS":        "El correo o la contraseña que ingresaste es incorrecto.",
	"UNAUTHORIZED":               "Tu sesión ha expirado. Vuelve a iniciar sesión.",
	"FORBIDDEN":                  "No tienes permiso para hacer eso.",
	"EMAIL_NOT_VERIFIED":         "Verifica tu correo electrónico antes de iniciar sesión.",
	"EMAIL_ALREADY_EXISTS":       "Ya existe una cuenta con este correo electrónico.",
	"EMAIL_ALREADY_REGISTERED":   "Este correo electrónico ya está registrado.",
	"EMAIL_ALREADY_VERIFIED":     "Este correo electrónico ya ha sido verificado.",
	"INVALID_PASSWORD":           "La contraseña actual que ingresaste es incorrecta.",
	"SAME_PASSWORD":              "La nueva contraseña debe ser diferente de la actual.",
	"INVALID_RESET_TOKEN":        "Este enlace de restablecimiento no es válido o ha expirado.",
	"INVALID_VERIFICATION_TOKEN": "Este enlace de verificación no es válido o ha expirado.",
	"BAD_REQUEST":                "No se pudo procesar la solicitud. Revisa los datos ingresados.",
	"NOT_FOUND":                  "No se encontró el recurso solicitado.",
	"CONFLICT":                   "Esta acción entra en conflicto con el estado actual. Actualiza e intenta de nuevo.",
	"VALIDATION_ERROR":           "Algunos campos no son válidos. Revísalos e intenta de nuevo.",
	"INTERNAL_SERVER_ERROR":      "Algo salió mal de nuestro lado. Intenta de nuevo más tarde.",
	keyNetwork:                   "No se pudo conectar con el servidor. Revisa tu conexión.",
	keyTimeout:                   "La solicitud tardó demasiado. Intenta de nuevo.",
	keyUnexpected:                "Ocurrió un error inesperado. Intenta de nuevo.",
}
