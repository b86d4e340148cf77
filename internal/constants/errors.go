package constants

import "errors"

// Configuration errors.
var (
	ErrNoHostConfigured  = errors.New("no host configured, use 'aidbox login' or --host")
	ErrNotAuthenticated  = errors.New("not authenticated, use 'aidbox login' first")
	ErrInvalidFilter     = errors.New("invalid filter, expected key=value")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrNoTokenInRedirect = errors.New("no id_token in redirect location")
	ErrNoRedirect        = errors.New("authorization endpoint did not redirect")
)
