package aidbox

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced by the client. Network-backed operations return
// ErrAuthorization or ErrNotFound (usually through a *ResponseError), field
// access returns ErrUnknownField (through an *UnknownFieldError).
var (
	ErrAuthorization  = errors.New("authorization failed")
	ErrNotFound       = errors.New("resource not found")
	ErrUnknownField   = errors.New("unknown field")
	ErrMissingID      = errors.New("resource has no id")
	ErrNotImplemented = errors.New("not implemented")
)

// Static errors for configuration and payload handling.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrHostRequired        = errors.New("host is required")
	ErrCredentialsRequired = errors.New("token or email and password are required")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrUnsupportedValue    = errors.New("unsupported value")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCache    = errors.New("unsupported cache type")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrCacheKeyNotFound    = errors.New("key not found")
	ErrCacheEntryExpired   = errors.New("entry expired")
)

// ResponseError is returned when the server answers with a non-success status.
// A 404 unwraps to ErrNotFound, every other status to ErrAuthorization.
type ResponseError struct {
	Method     string `json:"method"      yaml:"method"`
	Path       string `json:"path"        yaml:"path"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Body       []byte `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Unwrap maps the status code onto the client's error kinds.
func (e *ResponseError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return ErrAuthorization
}

// UnknownFieldError reports access to a field outside a resource type's schema.
type UnknownFieldError struct {
	ResourceType string
	Field        string
}

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("invalid attribute `%s` for resource `%s`", e.Field, e.ResourceType)
}

// Unwrap returns ErrUnknownField.
func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthorization checks if the error is an authorization failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsUnknownField checks if the error is an unknown field error.
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}
