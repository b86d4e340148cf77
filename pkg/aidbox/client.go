package aidbox

import (
	"context"
	"fmt"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/oauth2"
)

// Fetcher performs an authenticated read against the server and returns the
// decoded payload with field names already converted to snake_case.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (map[string]any, error)
}

// Session is what resources, references and search sets need from the client:
// a way to read from the server and a way to resolve schemas.
type Session interface {
	Fetcher
	Schema(ctx context.Context, resourceType string) (Schema, error)
}

// Client is the authenticated entry point.
type Client interface {
	Session

	// Resource builds a validated resource of the given type.
	Resource(ctx context.Context, resourceType string, fields map[string]any) (*Resource, error)
	// Resources starts a search over the given resource type.
	Resources(resourceType string) *SearchSet
	// Host returns the server address the client talks to.
	Host() string
	// Token returns the bearer token in use.
	Token(ctx context.Context) (string, error)
	// TokenSource exposes the client's credentials to oauth2.NewClient.
	TokenSource(ctx context.Context) oauth2.TokenSource
	// Close releases connections held by the schema cache backend.
	Close()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication precedence
//
//  1. Token: if set, it is used directly as a static Bearer token.
//  2. Email/Password: exchanged for an identity token through the server's
//     authorization endpoint. The exchange happens when the client is built,
//     so bad credentials fail construction with ErrAuthorization. The token
//     is re-obtained when it expires or the server answers 401.
//
// # Timeouts and retries
//
// Per-request timeouts should be controlled via the context passed to client
// methods. Transient failures (>=500, 429, connection errors) are retried
// according to RetryMax/RetryWaitMin/RetryWaitMax.
type Config struct {
	// Host: base URL of the server (e.g., "https://box.example.com").
	// aidboxclient.New trims a trailing slash and adds "https://" if no
	// scheme is present.
	Host string

	// Token: pre-obtained bearer token.
	Token string
	// Email: account email for the credential exchange.
	Email string
	// Password: account password for the credential exchange.
	Password string
	// ClientID: client identifier sent to the authorization endpoint.
	// Defaults to "sansara".
	ClientID string
	// Scope: scope requested from the authorization endpoint. Defaults to
	// "openid profile email".
	Scope string

	// HTTPTimeout: overall timeout of a single HTTP attempt.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: optional hooks run around every HTTP exchange.
	Interceptors *InterceptorChain

	// SchemaCache: optional shared backend for attribute schemas. Nil keeps
	// schemas in process memory only.
	SchemaCache *CacheConfig
}

// Validate checks that the configuration can produce a working client.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if c.Host == "" {
		return ErrHostRequired
	}

	if c.Token == "" && (c.Email == "" || c.Password == "") {
		return ErrCredentialsRequired
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.Host, is.URL),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.RetryMax, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
