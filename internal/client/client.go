package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/auth"
	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/internal/http"
	"github.com/fivetwenty-io/aidbox-client/internal/naming"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"golang.org/x/oauth2"
)

// Client implements the aidbox.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	host         string
	schemas      *aidbox.SchemaCache
	backend      aidbox.Cache
}

var _ aidbox.Client = (*Client)(nil)

// createTokenManager picks the token manager matching the configured credentials.
func createTokenManager(config *aidbox.Config) auth.TokenManager {
	hasCredentials := config.Email != "" && config.Password != ""

	switch {
	case config.Token != "" && hasCredentials:
		return &fallbackTokenManager{
			static:   auth.NewStaticTokenManager(config.Token),
			idTokens: createIDTokenManager(config),
		}
	case config.Token != "":
		return auth.NewStaticTokenManager(config.Token)
	case hasCredentials:
		return createIDTokenManager(config)
	default:
		return nil
	}
}

func createIDTokenManager(config *aidbox.Config) *auth.IDTokenManager {
	return auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     config.Host,
		Email:    config.Email,
		Password: config.Password,
		ClientID: config.ClientID,
		Scope:    config.Scope,
		RetryMax: config.RetryMax,
		Logger:   config.Logger,
	})
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *aidbox.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client from config. The host is used as given.
func New(ctx context.Context, config *aidbox.Config) (*Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(ctx, config, createTokenManager(config))
}

// NewWithTokenManager creates a client that authenticates through tokenManager
// instead of the credentials in config.
func NewWithTokenManager(ctx context.Context, config *aidbox.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, aidbox.ErrConfigRequired
	}

	if config.Host == "" {
		return nil, aidbox.ErrHostRequired
	}

	host := strings.TrimSuffix(config.Host, "/")

	client := &Client{
		httpClient:   http.NewClient(host, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		host:         host,
	}

	schemaOpts := []aidbox.SchemaCacheOption{}

	if config.Logger != nil {
		schemaOpts = append(schemaOpts, aidbox.WithSchemaLogger(config.Logger))
	}

	if config.SchemaCache != nil {
		backend, err := aidbox.NewCacheFromConfig(config.SchemaCache)
		if err != nil {
			return nil, fmt.Errorf("failed to create schema cache: %w", err)
		}

		client.backend = backend
		schemaOpts = append(schemaOpts, aidbox.WithSchemaBackend(backend))
	}

	client.schemas = aidbox.NewSchemaCache(client, schemaOpts...)

	return client, nil
}

// Authenticate obtains a token now, so bad credentials surface at construction.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.Token(ctx)

	return err
}

// Fetch performs an authenticated GET of path and returns the decoded object
// with its keys converted to snake_case.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	resp, err := c.httpClient.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	decoder.UseNumber()

	var payload map[string]any

	err = decoder.Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", aidbox.ErrMalformedResponse, path, err)
	}

	if payload == nil {
		return nil, fmt.Errorf("%w: %s returned null", aidbox.ErrMalformedResponse, path)
	}

	converted, ok := naming.UnderscoreKeys(payload).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", aidbox.ErrMalformedResponse, path)
	}

	return converted, nil
}

// Schema returns the attribute schema of resourceType, fetched once per client.
func (c *Client) Schema(ctx context.Context, resourceType string) (aidbox.Schema, error) {
	return c.schemas.Get(ctx, resourceType)
}

// Resource builds a validated resource of resourceType.
func (c *Client) Resource(ctx context.Context, resourceType string, fields map[string]any) (*aidbox.Resource, error) {
	return aidbox.NewResource(ctx, c, resourceType, fields, false)
}

// Resources starts a search over resourceType.
func (c *Client) Resources(resourceType string) *aidbox.SearchSet {
	return aidbox.NewSearchSet(c, resourceType)
}

// Host returns the server address.
func (c *Client) Host() string {
	return c.host
}

// Token returns the bearer token in use.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", fmt.Errorf("%w: no credentials configured", aidbox.ErrAuthorization)
	}

	return c.tokenManager.GetToken(ctx)
}

// TokenSource exposes the client's credentials as an oauth2.TokenSource.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return auth.TokenSource(ctx, c.tokenManager)
}

// Close releases connections held by the schema cache backend.
func (c *Client) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

// String returns the host.
func (c *Client) String() string {
	return c.host
}

// fallbackTokenManager serves a pre-obtained token until the server rejects
// it, then switches to the email/password exchange.
type fallbackTokenManager struct {
	static    *auth.StaticTokenManager
	idTokens  *auth.IDTokenManager
	useIDFlow atomic.Bool
}

func (m *fallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	if !m.useIDFlow.Load() {
		token, err := m.static.GetToken(ctx)
		if err == nil {
			return token, nil
		}

		m.useIDFlow.Store(true)
	}

	return m.idTokens.GetToken(ctx)
}

func (m *fallbackTokenManager) RefreshToken(ctx context.Context) error {
	m.useIDFlow.Store(true)

	return m.idTokens.RefreshToken(ctx)
}

func (m *fallbackTokenManager) SetToken(token string, expiresAt time.Time) {
	m.idTokens.SetToken(token, expiresAt)
	m.useIDFlow.Store(true)
}
