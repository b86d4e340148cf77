package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
)

// IDTokenConfig configures the email/password exchange.
type IDTokenConfig struct {
	Host     string
	Email    string
	Password string
	ClientID string
	Scope    string
	Timeout  time.Duration
	RetryMax int
	Logger   aidbox.Logger
}

// IDTokenManager obtains identity tokens from the server's authorization
// endpoint and re-obtains them when they expire.
type IDTokenManager struct {
	config     *IDTokenConfig
	store      *TokenStore
	httpClient *retryablehttp.Client
	mu         sync.Mutex
}

// NewIDTokenManager creates a manager. No request is made until a token is needed.
func NewIDTokenManager(config *IDTokenConfig) *IDTokenManager {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = constants.ShortHTTPTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = config.RetryMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = timeout
	retryClient.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &IDTokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: retryClient,
	}
}

// GetToken returns the current token, authorizing again when it is missing or expired.
func (m *IDTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.Authorize(ctx)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken authorizes again regardless of the current token.
func (m *IDTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.Authorize(ctx)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken replaces the current token.
func (m *IDTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}

// Authorize posts the credentials to the authorization endpoint and reads the
// identity token from the redirect it answers with. Any other answer is an
// authorization failure.
func (m *IDTokenManager) Authorize(ctx context.Context) (*Token, error) {
	endpoint, err := m.authorizeURL()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"email":    {m.config.Email},
		"password": {m.config.Password},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create authorize request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if m.config.Logger != nil {
		m.config.Logger.Debug("Authorizing", map[string]interface{}{
			"url":   endpoint,
			"email": m.config.Email,
		})
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorize request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("%w: %w (status %d)", aidbox.ErrAuthorization, constants.ErrNoRedirect, resp.StatusCode)
	}

	raw, err := tokenFromLocation(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", aidbox.ErrAuthorization, err)
	}

	expiresAt, err := ParseExpiry(raw)
	if err != nil {
		expiresAt = time.Time{}
	}

	return &Token{AccessToken: raw, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

func (m *IDTokenManager) authorizeURL() (string, error) {
	base, err := url.Parse(strings.TrimSuffix(m.config.Host, "/") + "/" + constants.AuthorizePath)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", m.config.Host, err)
	}

	clientID := m.config.ClientID
	if clientID == "" {
		clientID = constants.DefaultClientID
	}

	scope := m.config.Scope
	if scope == "" {
		scope = constants.DefaultScope
	}

	base.RawQuery = url.Values{
		"client_id":     {clientID},
		"scope":         {scope},
		"response_type": {constants.ResponseTypeIDToken},
	}.Encode()

	return base.String(), nil
}

// tokenFromLocation reads id_token from a redirect target, looking at the
// query string first and then the fragment.
func tokenFromLocation(location string) (string, error) {
	target, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location: %w", err)
	}

	if token := target.Query().Get(constants.IDTokenParam); token != "" {
		return token, nil
	}

	fragment, err := url.ParseQuery(target.Fragment)
	if err == nil {
		if token := fragment.Get(constants.IDTokenParam); token != "" {
			return token, nil
		}
	}

	return "", constants.ErrNoTokenInRedirect
}

// ParseExpiry returns the exp claim of a JWT without verifying its signature.
func ParseExpiry(raw string) (time.Time, error) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}
