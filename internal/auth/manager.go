package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
)

// TokenManager supplies bearer tokens to the HTTP layer.
type TokenManager interface {
	// GetToken returns a usable token, obtaining a new one if needed.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken discards the current token and obtains a new one.
	RefreshToken(ctx context.Context) error
	// SetToken replaces the current token.
	SetToken(token string, expiresAt time.Time)
}

// StaticTokenManager serves a token obtained elsewhere. It cannot refresh.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps token. The expiry is read from the token when it
// is a JWT; otherwise the token never expires client-side.
func NewStaticTokenManager(token string) *StaticTokenManager {
	expiresAt, err := ParseExpiry(token)
	if err != nil {
		expiresAt = time.Time{}
	}

	store := NewTokenStore()
	store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})

	return &StaticTokenManager{store: store}
}

// GetToken returns the token, or ErrAuthorization once it has expired.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", fmt.Errorf("%w: token expired", aidbox.ErrAuthorization)
	}

	return token.AccessToken, nil
}

// RefreshToken always fails: a static token has no credentials to refresh with.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return fmt.Errorf("%w: token cannot be refreshed", aidbox.ErrAuthorization)
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}
