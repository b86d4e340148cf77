package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/auth"
	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name  string
		token *auth.Token
		want  bool
	}{
		{name: "nil", token: nil, want: false},
		{name: "no access token", token: &auth.Token{ExpiresAt: now.Add(time.Hour)}, want: false},
		{name: "zero expiry never expires", token: &auth.Token{AccessToken: "abc"}, want: true},
		{name: "expires after buffer", token: &auth.Token{AccessToken: "abc", ExpiresAt: now.Add(constants.TokenExpiryBuffer + time.Minute)}, want: true},
		{name: "expires inside buffer", token: &auth.Token{AccessToken: "abc", ExpiresAt: now.Add(constants.TokenExpiryBuffer / 2)}, want: false},
		{name: "already expired", token: &auth.Token{AccessToken: "abc", ExpiresAt: now.Add(-time.Minute)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.token.Valid())
		})
	}
}

func TestToken_ValidFromJWTExpiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expiresIn time.Duration
		want      bool
	}{
		{name: "an hour left", expiresIn: time.Hour, want: true},
		{name: "ten seconds left", expiresIn: 10 * time.Second, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := signedToken(t, time.Now().Add(tt.expiresIn))

			expiresAt, err := auth.ParseExpiry(raw)
			require.NoError(t, err)

			token := &auth.Token{AccessToken: raw, TokenType: "Bearer", ExpiresAt: expiresAt}
			assert.Equal(t, tt.want, token.Valid())
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())
	assert.False(t, store.Get().Valid())

	first := &auth.Token{AccessToken: "first"}
	store.Set(first)
	assert.Same(t, first, store.Get())

	store.Set(nil)
	assert.Nil(t, store.Get())
}

func TestTokenStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			store.Set(&auth.Token{AccessToken: "token", ExpiresAt: time.Now().Add(time.Duration(i+1) * time.Hour)})
		}()

		go func() {
			defer wg.Done()

			if token := store.Get(); token != nil {
				assert.Equal(t, "token", token.AccessToken)
			}
		}()
	}

	wg.Wait()

	require.NotNil(t, store.Get())
	assert.True(t, store.Get().Valid())
}
