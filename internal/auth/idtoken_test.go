package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/auth"
	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizeServer(t *testing.T, location func() string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, "/oauth2/authorize", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sansara", r.URL.Query().Get("client_id"))
		assert.Equal(t, "openid profile email", r.URL.Query().Get("scope"))
		assert.Equal(t, "id_token", r.URL.Query().Get("response_type"))

		assert.NoError(t, r.ParseForm())

		if r.PostForm.Get("email") != "jane@example.com" || r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>login failed</html>"))

			return
		}

		w.Header().Set("Location", location())
		w.WriteHeader(http.StatusFound)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestIDTokenManager_Authorize(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name     string
		location func(token string) string
	}{
		{
			name:     "token in fragment",
			location: func(token string) string { return "https://app.example.com/callback#id_token=" + token + "&state=x" },
		},
		{
			name:     "token in query",
			location: func(token string) string { return "https://app.example.com/callback?id_token=" + token },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := signedToken(t, expiresAt)
			server, _ := authorizeServer(t, func() string { return tt.location(raw) })

			manager := auth.NewIDTokenManager(&auth.IDTokenConfig{
				Host:     server.URL,
				Email:    "jane@example.com",
				Password: "secret",
			})

			token, err := manager.Authorize(context.Background())
			require.NoError(t, err)
			assert.Equal(t, raw, token.AccessToken)
			assert.True(t, token.ExpiresAt.Equal(expiresAt))
		})
	}
}

func TestIDTokenManager_BadCredentials(t *testing.T) {
	t.Parallel()

	server, _ := authorizeServer(t, func() string { return "https://app.example.com/callback#id_token=x" })

	manager := auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     server.URL,
		Email:    "jane@example.com",
		Password: "wrong",
	})

	_, err := manager.GetToken(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, aidbox.ErrAuthorization)
	assert.ErrorIs(t, err, constants.ErrNoRedirect)
}

func TestIDTokenManager_RedirectWithoutToken(t *testing.T) {
	t.Parallel()

	server, _ := authorizeServer(t, func() string { return "https://app.example.com/callback#error=access_denied" })

	manager := auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     server.URL,
		Email:    "jane@example.com",
		Password: "secret",
	})

	_, err := manager.Authorize(context.Background())
	assert.ErrorIs(t, err, aidbox.ErrAuthorization)
	assert.ErrorIs(t, err, constants.ErrNoTokenInRedirect)
}

func TestIDTokenManager_GetTokenReusesValidToken(t *testing.T) {
	t.Parallel()

	raw := signedToken(t, time.Now().Add(time.Hour))
	server, calls := authorizeServer(t, func() string { return "https://app.example.com/#id_token=" + raw })

	manager := auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     server.URL,
		Email:    "jane@example.com",
		Password: "secret",
	})

	for range 3 {
		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, raw, token)
	}

	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, manager.RefreshToken(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestIDTokenManager_ExpiredTokenIsReplaced(t *testing.T) {
	t.Parallel()

	fresh := signedToken(t, time.Now().Add(time.Hour))
	server, calls := authorizeServer(t, func() string { return "https://app.example.com/#id_token=" + fresh })

	manager := auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     server.URL,
		Email:    "jane@example.com",
		Password: "secret",
	})
	manager.SetToken("stale", time.Now().Add(-time.Minute))

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseExpiry(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	parsed, err := auth.ParseExpiry(signedToken(t, expiresAt))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(expiresAt))

	_, err = auth.ParseExpiry(signedToken(t, time.Time{}))
	require.ErrorIs(t, err, constants.ErrNoExpirationClaim)

	_, err = auth.ParseExpiry("opaque-token")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)

	_, err = auth.ParseExpiry("a.b.c")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
}
