package aidboxclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/aidbox-client/internal/client"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
)

// New creates an Aidbox client. When no token is configured the email and
// password are exchanged for one before New returns, so bad credentials fail
// here with aidbox.ErrAuthorization.
func New(ctx context.Context, config *aidbox.Config) (aidbox.Client, error) {
	if config == nil {
		return nil, aidbox.ErrConfigRequired
	}

	normalized := *config
	normalized.Host = NormalizeHost(config.Host)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if normalized.Token == "" {
		err = c.Authenticate(ctx)
		if err != nil {
			c.Close()

			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	return c, nil
}

// NormalizeHost trims a trailing slash and defaults the scheme to https.
func NormalizeHost(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return host
}

// NewWithToken creates a client that uses a pre-obtained bearer token.
func NewWithToken(ctx context.Context, host, token string) (aidbox.Client, error) {
	return New(ctx, &aidbox.Config{
		Host:  host,
		Token: token,
	})
}

// NewWithPassword creates a client that exchanges email and password for a token.
func NewWithPassword(ctx context.Context, host, email, password string) (aidbox.Client, error) {
	return New(ctx, &aidbox.Config{
		Host:     host,
		Email:    email,
		Password: password,
	})
}
