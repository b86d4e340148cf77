package auth

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"golang.org/x/oauth2"
)

// TokenSource exposes a TokenManager as an oauth2.TokenSource, for callers
// that build their own HTTP clients with oauth2.NewClient.
func TokenSource(ctx context.Context, manager TokenManager) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: manager}
}

type tokenSource struct {
	ctx     context.Context //nolint:containedctx // oauth2.TokenSource has no context parameter
	manager TokenManager
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	if s.manager == nil {
		return nil, fmt.Errorf("%w: no credentials configured", aidbox.ErrAuthorization)
	}

	raw, err := s.manager.GetToken(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	token := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}

	if expiresAt, err := ParseExpiry(raw); err == nil {
		token.Expiry = expiresAt
	}

	return token, nil
}
