package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// oauthTokenProvider is implemented by providers that know when their
// token expires.
type oauthTokenProvider interface {
	OAuthToken(ctx context.Context) (*oauth2.Token, error)
}

// providerSource serves tokens from a TokenProvider.
type providerSource struct {
	ctx      context.Context
	provider driven.TokenProvider
}

// NewTokenSource returns an oauth2.TokenSource backed by provider, for use
// with option.WithTokenSource. When the provider reports an expiry the
// token is reused until shortly before it lapses; otherwise the provider
// is asked on every request.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	src := providerSource{ctx: ctx, provider: provider}
	if _, ok := provider.(oauthTokenProvider); ok {
		return oauth2.ReuseTokenSource(nil, src)
	}
	return src
}

func (s providerSource) Token() (*oauth2.Token, error) {
	if p, ok := s.provider.(oauthTokenProvider); ok {
		return p.OAuthToken(s.ctx)
	}
	access, err := s.provider.GetToken(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("google token: %w", err)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}
