package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/quire/internal/adapters/driven/oauth"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// Ensure GoogleTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*GoogleTokenProvider)(nil)

// LoadGoogleConfig reads an OAuth client secrets file downloaded from the
// Google Cloud console.
func LoadGoogleConfig(secretsPath string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(secretsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: client secrets file %s not found", domain.ErrAuthRequired, secretsPath)
		}
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secrets: %w", domain.ErrInvalidArgument, err)
	}
	return conf, nil
}

// GoogleTokenProvider provides Google OAuth access tokens with automatic refresh.
// The token is cached in a file; refreshed tokens are written back to it.
type GoogleTokenProvider struct {
	conf      *oauth2.Config
	tokenFile string

	mu   sync.Mutex
	ts   oauth2.TokenSource
	last string
}

// NewGoogleTokenProvider creates a provider for the cached token at tokenFile.
func NewGoogleTokenProvider(conf *oauth2.Config, tokenFile string) *GoogleTokenProvider {
	return &GoogleTokenProvider{conf: conf, tokenFile: tokenFile}
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *GoogleTokenProvider) GetToken(ctx context.Context) (string, error) {
	tok, err := p.OAuthToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// OAuthToken returns the current token with its expiry. A refreshed token
// is written back to the token file.
func (p *GoogleTokenProvider) OAuthToken(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ts == nil {
		tok, err := oauth.LoadToken(p.tokenFile)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: run 'quire auth google'", domain.ErrAuthRequired)
			}
			return nil, err
		}
		p.last = tok.AccessToken
		p.ts = p.conf.TokenSource(context.WithoutCancel(ctx), tok)
	}

	tok, err := p.ts.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, fmt.Errorf("%w: refresh google token: %w", domain.ErrAuthInvalid, err)
		}
		return nil, domain.MarkTransient(fmt.Errorf("refresh google token: %w", err))
	}

	if tok.AccessToken != p.last {
		if err := oauth.SaveToken(p.tokenFile, tok); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

// Save stores a token obtained from the consent flow and resets the cache.
func (p *GoogleTokenProvider) Save(tok *oauth2.Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := oauth.SaveToken(p.tokenFile, tok); err != nil {
		return err
	}
	p.ts = nil
	p.last = ""
	return nil
}

// Config returns the OAuth client configuration.
func (p *GoogleTokenProvider) Config() *oauth2.Config {
	return p.conf
}

// AuthMethod returns AuthMethodOAuth.
func (p *GoogleTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodOAuth
}

// IsAuthenticated returns true if a token with a refresh token is cached.
func (p *GoogleTokenProvider) IsAuthenticated() bool {
	tok, err := oauth.LoadToken(p.tokenFile)
	if err != nil {
		return false
	}
	return tok.RefreshToken != "" || tok.Valid()
}
