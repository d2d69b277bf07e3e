package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	driventoken "github.com/custodia-labs/quire/internal/adapters/driven/oauth"
)

// DefaultTimeout bounds how long Authorize waits for the user.
const DefaultTimeout = 5 * time.Minute

// Prompt is called with the consent URL. It usually opens a browser and
// tells the user where to go; an error aborts the flow.
type Prompt func(authURL string) error

// Authorize runs the authorization-code flow with PKCE against a loopback
// redirect and returns the resulting token. The config's RedirectURL is
// set to the callback server's address.
func Authorize(ctx context.Context, conf *oauth2.Config, prompt Prompt) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	server := NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return nil, err
	}
	defer func() { _ = server.Stop() }()

	flow := *conf
	flow.RedirectURL = server.RedirectURI()

	verifier := oauth2.GenerateVerifier()
	authURL := flow.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if err := prompt(authURL); err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return nil, err
	}
	return driventoken.ExchangeCode(ctx, &flow, code, verifier)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
