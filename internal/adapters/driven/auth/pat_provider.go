package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// GitHubTokenEnv is the environment variable that overrides the stored token.
const GitHubTokenEnv = "GITHUB_TOKEN"

// Ensure PATProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*PATProvider)(nil)

// PATProvider provides a static Personal Access Token.
// The environment variable wins over the value stored under the config key.
type PATProvider struct {
	envVar    string
	configKey string
	config    driven.ConfigStore
	lookupEnv func(string) (string, bool)
}

// NewPATProvider creates a token provider reading envVar, then configKey.
// A nil config store only consults the environment.
func NewPATProvider(envVar, configKey string, config driven.ConfigStore) *PATProvider {
	return &PATProvider{
		envVar:    envVar,
		configKey: configKey,
		config:    config,
		lookupEnv: os.LookupEnv,
	}
}

// GetToken returns the token, or domain.ErrAuthRequired if none is configured.
func (p *PATProvider) GetToken(_ context.Context) (string, error) {
	token, _ := p.resolve()
	if token == "" {
		return "", fmt.Errorf("%w: set %s or run 'quire auth github'", domain.ErrAuthRequired, p.envVar)
	}
	return token, nil
}

// Source reports where the token comes from: "env", "config" or "".
func (p *PATProvider) Source() string {
	_, src := p.resolve()
	return src
}

func (p *PATProvider) resolve() (token, source string) {
	if p.envVar != "" && p.lookupEnv != nil {
		if v, ok := p.lookupEnv(p.envVar); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), "env"
		}
	}
	if p.config != nil && p.configKey != "" {
		if v := strings.TrimSpace(p.config.GetString(p.configKey)); v != "" {
			return v, "config"
		}
	}
	return "", ""
}

// AuthMethod returns AuthMethodPAT.
func (p *PATProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true if a token is available.
func (p *PATProvider) IsAuthenticated() bool {
	token, _ := p.resolve()
	return token != ""
}
