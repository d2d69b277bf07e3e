package driven

import (
	"context"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently.
type TokenProvider interface {
	// GetToken returns a valid access token, or an error wrapping
	// domain.ErrAuthRequired when none is configured.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method.
	AuthMethod() domain.AuthMethod

	// IsAuthenticated reports whether credentials are available.
	IsAuthenticated() bool
}
