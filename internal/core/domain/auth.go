package domain

// AuthMethod identifies how a connector authenticates.
type AuthMethod string

// Supported authentication methods.
const (
	AuthMethodPAT   AuthMethod = "pat"
	AuthMethodOAuth AuthMethod = "oauth"
)
