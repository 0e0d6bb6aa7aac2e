package oauth2client

import (
	"fmt"
	"strings"
)

// ClientCredentialsConfig holds the settings for the OAuth2 client-credentials
// grant. It is loaded once at startup and never mutated afterwards.
//
// Validation is deliberately deferred to the first token request rather than
// process startup, so that startup paths which never need a token are not
// affected by incomplete credentials.
type ClientCredentialsConfig struct {
	// TokenURL is the authorization server's token endpoint
	// (e.g., "https://auth.example.com/connect/token").
	TokenURL string

	// ClientID identifies this service to the authorization server.
	ClientID string

	// ClientSecret authenticates this service. Never logged.
	ClientSecret string

	// Scopes is the space-separated list of scopes to request (may be empty).
	Scopes string
}

// Validate reports every missing required value in a single error.
// Scopes are optional; all other fields are required.
func (c ClientCredentialsConfig) Validate() error {
	var missing []string

	if strings.TrimSpace(c.TokenURL) == "" {
		missing = append(missing, "token URL")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "client ID")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "client secret")
	}

	if len(missing) == 0 {
		return nil
	}

	return &TokenError{
		Kind: ErrKindConfig,
		Err:  fmt.Errorf("missing %s", strings.Join(missing, ", ")),
	}
}

// ScopeList returns the configured scopes split on whitespace, avoiding a
// single concatenated scope value on the wire.
func (c ClientCredentialsConfig) ScopeList() []string {
	return strings.Fields(c.Scopes)
}
