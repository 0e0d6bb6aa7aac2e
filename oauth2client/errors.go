package oauth2client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies token acquisition failures.
type ErrorKind string

const (
	// ErrKindConfig indicates that a required credential or endpoint value is missing.
	// Token requests with incomplete configuration are never retried automatically.
	ErrKindConfig ErrorKind = "configuration_missing"

	// ErrKindTransport indicates a network-level failure reaching the token
	// endpoint (DNS, TLS, connect, timeout). The next natural refresh attempt
	// is the only retry; there is no internal retry loop.
	ErrKindTransport ErrorKind = "transport"

	// ErrKindAuthRejected indicates that the authorization server rejected the
	// request, typically with an OAuth2 error body such as invalid_client.
	ErrKindAuthRejected ErrorKind = "authorization_rejected"

	// ErrKindMalformed indicates a 2xx response without a usable access_token.
	ErrKindMalformed ErrorKind = "malformed_response"
)

// ErrNoTokenAvailable is returned by the TokenSource adapter when the cache
// cannot supply a token and no more specific failure was recorded.
var ErrNoTokenAvailable = errors.New("oauth2client: no token available")

// TokenError describes a failed token request.
//
// OAuthCode and Description are only set when the authorization server
// returned a parseable OAuth2 error body. The client secret and raw token
// values never appear in the error text.
type TokenError struct {
	Kind        ErrorKind
	OAuthCode   string
	Description string
	HTTPStatus  int
	Err         error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	switch {
	case e.OAuthCode != "":
		if e.Description != "" {
			return fmt.Sprintf("oauth2client: token request rejected: %s (%s)", e.OAuthCode, e.Description)
		}
		return fmt.Sprintf("oauth2client: token request rejected: %s", e.OAuthCode)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("oauth2client: token endpoint returned status %d", e.HTTPStatus)
	case e.Err != nil:
		return fmt.Sprintf("oauth2client: token request failed: %v", e.Err)
	default:
		return fmt.Sprintf("oauth2client: token request failed (%s)", e.Kind)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *TokenError) Unwrap() error {
	return e.Err
}
