package httpclient

import (
	"log/slog"
	"net/http"

	"github.com/markyoxall/go-clientauth/oauth2client"
)

// BearerTransport is an http.RoundTripper that attaches the cached OAuth2
// Bearer token to every outgoing request.
//
// It is fail-soft: when no token is available the request is forwarded
// unmodified (no Authorization header) with a logged warning, so a broken
// auth pipeline degrades to a visible 401 from the protected API instead of
// blocking the business request client-side.
type BearerTransport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Cache supplies the access tokens. If nil, requests pass through untouched.
	Cache *oauth2client.TokenCache

	// Logger reports missing-token events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// NewBearerTransport creates a BearerTransport over the given base
// transport. The base defaults to http.DefaultTransport.
func NewBearerTransport(cache *oauth2client.TokenCache, base http.RoundTripper) *BearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &BearerTransport{
		Base:  base,
		Cache: cache,
	}
}

// RoundTrip implements http.RoundTripper. The token fetch honors the
// request's context; the request is cloned before the header is set so the
// caller's request is never mutated.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Cache == nil {
		return base.RoundTrip(req)
	}

	token, ok := t.Cache.GetValidToken(req.Context())
	if !ok {
		t.logger().Warn("no access token available, sending request unauthenticated",
			"url", req.URL.Redacted(),
		)
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)

	return base.RoundTrip(clone)
}

func (t *BearerTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
