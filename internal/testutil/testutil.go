package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// NewLocalHTTPServer starts an HTTP server bound to IPv4 loopback only.
// The sandbox blocks IPv6 listeners, so force tcp4 to keep tests runnable.
func NewLocalHTTPServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	tb.Cleanup(server.Close)

	return server
}

// RoundTripFunc allows inlining http.RoundTripper implementations.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls the underlying function.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// JSONResponse builds an *http.Response with the given status and JSON body.
func JSONResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// TokenEndpoint is an in-process fake OAuth2 token endpoint. It records
// every request's form values and serves a configurable response.
type TokenEndpoint struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []map[string]string
	status   int
	body     string
}

// NewTokenEndpoint starts a fake token endpoint serving a successful default
// response until Respond overrides it.
func NewTokenEndpoint(tb testing.TB) *TokenEndpoint {
	tb.Helper()

	e := &TokenEndpoint{
		status: http.StatusOK,
		body:   `{"access_token":"test-access-token","token_type":"Bearer","expires_in":3600}`,
	}

	e.Server = NewLocalHTTPServer(tb, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		form := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}

		e.mu.Lock()
		e.requests = append(e.requests, form)
		status, body := e.status, e.body
		e.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))

	return e
}

// URL returns the endpoint's address.
func (e *TokenEndpoint) URL() string {
	return e.Server.URL + "/connect/token"
}

// Respond sets the status and body served to subsequent requests.
func (e *TokenEndpoint) Respond(status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	e.body = body
}

// Requests returns a copy of the recorded form submissions.
func (e *TokenEndpoint) Requests() []map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]map[string]string, len(e.requests))
	copy(out, e.requests)
	return out
}

// RequestCount returns how many token requests were received.
func (e *TokenEndpoint) RequestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// JWKSDocument renders a minimal RSA JWKS document from modulus and exponent.
// Used by the bearer validation tests together with an RSA key pair.
func JWKSDocument(tb testing.TB, n *big.Int, e int, kid string) string {
	tb.Helper()

	doc := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(n.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(e)).Bytes()),
			},
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		tb.Fatalf("failed to encode JWKS: %v", err)
	}

	return string(raw)
}
