// Package testutil provides test helpers for go-clientauth packages.
//
// It includes utilities to spin up IPv4-only local HTTP servers (avoiding IPv6 in sandboxes),
// a recording fake OAuth2 token endpoint, and JWKS document rendering for bearer validation tests.
//
// # Utilities
//
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1
//   - TokenEndpoint: stub OAuth2 token endpoint that records form submissions
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - JWKSDocument: render an RSA public key as a JWKS document
package testutil
