// Package httpclient builds HTTP clients that authenticate against a
// protected API using tokens from a shared oauth2client.TokenCache.
//
// BearerTransport injects "Authorization: Bearer <token>" into every
// outgoing request, and never blocks a business request on auth-pipeline
// failures: with no token available, the request goes out unauthenticated
// and the API's 401 makes the failure visible.
//
// # Quick Start
//
//	cache := oauth2client.NewTokenCache(cfg)
//	client := httpclient.NewHTTPClient(cache)
//	resp, err := client.Get("https://api.example.com/orders")
//
// The Builder adds timeouts, redirect policy, and TLS/mTLS:
//
//	client, err := httpclient.NewBuilder().
//	    WithTokenCache(cache).
//	    WithTLS("/etc/ssl/ca.pem", "", "").
//	    WithTimeout(10 * time.Second).
//	    Build()
package httpclient
