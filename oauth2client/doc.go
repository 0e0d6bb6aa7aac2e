// Package oauth2client implements service-to-service OAuth2 token management
// for the client-credentials grant.
//
// A single long-lived TokenCache obtains bearer tokens from the
// authorization server's token endpoint, protects them at rest in process
// memory, refreshes them before expiry, and coalesces concurrent refreshes
// into one network call. Failures are absorbed: callers that cannot get a
// token proceed unauthenticated and the protected API rejects them with a
// visible 401 instead of the client failing opaquely.
//
// # Features
//
//   - Client-credentials exchange with a bounded request timeout
//   - Single-flight refresh: N concurrent callers, at most one token request
//   - Proactive refresh inside a configurable expiry buffer (default 5m)
//   - At-rest token protection with a process-scoped key (pluggable)
//   - Fail-soft gRPC client interceptors and an oauth2.TokenSource adapter
//   - DiagnosticsReporter for operational troubleshooting
//
// # Quick Start
//
//	cache := oauth2client.NewTokenCache(oauth2client.ClientCredentialsConfig{
//	    TokenURL:     "https://auth.example.com/connect/token",
//	    ClientID:     "inventory-service",
//	    ClientSecret: os.Getenv("CLIENT_SECRET"),
//	    Scopes:       "api",
//	})
//
//	client := &http.Client{
//	    Transport: httpclient.NewBearerTransport(cache, nil),
//	}
//	resp, err := client.Get("https://api.example.com/customers")
//
// # Notes
//
//   - Construct one TokenCache per process and share it; per-request caches
//     defeat both the cache and the single-flight guarantee.
//   - Configuration is validated at the first token request, not at startup.
package oauth2client
