// Package grpcclient provides a fluent builder for secure gRPC client
// connections that authenticate with the OAuth2 client-credentials tokens
// cached by oauth2client.
//
// It defaults to TLS 1.2+ using system roots to avoid accidental plaintext
// connections. Optional methods attach a shared token cache, custom CA or
// mTLS credentials, and extra dial options.
//
// # Features
//
//   - Fluent builder for gRPC clients
//   - Bearer token attachment via a shared oauth2client.TokenCache
//   - Secure-by-default TLS; optional custom CA and mTLS
//   - Additional dial options via WithDialOptions
//
// # Quick Start
//
//	cache := oauth2client.NewTokenCache(oauth2client.ClientCredentialsConfig{
//	    TokenURL:     "https://auth.example.com/connect/token",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    Scopes:       "orders.read",
//	})
//
//	conn, err := grpcclient.NewBuilder().
//	    WithAddress("server.example.com:9090").
//	    WithTokenCache(cache).
//	    WithTLS("/path/to/ca.crt", "", "", "server.example.com").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	client := pb.NewYourServiceClient(conn)
//
// # TLS Behavior
//
// TLS is enabled by default with system CAs and TLS 1.2 minimum. WithTLS
// allows supplying a custom root CA and optional client cert/key for mTLS;
// both cert and key must be provided together. WithPlaintext disables
// transport security for local development.
package grpcclient
