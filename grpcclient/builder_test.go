package grpcclient_test

import (
	"testing"

	"github.com/markyoxall/go-clientauth/grpcclient"
	"github.com/markyoxall/go-clientauth/oauth2client"
)

func TestBuilder_RequiresAddress(t *testing.T) {
	if _, err := grpcclient.NewBuilder().Build(); err == nil {
		t.Error("expected Build to fail without an address")
	}
}

func TestBuilder_Plaintext(t *testing.T) {
	conn, err := grpcclient.NewBuilder().
		WithAddress("127.0.0.1:19090").
		WithPlaintext().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	conn.Close()
}

func TestBuilder_WithTokenCache(t *testing.T) {
	cache := oauth2client.NewTokenCache(oauth2client.ClientCredentialsConfig{
		TokenURL:     "https://auth.example.com/connect/token",
		ClientID:     "svc",
		ClientSecret: "s3cr3t",
	})

	// grpc.NewClient does not dial eagerly, so construction succeeds
	// without a reachable server.
	conn, err := grpcclient.NewBuilder().
		WithAddress("127.0.0.1:19090").
		WithTokenCache(cache).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	conn.Close()
}

func TestBuilder_TLSErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *grpcclient.Builder
	}{
		{
			name: "missing CA file",
			build: func() *grpcclient.Builder {
				return grpcclient.NewBuilder().
					WithAddress("127.0.0.1:19090").
					WithTLS("/nonexistent/ca.pem", "", "", "")
			},
		},
		{
			name: "cert without key",
			build: func() *grpcclient.Builder {
				return grpcclient.NewBuilder().
					WithAddress("127.0.0.1:19090").
					WithTLS("", "/nonexistent/cert.pem", "", "")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.build().Build(); err == nil {
				t.Error("expected Build to fail")
			}
		})
	}
}
