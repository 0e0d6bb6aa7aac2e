package oauth2client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/markyoxall/go-clientauth/internal/testutil"
)

func TestHTTPEndpointClient_RequestToken(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)

	cfg := ClientCredentialsConfig{
		TokenURL:     endpoint.URL(),
		ClientID:     "svc",
		ClientSecret: "s3cr3t",
		Scopes:       "api offline_access",
	}

	client := NewHTTPEndpointClient()

	resp, err := client.RequestToken(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RequestToken failed: %v", err)
	}

	if resp.AccessToken != "test-access-token" {
		t.Errorf("expected access token 'test-access-token', got %q", resp.AccessToken)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("expected token type 'Bearer', got %q", resp.TokenType)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected expires_in 3600, got %d", resp.ExpiresIn)
	}

	requests := endpoint.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}

	form := requests[0]
	if form["grant_type"] != "client_credentials" {
		t.Errorf("expected grant_type 'client_credentials', got %q", form["grant_type"])
	}
	if form["client_id"] != "svc" {
		t.Errorf("expected client_id 'svc', got %q", form["client_id"])
	}
	if form["client_secret"] != "s3cr3t" {
		t.Errorf("expected client_secret to be submitted, got %q", form["client_secret"])
	}
	if form["scope"] != "api offline_access" {
		t.Errorf("expected scope 'api offline_access', got %q", form["scope"])
	}
}

func TestHTTPEndpointClient_EmptyScopeOmitted(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)

	cfg := ClientCredentialsConfig{
		TokenURL:     endpoint.URL(),
		ClientID:     "svc",
		ClientSecret: "s3cr3t",
	}

	if _, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg); err != nil {
		t.Fatalf("RequestToken failed: %v", err)
	}

	if _, present := endpoint.Requests()[0]["scope"]; present {
		t.Error("empty scope must be omitted from the form")
	}
}

func TestHTTPEndpointClient_ExpiresInVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{
			name: "numeric",
			body: `{"access_token":"tok","expires_in":120}`,
			want: 120,
		},
		{
			name: "quoted numeric",
			body: `{"access_token":"tok","expires_in":"120"}`,
			want: 120,
		},
		{
			name: "missing",
			body: `{"access_token":"tok"}`,
			want: 0,
		},
		{
			name: "null",
			body: `{"access_token":"tok","expires_in":null}`,
			want: 0,
		},
		{
			name: "garbage",
			body: `{"access_token":"tok","expires_in":"soon"}`,
			want: 0,
		},
		{
			name: "fractional",
			body: `{"access_token":"tok","expires_in":299.5}`,
			want: 299,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := testutil.NewTokenEndpoint(t)
			endpoint.Respond(http.StatusOK, tt.body)

			cfg := ClientCredentialsConfig{
				TokenURL:     endpoint.URL(),
				ClientID:     "svc",
				ClientSecret: "s3cr3t",
			}

			resp, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)
			if err != nil {
				t.Fatalf("RequestToken failed: %v", err)
			}
			if resp.ExpiresIn != tt.want {
				t.Errorf("expected expires_in %d, got %d", tt.want, resp.ExpiresIn)
			}
		})
	}
}

func TestHTTPEndpointClient_OAuthErrorBody(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)
	endpoint.Respond(http.StatusBadRequest, `{"error":"invalid_client","error_description":"client authentication failed"}`)

	cfg := ClientCredentialsConfig{
		TokenURL:     endpoint.URL(),
		ClientID:     "svc",
		ClientSecret: "super-secret-value",
	}

	_, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)

	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected *TokenError, got %T: %v", err, err)
	}
	if tokenErr.Kind != ErrKindAuthRejected {
		t.Errorf("expected kind %s, got %s", ErrKindAuthRejected, tokenErr.Kind)
	}
	if tokenErr.OAuthCode != "invalid_client" {
		t.Errorf("expected OAuth code 'invalid_client', got %q", tokenErr.OAuthCode)
	}
	if tokenErr.Description != "client authentication failed" {
		t.Errorf("unexpected description %q", tokenErr.Description)
	}
	if tokenErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", tokenErr.HTTPStatus)
	}

	// The error text must never leak the client secret.
	if strings.Contains(err.Error(), "super-secret-value") {
		t.Error("error text leaks the client secret")
	}
}

func TestHTTPEndpointClient_NonJSONErrorBody(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)
	endpoint.Respond(http.StatusBadGateway, "<html>upstream unavailable</html>")

	cfg := ClientCredentialsConfig{
		TokenURL:     endpoint.URL(),
		ClientID:     "svc",
		ClientSecret: "s3cr3t",
	}

	_, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)

	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected *TokenError, got %T: %v", err, err)
	}
	if tokenErr.OAuthCode != "" {
		t.Errorf("expected no OAuth code for non-JSON body, got %q", tokenErr.OAuthCode)
	}
	if tokenErr.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", tokenErr.HTTPStatus)
	}
}

func TestHTTPEndpointClient_MalformedSuccessBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "ok"},
		{name: "missing access_token", body: `{"token_type":"Bearer","expires_in":3600}`},
		{name: "empty access_token", body: `{"access_token":"","expires_in":3600}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := testutil.NewTokenEndpoint(t)
			endpoint.Respond(http.StatusOK, tt.body)

			cfg := ClientCredentialsConfig{
				TokenURL:     endpoint.URL(),
				ClientID:     "svc",
				ClientSecret: "s3cr3t",
			}

			_, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)

			var tokenErr *TokenError
			if !errors.As(err, &tokenErr) {
				t.Fatalf("expected *TokenError, got %T: %v", err, err)
			}
			if tokenErr.Kind != ErrKindMalformed {
				t.Errorf("expected kind %s, got %s", ErrKindMalformed, tokenErr.Kind)
			}
		})
	}
}

func TestHTTPEndpointClient_TransportFailure(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)
	tokenURL := endpoint.URL()
	endpoint.Server.Close()

	cfg := ClientCredentialsConfig{
		TokenURL:     tokenURL,
		ClientID:     "svc",
		ClientSecret: "s3cr3t",
	}

	_, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)

	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected *TokenError, got %T: %v", err, err)
	}
	if tokenErr.Kind != ErrKindTransport {
		t.Errorf("expected kind %s, got %s", ErrKindTransport, tokenErr.Kind)
	}
	if tokenErr.Unwrap() == nil {
		t.Error("transport error must wrap the underlying cause")
	}
}

func TestHTTPEndpointClient_IncompleteConfig(t *testing.T) {
	endpoint := testutil.NewTokenEndpoint(t)

	cfg := ClientCredentialsConfig{TokenURL: endpoint.URL()}

	_, err := NewHTTPEndpointClient().RequestToken(context.Background(), cfg)

	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) || tokenErr.Kind != ErrKindConfig {
		t.Fatalf("expected configuration error, got %v", err)
	}

	if endpoint.RequestCount() != 0 {
		t.Error("no request may be issued with incomplete configuration")
	}
}

func TestParseExpiresIn(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{raw: ``, want: 0},
		{raw: `null`, want: 0},
		{raw: `3600`, want: 3600},
		{raw: `"3600"`, want: 3600},
		{raw: `"later"`, want: 0},
		{raw: `1799.9`, want: 1799},
	}

	for _, tt := range tests {
		if got := parseExpiresIn(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("parseExpiresIn(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
