package bearerapi_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/markyoxall/go-clientauth/bearerapi"
)

func TestScopePolicy_Check(t *testing.T) {
	claims := &bearerapi.Claims{Scopes: []string{"orders.read", "orders.write"}}

	tests := []struct {
		name   string
		policy bearerapi.ScopePolicy
		claims *bearerapi.Claims
		denied bool
	}{
		{
			name:   "empty policy allows everything",
			policy: bearerapi.ScopePolicy{},
			claims: &bearerapi.Claims{},
		},
		{
			name:   "any mode with one match",
			policy: bearerapi.ScopePolicy{RequiredScopes: []string{"admin", "orders.read"}},
			claims: claims,
		},
		{
			name:   "any mode with no match",
			policy: bearerapi.ScopePolicy{RequiredScopes: []string{"admin"}},
			claims: claims,
			denied: true,
		},
		{
			name: "all mode satisfied",
			policy: bearerapi.ScopePolicy{
				RequiredScopes: []string{"orders.read", "orders.write"},
				MatchMode:      bearerapi.ScopeMatchAll,
			},
			claims: claims,
		},
		{
			name: "all mode partially satisfied",
			policy: bearerapi.ScopePolicy{
				RequiredScopes: []string{"orders.read", "admin"},
				MatchMode:      bearerapi.ScopeMatchAll,
			},
			claims: claims,
			denied: true,
		},
		{
			name: "unknown mode fails closed",
			policy: bearerapi.ScopePolicy{
				RequiredScopes: []string{"orders.read", "admin"},
				MatchMode:      "sometimes",
			},
			claims: claims,
			denied: true,
		},
		{
			name:   "nil claims denied",
			policy: bearerapi.ScopePolicy{RequiredScopes: []string{"orders.read"}},
			claims: nil,
			denied: true,
		},
		{
			name:   "blank scopes ignored",
			policy: bearerapi.ScopePolicy{RequiredScopes: []string{"  ", ""}},
			claims: &bearerapi.Claims{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.policy.Check(tc.claims)
			if tc.denied {
				if !errors.Is(err, bearerapi.ErrPermissionDenied) {
					t.Errorf("expected ErrPermissionDenied, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected the policy to pass, got %v", err)
			}
		})
	}
}

func TestPermissionDeniedError_ListsMissingScopes(t *testing.T) {
	policy := bearerapi.ScopePolicy{
		RequiredScopes: []string{"orders.read", "admin"},
		MatchMode:      bearerapi.ScopeMatchAll,
	}

	err := policy.Check(&bearerapi.Claims{Scopes: []string{"orders.read"}})

	var denied *bearerapi.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *PermissionDeniedError, got %T", err)
	}
	if len(denied.MissingScopes) != 1 || denied.MissingScopes[0] != "admin" {
		t.Errorf("expected missing scopes [admin], got %v", denied.MissingScopes)
	}
}

func TestRequireScopes(t *testing.T) {
	validator := &fakeValidator{} // accepts "good-token" with scope orders.read

	protected := bearerapi.Middleware(validator)(
		bearerapi.RequireScopes(bearerapi.ScopePolicy{RequiredScopes: []string{"orders.read"}})(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		),
	)

	admin := bearerapi.Middleware(validator)(
		bearerapi.RequireScopes(bearerapi.ScopePolicy{RequiredScopes: []string{"admin"}})(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not be reached without the admin scope")
			}),
		),
	)

	if rec := serveRequest(protected, "/orders", "Bearer good-token"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with a sufficient scope, got %d", rec.Code)
	}
	if rec := serveRequest(admin, "/admin", "Bearer good-token"); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 with an insufficient scope, got %d", rec.Code)
	}
}

func TestRequireScopes_WithoutAuthentication(t *testing.T) {
	handler := bearerapi.RequireScopes(bearerapi.ScopePolicy{RequiredScopes: []string{"orders.read"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not be reached without claims")
		}),
	)

	if rec := serveRequest(handler, "/orders", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without prior authentication, got %d", rec.Code)
	}
}
