package bearerapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ScopeMatchMode defines how required scopes are matched.
type ScopeMatchMode string

const (
	// ScopeMatchAny allows access if any required scope is present.
	ScopeMatchAny ScopeMatchMode = "any"
	// ScopeMatchAll allows access only if all required scopes are present.
	ScopeMatchAll ScopeMatchMode = "all"
)

// ErrPermissionDenied indicates that scope requirements are not satisfied.
var ErrPermissionDenied = errors.New("bearerapi: permission denied")

// PermissionDeniedError carries the scopes the token was missing.
type PermissionDeniedError struct {
	MissingScopes []string
}

func (e *PermissionDeniedError) Error() string {
	if len(e.MissingScopes) == 0 {
		return ErrPermissionDenied.Error()
	}
	return fmt.Sprintf("bearerapi: missing required scopes %v", e.MissingScopes)
}

// Is enables errors.Is(err, ErrPermissionDenied).
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ScopePolicy is a reusable scope requirement. The zero value performs no
// checks; unknown match modes fail closed to "all".
type ScopePolicy struct {
	RequiredScopes []string
	MatchMode      ScopeMatchMode
}

// Enabled reports whether this policy performs any checks.
func (p ScopePolicy) Enabled() bool {
	return len(normalizeScopeList(p.RequiredScopes)) > 0
}

// Check evaluates the policy against validated claims. A nil error means the
// claims satisfy the policy.
func (p ScopePolicy) Check(claims *Claims) error {
	required := normalizeScopeList(p.RequiredScopes)
	if len(required) == 0 {
		return nil
	}
	if claims == nil {
		return &PermissionDeniedError{MissingScopes: required}
	}

	if p.matchMode() == ScopeMatchAny {
		for _, scope := range required {
			if claims.HasScope(scope) {
				return nil
			}
		}
		return &PermissionDeniedError{MissingScopes: required}
	}

	var missing []string
	for _, scope := range required {
		if !claims.HasScope(scope) {
			missing = append(missing, scope)
		}
	}
	if len(missing) > 0 {
		return &PermissionDeniedError{MissingScopes: missing}
	}
	return nil
}

func (p ScopePolicy) matchMode() ScopeMatchMode {
	switch ScopeMatchMode(strings.ToLower(strings.TrimSpace(string(p.MatchMode)))) {
	case "", ScopeMatchAny:
		return ScopeMatchAny
	case ScopeMatchAll:
		return ScopeMatchAll
	default:
		return ScopeMatchAll
	}
}

// RequireScopes returns an HTTP middleware that enforces the given scopes on
// requests already authenticated by Middleware. Requests whose claims do not
// satisfy the policy get a 403 response; requests that never passed the
// authentication middleware get a 401.
func RequireScopes(policy ScopePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := policy.Check(claims); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// normalizeScopeList trims and deduplicates, preserving order.
func normalizeScopeList(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}

	result := make([]string, 0, len(scopes))
	seen := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		result = append(result, scope)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
