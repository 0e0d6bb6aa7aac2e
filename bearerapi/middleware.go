package bearerapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// ErrNoBearerToken indicates a request without a usable Authorization header.
var ErrNoBearerToken = errors.New("bearerapi: missing bearer token")

type middlewareConfig struct {
	exemptPaths    map[string]bool
	exemptPrefixes []string
	logger         *slog.Logger
	unauthorized   func(w http.ResponseWriter, r *http.Request, err error)
}

// MiddlewareOption is a functional option for configuring Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithExemptPaths specifies exact request paths that skip authentication,
// such as health and metrics endpoints.
func WithExemptPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, path := range paths {
			c.exemptPaths[path] = true
		}
	}
}

// WithExemptPrefixes specifies path prefixes that skip authentication.
func WithExemptPrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.exemptPrefixes = append(c.exemptPrefixes, prefixes...)
	}
}

// WithMiddlewareLogger sets the logger for rejected requests.
func WithMiddlewareLogger(logger *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = logger
	}
}

// WithUnauthorizedHandler replaces the default 401 plain-text response.
func WithUnauthorizedHandler(handler func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.unauthorized = handler
	}
}

// Middleware returns an HTTP middleware that validates bearer tokens on
// incoming requests. Valid claims are stored in the request context and
// retrievable with ClaimsFromContext; requests that fail validation get a
// 401 response.
func Middleware(validator Validator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	config := &middlewareConfig{
		exemptPaths: make(map[string]bool),
		logger:      slog.Default(),
		unauthorized: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				config.logger.Debug("request without bearer token",
					"method", r.Method, "path", r.URL.Path)
				config.unauthorized(w, r, ErrNoBearerToken)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				config.logger.Warn("bearer token rejected",
					"method", r.Method, "path", r.URL.Path, "error", err)
				config.unauthorized(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func (c *middlewareConfig) isExempt(path string) bool {
	if c.exemptPaths[path] {
		return true
	}
	for _, prefix := range c.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
