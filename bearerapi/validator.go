package bearerapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the validated claims of an accepted bearer token.
type Claims struct {
	Subject  string
	Issuer   string
	Audience []string
	Expiry   time.Time
	Scopes   []string
}

// Validator checks incoming bearer tokens. Implementations must be safe for
// concurrent use.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// JWKSValidator validates JWT bearer tokens against the authorization
// server's JWKS document, caching public keys and refreshing them on
// unknown key IDs.
type JWKSValidator struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
	logger   *slog.Logger
}

// ValidatorConfig configures a JWKSValidator.
type ValidatorConfig struct {
	// JWKSURL is the JWKS endpoint, e.g. "https://auth.example.com/.well-known/jwks.json".
	JWKSURL string

	// Issuer is the expected iss claim.
	Issuer string

	// Audience is the expected aud claim.
	Audience string

	// HTTPClient fetches the JWKS (nil uses http.DefaultClient).
	HTTPClient *http.Client

	// RefreshInterval is how often keys are re-fetched (0 = 1 hour).
	RefreshInterval time.Duration

	// Logger for key refresh problems (nil uses slog.Default()).
	Logger *slog.Logger
}

// NewJWKSValidator fetches the initial key set and returns a validator.
func NewJWKSValidator(cfg ValidatorConfig) (*JWKSValidator, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("bearerapi: JWKS URL is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("bearerapi: issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("bearerapi: audience is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		Client:            httpClient,
		RefreshInterval:   refresh,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bearerapi: failed to initialize JWKS: %w", err)
	}

	return &JWKSValidator{
		jwks:     jwks,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger,
	}, nil
}

// ValidateToken verifies the token's signature, expiry, issuer, and
// audience, and extracts claims.
func (v *JWKSValidator) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Name,
			jwt.SigningMethodRS384.Name,
			jwt.SigningMethodRS512.Name,
			jwt.SigningMethodES256.Name,
			jwt.SigningMethodES384.Name,
			jwt.SigningMethodES512.Name,
		}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("bearerapi: token validation failed: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("bearerapi: failed to extract token claims")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("bearerapi: missing subject claim")
	}
	aud, err := mapClaims.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("bearerapi: invalid audience claim: %w", err)
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("bearerapi: missing expiry claim")
	}

	claims := &Claims{
		Subject:  sub,
		Issuer:   v.issuer,
		Audience: aud,
		Expiry:   exp.Time,
		Scopes:   extractScopes(mapClaims),
	}

	v.logger.Debug("validated bearer token", "subject", sub, "scopes", claims.Scopes)

	return claims, nil
}

// HasScope reports whether the claims carry the given scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// Close stops the background JWKS refresh.
func (v *JWKSValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// extractScopes handles both "scope" and "scp" claims, in space-separated
// string or array form.
func extractScopes(claims jwt.MapClaims) []string {
	for _, key := range []string{"scope", "scp"} {
		switch val := claims[key].(type) {
		case string:
			return strings.Fields(val)
		case []interface{}:
			scopes := make([]string, 0, len(val))
			for _, s := range val {
				if str, ok := s.(string); ok {
					scopes = append(scopes, str)
				}
			}
			return scopes
		}
	}

	return nil
}
