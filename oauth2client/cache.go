package oauth2client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshBuffer is the safety margin subtracted from a token's
	// expiry. A token inside the buffer is refreshed proactively so it is
	// never presented to the protected API when it is about to expire.
	DefaultRefreshBuffer = 5 * time.Minute

	// DefaultTokenLifetime is applied when the authorization server omits
	// expires_in. No token is ever cached without an expiry.
	DefaultTokenLifetime = 3600 * time.Second
)

// refreshKey is the single singleflight key: there is one token per cache,
// so at most one refresh may be in flight at any instant.
const refreshKey = "token"

// cachedToken is the protected token plus its expiry metadata. The zero
// value means "no token currently cached".
type cachedToken struct {
	protected string
	issuedAt  time.Time
	expiresAt time.Time
}

func (t cachedToken) isZero() bool {
	return t.expiresAt.IsZero()
}

// TokenCache caches a client-credentials access token for a single
// configuration and coordinates concurrent refreshes.
//
// It is safe for unbounded concurrent use and is meant to be constructed
// once per process and shared by every outgoing client: anything
// shorter-lived reintroduces redundant token requests.
//
// For N concurrent callers observing a stale or empty cache, at most one
// request reaches the token endpoint; all callers share its outcome.
type TokenCache struct {
	config        ClientCredentialsConfig
	endpoint      EndpointClient
	protector     TokenProtector
	refreshBuffer time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu      sync.RWMutex
	token   cachedToken
	lastErr error

	group singleflight.Group
}

// CacheOption is a functional option for configuring TokenCache.
type CacheOption func(*TokenCache)

// WithEndpointClient replaces the endpoint client. Tests use this to avoid
// real network calls.
func WithEndpointClient(endpoint EndpointClient) CacheOption {
	return func(c *TokenCache) {
		c.endpoint = endpoint
	}
}

// WithProtector replaces the default at-rest token protection.
func WithProtector(protector TokenProtector) CacheOption {
	return func(c *TokenCache) {
		c.protector = protector
	}
}

// WithRefreshBuffer sets how long before expiry a token is considered stale.
func WithRefreshBuffer(buffer time.Duration) CacheOption {
	return func(c *TokenCache) {
		if buffer > 0 {
			c.refreshBuffer = buffer
		}
	}
}

// WithLogger sets the logger for refresh and failure events.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *TokenCache) {
		c.logger = logger
	}
}

// NewTokenCache creates a token cache for the given client credentials.
// The configuration is validated on first use, not here.
func NewTokenCache(cfg ClientCredentialsConfig, opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		config:        cfg,
		refreshBuffer: DefaultRefreshBuffer,
		logger:        slog.Default(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.endpoint == nil {
		c.endpoint = NewHTTPEndpointClient(WithEndpointLogger(c.logger))
	}
	if c.protector == nil {
		c.protector = NewSecretboxProtector(WithProtectorLogger(c.logger))
	}

	return c
}

// GetValidToken returns a usable access token, refreshing it when needed.
//
// The second return value reports whether a token is available. Failures
// are absorbed, never returned: callers are expected to degrade to an
// unauthenticated request, which the protected API rejects visibly with a
// 401 instead of the client crashing. LastFailure exposes the reason for
// diagnostics.
//
// A token inside the refresh buffer but not yet expired is still served,
// with a refresh coalesced behind it; only an empty or fully expired cache
// makes callers wait for the exchange.
func (c *TokenCache) GetValidToken(ctx context.Context) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := c.now()

	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()

	if !tok.isZero() && now.Before(tok.expiresAt) {
		raw := c.protector.Unprotect(tok.protected)

		if now.Before(tok.expiresAt.Add(-c.refreshBuffer)) {
			// Hot path: valid token, no coordination needed.
			return raw, true
		}

		// Stale but not expired: serve the current token and refresh
		// behind it. Token requests outlive the triggering caller.
		refreshCtx := context.WithoutCancel(ctx)
		c.group.DoChan(refreshKey, func() (any, error) {
			return c.refresh(refreshCtx)
		})
		return raw, true
	}

	// Empty or expired: wait on the shared refresh.
	v, err, _ := c.group.Do(refreshKey, func() (any, error) {
		// Re-check: an earlier flight may have refreshed already.
		c.mu.RLock()
		cur := c.token
		c.mu.RUnlock()
		if !cur.isZero() && c.now().Before(cur.expiresAt) {
			return c.protector.Unprotect(cur.protected), nil
		}

		return c.refresh(ctx)
	})
	if err != nil {
		return "", false
	}

	return v.(string), true
}

// refresh performs one exchange with the token endpoint and swaps the cached
// token in a single critical section, so readers observe either the old or
// the new token, never a partial update. On failure the previous cache
// contents are retained.
func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	resp, err := c.endpoint.RequestToken(ctx, c.config)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()

		c.logger.Warn("token refresh failed", "error", err)
		return "", err
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	protected, err := c.protector.Protect(resp.AccessToken)
	if err != nil {
		// Same resilience policy as Unprotect: an unprotectable token is
		// cached as-is rather than failing every caller.
		c.logger.Warn("token protect failed, caching value as-is", "error", err)
		protected = resp.AccessToken
	}

	now := c.now()

	c.mu.Lock()
	c.token = cachedToken{
		protected: protected,
		issuedAt:  now,
		expiresAt: now.Add(lifetime),
	}
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debug("token cache refreshed",
		"token_length", len(resp.AccessToken),
		"expires_at", now.Add(lifetime),
	)

	return resp.AccessToken, nil
}

// LastFailure returns the error recorded by the most recent failed refresh,
// or nil after a successful one. Intended for diagnostics.
func (c *TokenCache) LastFailure() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// CacheState labels the logical state of the cache.
type CacheState string

const (
	// CacheStateEmpty means no token is cached.
	CacheStateEmpty CacheState = "empty"
	// CacheStateValid means the cached token is outside the refresh buffer.
	CacheStateValid CacheState = "valid"
	// CacheStateStale means the cached token is inside the refresh buffer
	// or past its expiry.
	CacheStateStale CacheState = "stale"
)

// CacheStatus is a read-only snapshot of the cache for diagnostics.
type CacheStatus struct {
	State       CacheState
	IssuedAt    time.Time
	ExpiresAt   time.Time
	LastFailure error
}

// Status returns a snapshot of the cache state. It never touches the network.
func (c *TokenCache) Status() CacheStatus {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	status := CacheStatus{
		IssuedAt:    c.token.issuedAt,
		ExpiresAt:   c.token.expiresAt,
		LastFailure: c.lastErr,
	}

	switch {
	case c.token.isZero():
		status.State = CacheStateEmpty
	case now.Before(c.token.expiresAt.Add(-c.refreshBuffer)):
		status.State = CacheStateValid
	default:
		status.State = CacheStateStale
	}

	return status
}
