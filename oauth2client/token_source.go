package oauth2client

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the cache to the golang.org/x/oauth2 TokenSource
// interface, so it can plug into any client built on that package.
//
// Unlike GetValidToken, Token reports failures as errors, because that is
// the TokenSource contract; the underlying refresh failure is surfaced when
// one was recorded.
func (c *TokenCache) TokenSource(ctx context.Context) oauth2.TokenSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &cacheTokenSource{ctx: ctx, cache: c}
}

type cacheTokenSource struct {
	ctx   context.Context
	cache *TokenCache
}

// Token implements oauth2.TokenSource.
func (s *cacheTokenSource) Token() (*oauth2.Token, error) {
	token, ok := s.cache.GetValidToken(s.ctx)
	if !ok {
		if err := s.cache.LastFailure(); err != nil {
			return nil, err
		}
		return nil, ErrNoTokenAvailable
	}

	status := s.cache.Status()

	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      status.ExpiresAt,
	}, nil
}
