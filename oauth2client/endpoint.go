package oauth2client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultEndpointTimeout bounds every token request. An unbounded hang here
// would stall every dependent API call in the process.
const defaultEndpointTimeout = 30 * time.Second

// TokenResponse is the parsed success response from the token endpoint.
// It is transient: the cache consumes it immediately and discards it.
type TokenResponse struct {
	AccessToken string
	TokenType   string

	// ExpiresIn is the token lifetime in seconds. Zero means the server
	// omitted (or mangled) expires_in; callers must substitute
	// DefaultTokenLifetime rather than caching indefinitely.
	ExpiresIn int64
}

// EndpointClient performs the client-credentials exchange with the
// authorization server. Implementations are stateless and never cache.
type EndpointClient interface {
	RequestToken(ctx context.Context, cfg ClientCredentialsConfig) (*TokenResponse, error)
}

// HTTPEndpointClient is the production EndpointClient. It sends a
// form-encoded POST per the OAuth2 token endpoint contract and maps
// failures onto the TokenError taxonomy.
type HTTPEndpointClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// EndpointOption is a functional option for configuring HTTPEndpointClient.
type EndpointOption func(*HTTPEndpointClient)

// WithHTTPClient sets a custom HTTP client, replacing the default client and
// its 30s timeout. Useful for tests and custom TLS setups.
func WithHTTPClient(client *http.Client) EndpointOption {
	return func(c *HTTPEndpointClient) {
		c.httpClient = client
	}
}

// WithEndpointLogger sets the logger for token exchange events.
func WithEndpointLogger(logger *slog.Logger) EndpointOption {
	return func(c *HTTPEndpointClient) {
		c.logger = logger
	}
}

// NewHTTPEndpointClient creates an endpoint client with a bounded default
// timeout.
func NewHTTPEndpointClient(opts ...EndpointOption) *HTTPEndpointClient {
	c := &HTTPEndpointClient{
		httpClient: &http.Client{Timeout: defaultEndpointTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tokenWire is the raw success body. expires_in is kept raw so that a
// missing or non-numeric value degrades to the default lifetime instead of
// failing the whole exchange.
type tokenWire struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
}

// errorWire is the OAuth2-shaped error body.
type errorWire struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestToken exchanges the client credentials for an access token.
// It performs exactly one outbound network call and never retries.
func (c *HTTPEndpointClient) RequestToken(ctx context.Context, cfg ClientCredentialsConfig) (*TokenResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", cfg.ClientID)
	data.Set("client_secret", cfg.ClientSecret)
	if scope := strings.Join(cfg.ScopeList(), " "); scope != "" {
		data.Set("scope", scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &TokenError{Kind: ErrKindTransport, Err: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TokenError{Kind: ErrKindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TokenError{Kind: ErrKindTransport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		tokenErr := &TokenError{Kind: ErrKindAuthRejected, HTTPStatus: resp.StatusCode}

		var oauthErr errorWire
		if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Error != "" {
			tokenErr.OAuthCode = oauthErr.Error
			tokenErr.Description = oauthErr.ErrorDescription
		}

		c.logger.Warn("token request rejected",
			"status", resp.StatusCode,
			"oauth_error", tokenErr.OAuthCode,
		)
		return nil, tokenErr
	}

	var wire tokenWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &TokenError{Kind: ErrKindMalformed, Err: err}
	}
	if wire.AccessToken == "" {
		return nil, &TokenError{Kind: ErrKindMalformed, Err: errNoAccessToken}
	}

	result := &TokenResponse{
		AccessToken: wire.AccessToken,
		TokenType:   wire.TokenType,
		ExpiresIn:   parseExpiresIn(wire.ExpiresIn),
	}

	// Only length and lifetime; the token value itself is never logged.
	c.logger.Debug("obtained access token",
		"token_length", len(result.AccessToken),
		"expires_in", result.ExpiresIn,
	)

	return result, nil
}

var errNoAccessToken = &jsonFieldError{field: "access_token"}

type jsonFieldError struct {
	field string
}

func (e *jsonFieldError) Error() string {
	return "response body missing " + e.field
}

// parseExpiresIn tolerates numeric, quoted-numeric, missing, and garbage
// expires_in values. Anything unusable maps to zero.
func parseExpiresIn(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
