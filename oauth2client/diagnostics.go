package oauth2client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// wellKnownPaths are tried in order when probing authorization server
// reachability. OpenID Connect discovery first, plain OAuth metadata as
// fallback.
var wellKnownPaths = []string{
	"/.well-known/openid-configuration",
	"/.well-known/oauth-authorization-server",
}

// DiagnosticsReporter exercises the token pipeline and renders a
// human-readable status report for troubleshooting views.
//
// The token-acquisition probe deliberately performs a real exchange through
// the configured EndpointClient; substituting a fake client keeps tests off
// the network.
type DiagnosticsReporter struct {
	config     ClientCredentialsConfig
	cache      *TokenCache
	endpoint   EndpointClient
	httpClient *http.Client
}

// ReporterOption is a functional option for configuring DiagnosticsReporter.
type ReporterOption func(*DiagnosticsReporter)

// WithReporterEndpointClient replaces the endpoint client used by the
// token-acquisition probe.
func WithReporterEndpointClient(endpoint EndpointClient) ReporterOption {
	return func(r *DiagnosticsReporter) {
		r.endpoint = endpoint
	}
}

// WithReporterHTTPClient replaces the HTTP client used by the reachability
// probe.
func WithReporterHTTPClient(client *http.Client) ReporterOption {
	return func(r *DiagnosticsReporter) {
		r.httpClient = client
	}
}

// NewDiagnosticsReporter creates a reporter for the given configuration.
// The cache is optional; without it the cache-state section is omitted.
func NewDiagnosticsReporter(cfg ClientCredentialsConfig, cache *TokenCache, opts ...ReporterOption) *DiagnosticsReporter {
	r := &DiagnosticsReporter{
		config: cfg,
		cache:  cache,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.endpoint == nil {
		r.endpoint = NewHTTPEndpointClient()
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return r
}

// GetStatusReport runs every probe and accumulates their results. Probes are
// independent: a failure in one never prevents the rest from reporting.
func (r *DiagnosticsReporter) GetStatusReport(ctx context.Context) string {
	if ctx == nil {
		ctx = context.Background()
	}

	var b strings.Builder

	b.WriteString("=== Service authentication status ===\n")

	r.reportConfiguration(&b)
	r.reportReachability(ctx, &b)
	r.reportTokenAcquisition(ctx, &b)
	r.reportCacheState(&b)

	return b.String()
}

func (r *DiagnosticsReporter) reportConfiguration(b *strings.Builder) {
	b.WriteString("\n[configuration]\n")

	if err := r.config.Validate(); err != nil {
		fmt.Fprintf(b, "FAIL: %v\n", err)
		return
	}

	fmt.Fprintf(b, "OK: token endpoint %s, client %s, scope %q\n",
		r.config.TokenURL, r.config.ClientID, r.config.Scopes)
}

func (r *DiagnosticsReporter) reportReachability(ctx context.Context, b *strings.Builder) {
	b.WriteString("\n[authorization server reachability]\n")

	base, err := issuerBase(r.config.TokenURL)
	if err != nil {
		fmt.Fprintf(b, "SKIP: cannot derive issuer from token URL: %v\n", err)
		return
	}

	for _, path := range wellKnownPaths {
		probeURL := base + path

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
		if err != nil {
			fmt.Fprintf(b, "FAIL: %s: %v\n", probeURL, err)
			continue
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			fmt.Fprintf(b, "FAIL: %s: %v\n", probeURL, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			fmt.Fprintf(b, "OK: %s reachable (status %d)\n", probeURL, resp.StatusCode)
			return
		}
		fmt.Fprintf(b, "WARN: %s returned status %d\n", probeURL, resp.StatusCode)
	}
}

func (r *DiagnosticsReporter) reportTokenAcquisition(ctx context.Context, b *strings.Builder) {
	b.WriteString("\n[token acquisition]\n")

	resp, err := r.endpoint.RequestToken(ctx, r.config)
	if err != nil {
		fmt.Fprintf(b, "FAIL: %v\n", err)
		return
	}

	// Report shape only, never the token itself.
	fmt.Fprintf(b, "OK: received token (length %d, expires_in %d)\n",
		len(resp.AccessToken), resp.ExpiresIn)
}

func (r *DiagnosticsReporter) reportCacheState(b *strings.Builder) {
	b.WriteString("\n[token cache]\n")

	if r.cache == nil {
		b.WriteString("SKIP: no cache attached\n")
		return
	}

	status := r.cache.Status()
	fmt.Fprintf(b, "state: %s\n", status.State)

	if status.State != CacheStateEmpty {
		fmt.Fprintf(b, "issued: %s\n", status.IssuedAt.Format(time.RFC3339))
		fmt.Fprintf(b, "expires: %s\n", status.ExpiresAt.Format(time.RFC3339))
	}
	if status.LastFailure != nil {
		fmt.Fprintf(b, "last failure: %v\n", status.LastFailure)
	}
}

// issuerBase reduces a token endpoint URL to its scheme and host, the base
// against which well-known metadata documents are resolved.
func issuerBase(tokenURL string) (string, error) {
	u, err := url.Parse(tokenURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("token URL %q has no scheme or host", tokenURL)
	}

	return u.Scheme + "://" + u.Host, nil
}
