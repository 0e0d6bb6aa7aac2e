package oauth2client

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"

	"golang.org/x/crypto/nacl/secretbox"
)

// TokenProtector encrypts cached token material at rest in process memory.
// Implementations must be safe for concurrent use.
//
// Unprotect is fail-soft by contract: a value that cannot be unprotected is
// returned unchanged (with a logged warning) rather than failing the caller.
// A token that fails to unprotect is at worst unusable and will be replaced
// by the next refresh.
type TokenProtector interface {
	Protect(raw string) (string, error)
	Unprotect(protected string) string
}

// SecretboxProtector protects tokens with NaCl secretbox using a random key
// scoped to the running process. Protected values from one process are
// intentionally unreadable by another.
type SecretboxProtector struct {
	key    [32]byte
	logger *slog.Logger
}

// ProtectorOption is a functional option for configuring SecretboxProtector.
type ProtectorOption func(*SecretboxProtector)

// WithProtectorLogger sets the logger used for unprotect warnings.
func WithProtectorLogger(logger *slog.Logger) ProtectorOption {
	return func(p *SecretboxProtector) {
		p.logger = logger
	}
}

// NewSecretboxProtector creates a protector with a fresh process-local key.
func NewSecretboxProtector(opts ...ProtectorOption) *SecretboxProtector {
	p := &SecretboxProtector{
		logger: slog.Default(),
	}

	// crypto/rand.Read is documented to never fail.
	if _, err := rand.Read(p.key[:]); err != nil {
		panic(err)
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Protect encrypts the raw token and returns it base64-encoded.
func (p *SecretboxProtector) Protect(raw string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(raw), &nonce, &p.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Unprotect decrypts a value produced by Protect. On any failure (corrupted
// input, key mismatch after a restart) it logs a warning and returns the
// input unchanged.
func (p *SecretboxProtector) Unprotect(protected string) string {
	sealed, err := base64.StdEncoding.DecodeString(protected)
	if err != nil || len(sealed) < 24 {
		p.logger.Warn("token unprotect failed, using value as-is",
			"preview", tokenPreview(protected),
		)
		return protected
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	raw, ok := secretbox.Open(nil, sealed[24:], &nonce, &p.key)
	if !ok {
		p.logger.Warn("token unprotect failed, using value as-is",
			"preview", tokenPreview(protected),
		)
		return protected
	}

	return string(raw)
}

// NoopProtector passes tokens through unchanged. Intended for tests and for
// callers that opt out of at-rest protection.
type NoopProtector struct{}

// Protect returns the input unchanged.
func (NoopProtector) Protect(raw string) (string, error) { return raw, nil }

// Unprotect returns the input unchanged.
func (NoopProtector) Unprotect(protected string) string { return protected }

// tokenPreview returns a truncated form of a sensitive value that is safe to
// log: first and last four characters at most.
func tokenPreview(s string) string {
	if len(s) <= 8 {
		return "[redacted]"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
