// authdiag prints a diagnostic report for the service-to-service OAuth2
// token pipeline: configuration completeness, authorization server
// reachability, and a live token acquisition attempt.
//
// Configuration comes from an optional YAML file plus AUTH_* environment
// variables (AUTH_TOKEN_URL, AUTH_CLIENT_ID, AUTH_CLIENT_SECRET,
// AUTH_SCOPE); the environment wins.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/markyoxall/go-clientauth/oauth2client"
)

var (
	configPath string
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "authdiag",
	Short: "Diagnose the OAuth2 client-credentials token pipeline",
	Long: `authdiag probes the authorization server configured for this service
and reports configuration, reachability, token acquisition, and cache state.

The token acquisition probe performs a real client-credentials exchange.

Examples:
  authdiag --config auth.yaml
  AUTH_TOKEN_URL=https://auth.example/connect/token AUTH_CLIENT_ID=svc \
    AUTH_CLIENT_SECRET=... authdiag`,
	RunE: runDiagnostics,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall probe timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cache := oauth2client.NewTokenCache(cfg, oauth2client.WithLogger(logger))
	reporter := oauth2client.NewDiagnosticsReporter(cfg, cache,
		oauth2client.WithReporterEndpointClient(
			oauth2client.NewHTTPEndpointClient(oauth2client.WithEndpointLogger(logger)),
		),
	)

	fmt.Fprintln(cmd.OutOrStdout(), reporter.GetStatusReport(ctx))
	return nil
}

// loadConfig merges the optional YAML file with AUTH_* environment
// variables, environment last so it takes precedence.
func loadConfig(path string) (oauth2client.ClientCredentialsConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return oauth2client.ClientCredentialsConfig{}, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("AUTH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AUTH_"))
	}), nil); err != nil {
		return oauth2client.ClientCredentialsConfig{}, fmt.Errorf("load environment: %w", err)
	}

	return oauth2client.ClientCredentialsConfig{
		TokenURL:     k.String("token_url"),
		ClientID:     k.String("client_id"),
		ClientSecret: k.String("client_secret"),
		Scopes:       k.String("scope"),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
