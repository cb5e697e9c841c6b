// Package token resolves API tokens for the issue trackers plans are published to.
package token

import (
	"errors"
	"os"
)

// EnvPrefix prefixes the planbook-specific token variables.
const EnvPrefix = "PLANBOOK_"

// ErrNoToken is returned when no token can be resolved.
var ErrNoToken = errors.New("no token found")

// ResolverConfig lists the token sources for one tracker.
type ResolverConfig struct {
	// ProviderName builds PLANBOOK_<NAME>_TOKEN. Uppercase, e.g. "GITHUB".
	ProviderName string
	// DefaultEnvVars are checked after the prefixed variable.
	DefaultEnvVars []string
	// ConfigToken comes from config.yaml.
	ConfigToken string
	// CLIFallback asks a tool such as gh for a token.
	CLIFallback func() string
}

// ResolveToken returns the first token found, in this order:
//  1. PLANBOOK_<NAME>_TOKEN
//  2. DefaultEnvVars
//  3. ConfigToken
//  4. CLIFallback
func ResolveToken(cfg ResolverConfig) (string, error) {
	if cfg.ProviderName != "" {
		if tok := os.Getenv(EnvPrefix + cfg.ProviderName + "_TOKEN"); tok != "" {
			return tok, nil
		}
	}

	for _, name := range cfg.DefaultEnvVars {
		if tok := os.Getenv(name); tok != "" {
			return tok, nil
		}
	}

	if cfg.ConfigToken != "" {
		return cfg.ConfigToken, nil
	}

	if cfg.CLIFallback != nil {
		if tok := cfg.CLIFallback(); tok != "" {
			return tok, nil
		}
	}

	return "", ErrNoToken
}

// Config starts a ResolverConfig for providerName with the config.yaml token.
func Config(providerName, configToken string) ResolverConfig {
	return ResolverConfig{
		ProviderName: providerName,
		ConfigToken:  configToken,
	}
}

// WithCLIFallback adds a CLI fallback.
func (c ResolverConfig) WithCLIFallback(fn func() string) ResolverConfig {
	c.CLIFallback = fn
	return c
}

// WithEnvVars adds environment variables to check.
func (c ResolverConfig) WithEnvVars(envVars ...string) ResolverConfig {
	c.DefaultEnvVars = append(c.DefaultEnvVars, envVars...)
	return c
}
