// Package config defines core configuration types for goscramble.
// These are pure data structures; loading and merging live in
// internal/configloader.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults.
const (
	DefaultListen       = ":8000"
	DefaultTimeout      = Duration(30 * time.Second)
	DefaultMaxBodyBytes = 16 << 20
	DefaultLogLevel     = "info"
)

// Config is the root configuration structure for goscramble.
type Config struct {
	// Listen is the address the serve command binds to.
	Listen string `yaml:"listen"`

	// DefaultURL is scrambled when a request names no url. Empty means
	// the server derives it from the request host.
	DefaultURL string `yaml:"default_url"`

	// Allowlist holds hostnames that may be scrambled in addition to
	// the serving host.
	Allowlist []string `yaml:"allowlist"`

	// Honeypot restricts browsing to the serving host and blocks
	// content that cannot be scrambled.
	Honeypot bool `yaml:"honeypot"`

	// SuppressScripts strips JavaScript from scrambled pages.
	// On by default; always on in honeypot mode.
	SuppressScripts bool `yaml:"suppress_scripts"`

	// MixedLetters shuffles consonants and vowels in one pool instead
	// of preserving the letter distribution.
	MixedLetters bool `yaml:"mixed_letters"`

	// Timeout bounds a single upstream fetch.
	Timeout Duration `yaml:"timeout"`

	// MaxBodyBytes bounds how much of an upstream page is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// LogLevel sets logging verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		SuppressScripts: true,
		Timeout:         DefaultTimeout,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		LogLevel:        DefaultLogLevel,
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}

	if c.DefaultURL != "" {
		u, err := url.Parse(c.DefaultURL)
		if err != nil {
			return fmt.Errorf("default_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("default_url: unsupported scheme %q", u.Scheme)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}

	return nil
}

// EffectiveSuppressScripts returns whether scripts are stripped; honeypot
// mode forces suppression regardless of configuration.
func (c *Config) EffectiveSuppressScripts() bool {
	return c.SuppressScripts || c.Honeypot
}
