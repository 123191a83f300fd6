package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8000", cfg.Listen)
	assert.True(t, cfg.SuppressScripts)
	assert.False(t, cfg.Honeypot)
	assert.False(t, cfg.MixedLetters)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
	assert.Equal(t, int64(16<<20), cfg.MaxBodyBytes)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid default", func(*Config) {}, ""},
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen"},
		{"bad default url scheme", func(c *Config) { c.DefaultURL = "ftp://x" }, "scheme"},
		{"good default url", func(c *Config) { c.DefaultURL = "https://example.com/" }, ""},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout"},
		{"negative body limit", func(c *Config) { c.MaxBodyBytes = -1 }, "max_body_bytes"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEffectiveSuppressScripts(t *testing.T) {
	cfg := NewConfig()
	cfg.SuppressScripts = false
	assert.False(t, cfg.EffectiveSuppressScripts())

	// Honeypot mode always suppresses.
	cfg.Honeypot = true
	assert.True(t, cfg.EffectiveSuppressScripts())
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.DefaultURL = "https://example.com/"
	cfg.Allowlist = []string{"en.wikipedia.org", "example.org"}
	cfg.Honeypot = true
	cfg.Timeout = Duration(5 * time.Second)

	data, err := cfg.ToYAML()
	require.NoError(t, err)

	parsed, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestFromYAML(t *testing.T) {
	parsed, err := FromYAML([]byte(`
listen: ":9999"
allowlist:
  - example.org
honeypot: true
timeout: 45s
`))
	require.NoError(t, err)

	assert.Equal(t, ":9999", parsed.Listen)
	assert.Equal(t, []string{"example.org"}, parsed.Allowlist)
	assert.True(t, parsed.Honeypot)
	assert.Equal(t, 45*time.Second, parsed.Timeout.Std())
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := FromYAML([]byte("listen: [not a string"))
	assert.Error(t, err)

	_, err = FromYAML([]byte("timeout: nonsense"))
	assert.Error(t, err)
}

func TestTemplate_ParsesCleanly(t *testing.T) {
	cfg, err := FromYAML([]byte(Template()))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
	assert.NoError(t, cfg.Validate())
}

func TestDurationYAML(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalYAML(yamlNode(t, "150ms")))
	assert.Equal(t, 150*time.Millisecond, d.Std())

	// Bare integers are nanoseconds.
	require.NoError(t, d.UnmarshalYAML(yamlNode(t, "1000")))
	assert.Equal(t, time.Duration(1000), d.Std())
}

// yamlNode parses a single scalar into a yaml.Node for decode tests.
func yamlNode(t *testing.T, value string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(value), &doc))
	require.NotEmpty(t, doc.Content)
	return doc.Content[0]
}
