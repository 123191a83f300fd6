package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the configuration to human-readable YAML.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Fields absent from
// the document keep their zero values; merging onto defaults is the
// loader's job.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Template returns a commented starter configuration file.
func Template() string {
	return `# goscramble configuration.
#
# Values here are overridden by GOSCRAMBLE_* environment variables and
# command-line flags.

# Address the serve command binds to.
listen: ":8000"

# Page scrambled when a request names no url parameter.
# Leave empty to derive it from the request host.
default_url: ""

# Hostnames that may be scrambled in addition to the serving host.
allowlist: []
#  - en.wikipedia.org

# Honeypot mode: restrict browsing to the serving host and block
# content that cannot be scrambled.
honeypot: false

# Strip JavaScript from scrambled pages. Always on in honeypot mode.
suppress_scripts: true

# Shuffle all letters in one pool instead of keeping consonants and
# vowels separate.
mixed_letters: false

# Upstream fetch timeout.
timeout: 30s

# Upstream body size limit in bytes.
max_body_bytes: 16777216

# Logging verbosity: debug, info, warn, error.
log_level: info
`
}
