package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/goscramble/pkg/config"
)

// envVarPrefix is the prefix for all goscramble environment variables.
const envVarPrefix = "GOSCRAMBLE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt64
	envTypeDuration
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"LISTEN":           {field: "listen", typ: envTypeString},
	"DEFAULT_URL":      {field: "default_url", typ: envTypeString},
	"ALLOWLIST":        {field: "allowlist", typ: envTypeSlice},
	"HONEYPOT":         {field: "honeypot", typ: envTypeBool},
	"SUPPRESS_SCRIPTS": {field: "suppress_scripts", typ: envTypeBool},
	"MIXED_LETTERS":    {field: "mixed_letters", typ: envTypeBool},
	"TIMEOUT":          {field: "timeout", typ: envTypeDuration},
	"MAX_BODY_BYTES":   {field: "max_body_bytes", typ: envTypeInt64},
	"LOG_LEVEL":        {field: "log_level", typ: envTypeString},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOSCRAMBLE_ (e.g., GOSCRAMBLE_LISTEN).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setInt64Field(cfg, mapping.field, i)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q (expected e.g. 30s)", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "listen":
		cfg.Listen = value
	case "default_url":
		cfg.DefaultURL = value
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "honeypot":
		cfg.Honeypot = value
	case "suppress_scripts":
		cfg.SuppressScripts = value
	case "mixed_letters":
		cfg.MixedLetters = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setInt64Field sets an integer field on the config by field path.
func setInt64Field(cfg *config.Config, field string, value int64) error {
	switch field {
	case "max_body_bytes":
		cfg.MaxBodyBytes = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setDurationField sets a duration field on the config by field path.
func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "timeout":
		cfg.Timeout = config.Duration(value)
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "allowlist":
		cfg.Allowlist = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// ListEnvVars returns a list of all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"GOSCRAMBLE_LISTEN":           "Address the serve command binds to (e.g. :8000)",
		"GOSCRAMBLE_DEFAULT_URL":      "Page scrambled when a request names no url",
		"GOSCRAMBLE_ALLOWLIST":        "Comma-separated list of hostnames that may be scrambled",
		"GOSCRAMBLE_HONEYPOT":         "Honeypot mode: true or false",
		"GOSCRAMBLE_SUPPRESS_SCRIPTS": "Strip JavaScript from scrambled pages: true or false",
		"GOSCRAMBLE_MIXED_LETTERS":    "Shuffle consonants and vowels together: true or false",
		"GOSCRAMBLE_TIMEOUT":          "Upstream fetch timeout (e.g. 30s)",
		"GOSCRAMBLE_MAX_BODY_BYTES":   "Upstream page size limit in bytes",
		"GOSCRAMBLE_LOG_LEVEL":        "Log level: debug, info, warn, or error",
	}
}
