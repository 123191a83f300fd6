package configloader

import "github.com/yaklabco/goscramble/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
//
// Booleans can only be merged when true, because false is the zero value.
// Flag layers that need to force a boolean off (e.g. --keep-scripts) must
// set the field on the result after Load, guarded by flag.Changed.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a shallow copy of base
	result := *base

	if override.Listen != "" {
		result.Listen = override.Listen
	}
	if override.DefaultURL != "" {
		result.DefaultURL = override.DefaultURL
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.MaxBodyBytes != 0 {
		result.MaxBodyBytes = override.MaxBodyBytes
	}

	if override.Honeypot {
		result.Honeypot = override.Honeypot
	}
	if override.SuppressScripts {
		result.SuppressScripts = override.SuppressScripts
	}
	if override.MixedLetters {
		result.MixedLetters = override.MixedLetters
	}

	// Slices: override replaces base entirely if non-nil
	if override.Allowlist != nil {
		result.Allowlist = override.Allowlist
	}

	return &result
}
