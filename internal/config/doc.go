// Package config loads, normalizes, and validates the chronicle configuration
// file.
//
// Configuration lives in a TOML file (default ~/.config/chronicle/config.toml)
// and seeds the pipeline's runtime settings at startup. Path fields are
// expanded and made absolute during Load so downstream code never handles
// "~" or relative paths. Validation runs before any value is returned, so a
// *Config obtained from Load is always usable.
package config
