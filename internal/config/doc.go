// Package config loads, normalizes, and validates burncheck configuration.
//
// Configuration is read from ~/.config/burncheck/config.toml or ./burncheck.toml.
// Missing files fall back to repository defaults, which reproduce the classic
// optical test layout (/tmp/optical-test, optical_test.md5, optical-test.iso).
// Paths are expanded and made absolute during Load so downstream packages never
// deal with "~" prefixes.
package config
