// Package config loads, normalizes, and validates whisperdict's TOML
// configuration. Paths default to XDG locations and support ~ expansion.
package config
