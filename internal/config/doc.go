// Package config loads, normalizes, and validates cadence configuration.
//
// Configuration is TOML. Load resolves the file (explicit path, then
// ~/.config/cadence/config.toml, then ./cadence.toml), overlays it on
// Default(), expands ~ in paths, applies environment overrides such as
// CADENCE_API_TOKEN, and validates ranges before returning.
//
// CreateSample writes a commented starter file for `cadence config init`.
package config
