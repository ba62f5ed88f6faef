// Package config loads, normalizes, and validates flowshot configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and layers environment overrides (N8N_*,
// GITHUB_*) over file values so secrets can stay out of the config file.
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
