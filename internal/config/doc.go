// Package config loads, normalizes, and validates chartertrack configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AZURE_CONTAINER_SAS_URL. The Config type centralizes every knob the CLI
// needs, so the backup source, cache location, database path, and report
// settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
