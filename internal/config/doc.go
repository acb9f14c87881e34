// Package config loads, normalizes, and validates samplegraph configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FREESOUND_API_KEY. The Config type centralizes every knob the CLI needs,
// so checkpoint directories and external service credentials are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
