// Package config loads, normalizes, and validates sunweather configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SUNWEATHER_CONFIG
// environment override. The Config type centralizes every knob the CLI
// needs: archive endpoint and retry budget, alignment tolerance, output
// format and fps, scratch directory placement, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
