// Package config loads, normalizes, and validates redub's engine
// configuration.
//
// It supplies compiled-in defaults, expands user paths (including tilde
// shortcuts), and reads an explicit --config path or else redub.toml in the
// working directory, falling back to ~/.config/redub/config.toml.
// The Config type centralizes pacing, TTS orchestration, synthesis limits,
// QA thresholds, media tool paths, and logging in one struct so every
// pipeline stage reads consistent, validated settings.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
