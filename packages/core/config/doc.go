// Package config handles configuration loading and management for hitmatch.
//
// It provides functionality for:
//   - Loading configuration from .hitmatch.config.json and friends
//   - Default configuration values
//   - Merging file settings with command-line overrides
package config
