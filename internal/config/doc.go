// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. Every analytics
// threshold and weight is configuration rather than a constant, so it can be
// tuned per deployment without a rebuild.
package config
