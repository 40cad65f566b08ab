// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// LoggerKey is the context key type for the enriched logger.
// The CLI stores a logger carrying the run_id of one command invocation;
// the API client logs through it when present.
type LoggerKey struct{}
