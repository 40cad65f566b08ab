package ratelimit

import "context"

// Limiter decides whether one more attempt under key is allowed.
// Implementations use GCRA so attempts are spread evenly instead of resetting
// at window boundaries.
type Limiter interface {
	// Allow records an attempt under key and reports whether it may proceed.
	Allow(ctx context.Context, key string, config Config) (Result, error)
}
