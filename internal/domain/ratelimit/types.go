// Package ratelimit defines client-side attempt limiting.
package ratelimit

import (
	"fmt"
	"time"
)

// Config defines the limit: at most Burst attempts at once, refilled at
// Rate attempts per Period.
type Config struct {
	Rate   int
	Burst  int
	Period time.Duration
}

// PerMinute allows n attempts per minute with a burst of n.
func PerMinute(n int) Config {
	return Config{Rate: n, Burst: n, Period: time.Minute}
}

// Result contains the outcome of one attempt.
type Result struct {
	Allowed bool

	// Remaining is how many further attempts would be allowed right now.
	Remaining int

	// RetryAfter is the wait until the next attempt is allowed.
	// Only meaningful when Allowed is false.
	RetryAfter time.Duration

	// ResetAfter is the wait until the full burst is available again.
	ResetAfter time.Duration
}

// KeyType identifies what is being limited.
type KeyType string

const (
	// KeyTypeBooking limits class booking attempts.
	KeyTypeBooking KeyType = "booking"
)

const keyPrefix = "ratelimit"

// FormatKey returns "ratelimit:{type}:{value}".
func FormatKey(keyType KeyType, value string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, keyType, value)
}
