package models

import "time"

// MaxRateKeyLength caps rate-limit keys to the stored column size.
const MaxRateKeyLength = 180

// RateLimitWindow is one fixed window of attempts for a single key.
// One row per distinct key, overwritten in place.
type RateLimitWindow struct {
	RateKey       string
	WindowStartMs int64
	Attempts      int
	UpdatedAt     time.Time
}

// RateLimitResult is the outcome of a Consume call.
type RateLimitResult struct {
	Allowed    bool
	Attempts   int
	Remaining  int
	RetryAfter time.Duration
}
