// Package ratelimit implements fixed-window per-key request limiting.
// Fixed windows allow a burst at window boundaries; that is an accepted
// tradeoff for keeping the counters a single increment.
package ratelimit

import (
	"context"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Result is one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key within a fixed window.
type Limiter interface {
	// Check records one request for key and reports whether it is within
	// quota. Implementations never fail a request because of their own
	// infrastructure; errors are reserved for programmer mistakes.
	Check(ctx context.Context, key string) (Result, error)

	// Close stops background maintenance owned by the limiter.
	Close() error
}
