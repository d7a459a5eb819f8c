package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout covers store and model round trips.
	DefaultTimeout = 10 * time.Second

	// ShortTimeout is for lookups that must never slow the request path,
	// like cache reads.
	ShortTimeout = 2 * time.Second
)

// WithTimeout creates a context with the default timeout.
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithShortTimeout creates a context with the short timeout.
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
