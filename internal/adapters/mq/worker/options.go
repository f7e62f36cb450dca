package worker

import (
	"time"

	"github.com/okian/rally/pkg/logger"
)

// Option applies a configuration option to the Refresher.
type Option func(*Refresher)

// WithInterval sets the TTL between periodic refreshes. Zero disables the ticker.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d >= 0 {
			r.interval = d
		}
	}
}

// WithFetchTimeout bounds a single load.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithClock sets the time source for request and snapshot stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}
