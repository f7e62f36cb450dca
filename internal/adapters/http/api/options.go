package api

import (
	"time"

	"github.com/okian/rally/pkg/logger"
	"golang.org/x/time/rate"
)

// Option configures the Server.
type Option func(*Server)

// WithRefreshRate limits POST /refresh to n accepted requests per minute,
// with a burst of n. Zero or negative values keep the default of 6.
func WithRefreshRate(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.limiter = rate.NewLimiter(perMinute(n), n)
		}
	}
}

// WithClock sets the reference time for relative dates such as "yesterday".
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}
