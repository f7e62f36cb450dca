package service

import (
	"errors"

	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/domain/analytics"
)

// Sentinel kinds returned by the service. Lookups reuse the analytics and
// repository sentinels so callers can match them with errors.Is.
var (
	ErrNotReady      = repository.ErrNotReady
	ErrUnknownDate   = analytics.ErrUnknownDate
	ErrUnknownPlayer = analytics.ErrUnknownPlayer
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrBackpressure  = errors.New("refresh queue full")
	ErrNotStarted    = errors.New("service not started")
)
