// Package repository holds the published ranking snapshot.
package repository

import (
	"context"
	"time"

	"github.com/okian/rally/internal/adapters/matchlog"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
)

// Snapshot is one complete, immutable ranking computation and the match log
// it was computed from. Readers must not modify its slices or maps.
type Snapshot struct {
	Result   ranking.Result
	Matches  []model.Match
	Report   matchlog.Report
	Policy   ranking.TiePolicy
	Source   string
	LoadedAt time.Time
	// Version starts at 1 and grows by one per publish.
	Version uint64
}

// Store provides read/write access to the current snapshot.
type Store interface {
	// Publish replaces the current snapshot and returns the stored copy
	// with its version assigned.
	Publish(ctx context.Context, s Snapshot) Snapshot
	// Current returns the latest snapshot, or ErrNotReady before the first publish.
	Current(ctx context.Context) (Snapshot, error)
}
