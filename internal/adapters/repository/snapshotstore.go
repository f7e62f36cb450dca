package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rally/pkg/metrics"
)

// SnapshotStore keeps the current snapshot behind an atomic pointer. Reads
// never block and always observe a fully built snapshot; publishes are
// serialized so versions are strictly increasing.
type SnapshotStore struct {
	mu       sync.Mutex // serializes Publish
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish swaps in snap with the next version.
func (s *SnapshotStore) Publish(_ context.Context, snap Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Version = 1
	if cur := s.snapshot.Load(); cur != nil {
		snap.Version = cur.Version + 1
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = s.now()
	}
	s.snapshot.Store(&snap)

	metrics.UpdateSnapshot(snap.Version, snap.LoadedAt)
	metrics.UpdateRanking(len(snap.Result.Players()), len(snap.Result.Days))
	return snap
}

// Current returns the latest snapshot.
func (s *SnapshotStore) Current(_ context.Context) (Snapshot, error) {
	cur := s.snapshot.Load()
	if cur == nil {
		metrics.RecordErrorByComponent("repository", "not_ready")
		return Snapshot{}, ErrNotReady
	}
	return *cur, nil
}

// Version returns the current version, 0 before the first publish.
func (s *SnapshotStore) Version() uint64 {
	if cur := s.snapshot.Load(); cur != nil {
		return cur.Version
	}
	return 0
}
