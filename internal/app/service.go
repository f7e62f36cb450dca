// Package service wires the match log, the ranking engine, the snapshot
// store and the refresh worker, and serves the read model used by the
// HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/rally/internal/adapters/mq/queue"
	"github.com/okian/rally/internal/adapters/mq/worker"
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/domain/analytics"
	"github.com/okian/rally/internal/domain/dedupe"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
	"github.com/okian/rally/internal/domain/types"
	"github.com/okian/rally/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader    worker.Loader
	engine    *ranking.Engine
	store     *repository.SnapshotStore
	queue     *queue.InMemoryQueue
	refresher *worker.Refresher
	deduper   dedupe.Deduper

	// Configuration
	policy          ranking.TiePolicy
	queueSize       int
	refreshInterval time.Duration
	fetchTimeout    time.Duration
	maxLimit        int
	dedupeSize      int
	now             func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service reading from loader.
func New(loader worker.Loader, opts ...Option) *Service {
	s := &Service{
		loader:          loader,
		policy:          ranking.TieSkip,
		queueSize:       16,
		refreshInterval: 10 * time.Minute,
		fetchTimeout:    30 * time.Second,
		maxLimit:        100,
		dedupeSize:      1024,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = ranking.New(ranking.WithTiePolicy(s.policy), ranking.WithLogger(s.logger.Named("engine")))
	s.store = repository.NewSnapshotStore(repository.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start builds the queue and refresh worker, performs the initial load and
// starts the worker. The load runs outside the service lock so stats and
// refresh requests are answered while a slow source is read. A failed
// initial load is logged, not returned: reads answer ErrNotReady until a
// later refresh succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.refresher = worker.NewRefresher(s.queue, s.loader, s.engine, s.store,
		worker.WithInterval(s.refreshInterval),
		worker.WithFetchTimeout(s.fetchTimeout),
		worker.WithClock(s.now),
		worker.WithLogger(s.logger.Named("refresher")),
	)
	s.started = true
	r := s.refresher
	s.mu.Unlock()

	if _, err := r.Refresh(ctx, model.NewRefreshRequest(model.ReasonStartup, s.now())); err != nil {
		s.logger.Warn(ctx, "initial load failed", logger.String("source", s.loader.String()), logger.Error(err))
	}
	r.Start(ctx)

	s.logger.Info(ctx, "ranking service started",
		logger.String("source", s.loader.String()),
		logger.String("tie_policy", string(s.policy)),
		logger.Duration("refresh_interval", s.refreshInterval),
	)
	return nil
}

// Stop gracefully shuts down the refresh worker.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.refresher.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "refresher shutdown", logger.Error(err))
	}
	_ = s.queue.Close()
	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// Refresh reloads synchronously, bypassing the queue. Used by the CLI.
func (s *Service) Refresh(ctx context.Context) (repository.Snapshot, error) {
	s.mu.RLock()
	r := s.refresher
	s.mu.RUnlock()
	if r == nil {
		r = worker.NewRefresher(nil, s.loader, s.engine, s.store,
			worker.WithFetchTimeout(s.fetchTimeout),
			worker.WithClock(s.now),
			worker.WithLogger(s.logger.Named("refresher")),
		)
	}
	return r.Refresh(ctx, model.NewRefreshRequest(model.ReasonStartup, s.now()))
}

// RequestRefresh enqueues an asynchronous refresh. A non-empty key makes
// the call idempotent: repeating an accepted key returns duplicate=true
// without enqueueing.
func (s *Service) RequestRefresh(ctx context.Context, key string) (req model.RefreshRequest, duplicate bool, err error) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.RefreshRequest{}, false, ErrNotStarted
	}

	if key != "" && s.deduper.SeenAndRecord(ctx, key) {
		s.logger.Debug(ctx, "duplicate refresh request", logger.String("key", key))
		return model.RefreshRequest{}, true, nil
	}
	req = model.NewRefreshRequest(model.ReasonAPI, s.now())
	if !q.Enqueue(ctx, req) {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		return model.RefreshRequest{}, false, ErrBackpressure
	}
	return req, false, nil
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot(ctx context.Context) (repository.Snapshot, error) {
	return s.store.Current(ctx)
}

// day resolves date against the snapshot; the zero time means the latest day.
func day(snap repository.Snapshot, date time.Time) (ranking.Day, error) {
	if date.IsZero() {
		d, ok := snap.Result.Latest()
		if !ok {
			return ranking.Day{}, fmt.Errorf("%w: no matches played", ErrUnknownDate)
		}
		return d, nil
	}
	d, ok := snap.Result.Day(date)
	if !ok {
		return ranking.Day{}, fmt.Errorf("%w: %s", ErrUnknownDate, date.Format(types.DateLayout))
	}
	return d, nil
}

// Days lists computed dates, most recent first.
func (s *Service) Days(ctx context.Context) ([]string, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	dates := snap.Result.Dates()
	out := make([]string, len(dates))
	for i, d := range dates {
		out[len(dates)-1-i] = d.Format(types.DateLayout)
	}
	return out, nil
}

// Leaderboard returns the standings of date (latest when zero). A limit
// of 0 means the configured maximum.
func (s *Service) Leaderboard(ctx context.Context, date time.Time, limit int) (types.Leaderboard, error) {
	if limit < 0 || limit > s.maxLimit {
		return types.Leaderboard{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidLimit, limit, s.maxLimit)
	}
	if limit == 0 {
		limit = s.maxLimit
	}
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Leaderboard{}, err
	}
	d, err := day(snap, date)
	if err != nil {
		return types.Leaderboard{}, err
	}
	rows, err := analytics.Movements(snap.Result, d.Date)
	if err != nil {
		return types.Leaderboard{}, err
	}
	return types.NewLeaderboard(d.Date, rows, limit), nil
}

// Rank returns one player's entry on date (latest when zero).
func (s *Service) Rank(ctx context.Context, player string, date time.Time) (types.Entry, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	d, err := day(snap, date)
	if err != nil {
		return types.Entry{}, err
	}
	rows, err := analytics.Movements(snap.Result, d.Date)
	if err != nil {
		return types.Entry{}, err
	}
	for _, r := range rows {
		if r.Player == player {
			return types.NewEntry(r), nil
		}
	}
	return types.Entry{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
}

// Highlights returns the top scorer and biggest upset of date (latest when zero).
func (s *Service) Highlights(ctx context.Context, date time.Time) (types.Highlights, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Highlights{}, err
	}
	d, err := day(snap, date)
	if err != nil {
		return types.Highlights{}, err
	}
	h, err := analytics.DayHighlights(snap.Result, d.Date)
	if err != nil {
		return types.Highlights{}, err
	}
	return types.NewHighlights(h), nil
}

// Players lists every participant in ascending order.
func (s *Service) Players(ctx context.Context) ([]string, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Players(snap.Matches), nil
}

// Profile returns a player's record with the snapshot's tie policy.
func (s *Service) Profile(ctx context.Context, player string) (types.Profile, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Profile{}, err
	}
	p, err := analytics.Profile(player, snap.Matches, snap.Policy)
	if err != nil {
		return types.Profile{}, fmt.Errorf("%w: %q", err, player)
	}
	return types.NewProfile(p), nil
}

// History returns a player's position on every computed day.
func (s *Service) History(ctx context.Context, player string) ([]analytics.HistoryPoint, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	h, err := analytics.History(snap.Result, player)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, player)
	}
	return h, nil
}

// Stats describes the service and its current snapshot.
type Stats struct {
	Started       bool     `json:"started"`
	Ready         bool     `json:"ready"`
	Source        string   `json:"source"`
	TiePolicy     string   `json:"tie_policy"`
	Version       uint64   `json:"version,omitempty"`
	LoadedAt      string   `json:"loaded_at,omitempty"`
	Rows          int      `json:"rows"`
	Dropped       int      `json:"dropped"`
	Coerced       int      `json:"coerced"`
	Matches       int      `json:"matches"`
	Players       int      `json:"players"`
	Days          int      `json:"days"`
	LatestDay     string   `json:"latest_day,omitempty"`
	QueueLength   int      `json:"queue_length"`
	QueueCapacity int      `json:"queue_capacity"`
	TopPlayers    []string `json:"top_players,omitempty"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:   s.started,
		Source:    s.loader.String(),
		TiePolicy: string(s.policy),
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len(ctx)
		st.QueueCapacity = s.queue.Capacity()
	}

	snap, err := s.store.Current(ctx)
	if err != nil {
		return st
	}
	st.Ready = true
	st.Version = snap.Version
	st.LoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339)
	st.Rows = snap.Report.Rows
	st.Dropped = snap.Report.Dropped
	st.Coerced = snap.Report.Coerced
	st.Matches = len(snap.Matches)
	st.Players = len(snap.Result.Players())
	st.Days = len(snap.Result.Days)
	if d, ok := snap.Result.Latest(); ok {
		st.LatestDay = d.Date.Format(types.DateLayout)
		for i := 0; i < len(d.Standings) && i < 3; i++ {
			st.TopPlayers = append(st.TopPlayers, d.Standings[i].Player)
		}
	}
	return st
}
