// Package worker runs the single refresh worker: it reloads the match log,
// recomputes the ranking and publishes the snapshot.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rally/internal/adapters/matchlog"
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultInterval     = 10 * time.Minute
	defaultFetchTimeout = 30 * time.Second
)

// ErrStopped is returned by Shutdown when the worker was never started.
var ErrStopped = errors.New("worker stopped")

// Loader reads the full match log.
type Loader interface {
	Load(ctx context.Context) ([]model.Match, matchlog.Report, error)
	String() string
}

// Computer folds matches into daily snapshots.
type Computer interface {
	Compute(matches []model.Match) ranking.Result
	Policy() ranking.TiePolicy
}

// Publisher stores a computed snapshot.
type Publisher interface {
	Publish(ctx context.Context, s repository.Snapshot) repository.Snapshot
}

// Queue defines how the worker receives and schedules requests.
type Queue interface {
	Enqueue(ctx context.Context, r model.RefreshRequest) bool
	Dequeue(ctx context.Context) <-chan model.RefreshRequest
}

// Refresher is the only writer of the snapshot store.
type Refresher struct {
	queue     Queue
	loader    Loader
	computer  Computer
	publisher Publisher

	interval     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex // one refresh at a time
	started  atomic.Bool
	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefresher creates a refresher with configuration options.
func NewRefresher(q Queue, l Loader, c Computer, p Publisher, opts ...Option) *Refresher {
	r := &Refresher{
		queue:        q,
		loader:       l,
		computer:     c,
		publisher:    p,
		interval:     defaultInterval,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs the worker in a new goroutine.
func (r *Refresher) Start(ctx context.Context) {
	r.started.Store(true)
	go r.Run(ctx)
}

// Run consumes requests until ctx is canceled, Shutdown is called or the
// queue is closed. When the interval is positive a ticker enqueues a TTL
// refresh on every tick.
func (r *Refresher) Run(ctx context.Context) {
	r.started.Store(true)
	defer close(r.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.interval > 0 {
		go r.tick(ctx)
	}

	requests := r.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if _, err := r.Refresh(ctx, req); err != nil {
				r.logger.Error(ctx, "refresh failed, keeping previous snapshot",
					logger.String("request_id", req.ID),
					logger.String("reason", req.Reason),
					logger.Error(err),
				)
			}
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case <-ticker.C:
			req := model.NewRefreshRequest(model.ReasonTTL, r.now())
			if !r.queue.Enqueue(ctx, req) {
				r.logger.Debug(ctx, "ttl refresh dropped, queue full", logger.String("request_id", req.ID))
			}
		}
	}
}

// Refresh loads, computes and publishes synchronously. On error the store
// is left untouched.
func (r *Refresher) Refresh(ctx context.Context, req model.RefreshRequest) (repository.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	loadCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	matches, rep, err := r.loader.Load(loadCtx)
	if err != nil {
		metrics.RecordRefreshFailure()
		metrics.RecordErrorByComponent("worker", "load")
		return repository.Snapshot{}, fmt.Errorf("load %s: %w", r.loader.String(), err)
	}
	metrics.UpdateMatchLog(len(matches), rep.Dropped, rep.Coerced)

	computeStart := time.Now()
	res := r.computer.Compute(matches)
	metrics.RecordRecomputeDuration(float64(time.Since(computeStart).Milliseconds()))
	metrics.UpdateMatchesSkipped(skipped(res))

	snap := r.publisher.Publish(ctx, repository.Snapshot{
		Result:   res,
		Matches:  matches,
		Report:   rep,
		Policy:   r.computer.Policy(),
		Source:   r.loader.String(),
		LoadedAt: r.now(),
	})

	elapsed := time.Since(start)
	metrics.RecordRefresh(req.Reason)
	metrics.RecordRefreshDuration(float64(elapsed.Milliseconds()))
	r.logger.Info(ctx, "snapshot published",
		logger.String("request_id", req.ID),
		logger.String("reason", req.Reason),
		logger.Int64("version", int64(snap.Version)),
		logger.Int("matches", len(matches)),
		logger.Int("dropped", rep.Dropped),
		logger.Int("days", len(res.Days)),
		logger.Duration("elapsed", elapsed),
	)
	return snap, nil
}

// Shutdown stops the worker and waits for the current refresh to finish.
func (r *Refresher) Shutdown(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.shutdown) })
	if !r.started.Load() {
		return ErrStopped
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func skipped(res ranking.Result) int {
	n := 0
	for _, d := range res.Days {
		for _, m := range d.Results {
			if m.Skipped != nil {
				n++
			}
		}
	}
	return n
}
