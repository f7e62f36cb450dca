package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/rally/internal/adapters/matchlog"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
	"github.com/okian/rally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubLoader struct {
	mu      sync.Mutex
	matches []model.Match
	err     error
}

func (s *stubLoader) Load(context.Context) ([]model.Match, matchlog.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, matchlog.Report{}, s.err
	}
	return s.matches, matchlog.Report{Rows: len(s.matches) + 1, Dropped: 1}, nil
}

func (s *stubLoader) String() string { return "stub" }

func date(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

// Day 10: A beats B. Day 11: B beats C, then C beats A.
var matches = []model.Match{
	{ID: 1, Date: date(10), PlayerA: "A", PlayerB: "B", ScoreA: 11, ScoreB: 7},
	{ID: 2, Date: date(11), PlayerA: "B", PlayerB: "C", ScoreA: 11, ScoreB: 9},
	{ID: 3, Date: date(11), PlayerA: "C", PlayerB: "A", ScoreA: 11, ScoreB: 9},
	{ID: 4, Date: date(11), PlayerA: "C", PlayerB: "B", ScoreA: 5, ScoreB: 5},
}

func newService(l *stubLoader, opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithLogger(logger.Nop()),
		service.WithRefreshInterval(0),
		service.WithMaxLeaderboardLimit(10),
	}, opts...)
	return service.New(l, opts...)
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a working match log", t, func() {
		ctx := context.Background()
		svc := newService(&stubLoader{matches: matches})
		defer svc.Stop()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the initial snapshot is ready", func() {
				st := svc.GetStats(ctx)
				So(st.Started, ShouldBeTrue)
				So(st.Ready, ShouldBeTrue)
				So(st.Version, ShouldEqual, 1)
				So(st.Matches, ShouldEqual, 4)
				So(st.Dropped, ShouldEqual, 1)
				So(st.Players, ShouldEqual, 3)
				So(st.Days, ShouldEqual, 2)
				So(st.LatestDay, ShouldEqual, "2025-03-11")
				So(st.TiePolicy, ShouldEqual, "skip")
				So(st.QueueCapacity, ShouldEqual, 16)
			})
		})
	})

	Convey("Given a service whose match log is unavailable", t, func() {
		ctx := context.Background()
		svc := newService(&stubLoader{err: errors.New("offline")})
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it starts but reads are not ready", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats(ctx).Ready, ShouldBeFalse)
				_, err := svc.Leaderboard(ctx, time.Time{}, 0)
				So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
			})
		})
	})
}

// gatedLoader blocks its first load until release is closed.
type gatedLoader struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedLoader) Load(ctx context.Context) ([]model.Match, matchlog.Report, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, matchlog.Report{}, ctx.Err()
	}
	return matches, matchlog.Report{Rows: len(matches)}, nil
}

func (g *gatedLoader) String() string { return "gated" }

func TestService_StartWithSlowSource(t *testing.T) {
	Convey("Given a service whose initial load is still running", t, func() {
		ctx := context.Background()
		loader := &gatedLoader{entered: make(chan struct{}), release: make(chan struct{})}
		var releaseOnce sync.Once
		release := func() { releaseOnce.Do(func() { close(loader.release) }) }
		defer release()

		svc := service.New(loader, service.WithLogger(logger.Nop()), service.WithRefreshInterval(0))
		defer svc.Stop()

		started := make(chan error, 1)
		go func() { started <- svc.Start(ctx) }()
		<-loader.entered

		stats := make(chan service.Stats, 1)
		go func() { stats <- svc.GetStats(ctx) }()

		var st service.Stats
		select {
		case st = <-stats:
		case <-time.After(2 * time.Second):
		}
		So(st.Started, ShouldBeTrue)
		So(st.Ready, ShouldBeFalse)

		_, duplicate, err := svc.RequestRefresh(ctx, "during-load")
		So(err, ShouldBeNil)
		So(duplicate, ShouldBeFalse)

		release()
		So(<-started, ShouldBeNil)
		So(svc.GetStats(ctx).Ready, ShouldBeTrue)
	})
}

func TestService_Reads(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(&stubLoader{matches: matches})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then days are listed most recent first", func() {
			days, err := svc.Days(ctx)
			So(err, ShouldBeNil)
			So(days, ShouldResemble, []string{"2025-03-11", "2025-03-10"})
		})

		Convey("Then the latest leaderboard carries movement", func() {
			lb, err := svc.Leaderboard(ctx, time.Time{}, 0)
			So(err, ShouldBeNil)
			So(lb.Date, ShouldEqual, "2025-03-11")
			So(len(lb.Entries), ShouldEqual, 3)
			// Day one ended A 1030, C 1000, B 990. Day two: B +35, C -10 +40, A -10.
			So(lb.Entries[0].Player, ShouldEqual, "C")
			So(lb.Entries[0].Points, ShouldEqual, 1030)
			So(lb.Entries[0].Movement, ShouldEqual, "up")
		})

		Convey("Then a limit trims the leaderboard", func() {
			lb, err := svc.Leaderboard(ctx, date(10), 1)
			So(err, ShouldBeNil)
			So(len(lb.Entries), ShouldEqual, 1)
			So(lb.Entries[0].Player, ShouldEqual, "A")
		})

		Convey("Then out-of-range limits are rejected", func() {
			_, err := svc.Leaderboard(ctx, time.Time{}, 11)
			So(errors.Is(err, service.ErrInvalidLimit), ShouldBeTrue)
			_, err = svc.Leaderboard(ctx, time.Time{}, -1)
			So(errors.Is(err, service.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then unknown dates and players are reported", func() {
			_, err := svc.Leaderboard(ctx, date(1), 0)
			So(errors.Is(err, service.ErrUnknownDate), ShouldBeTrue)
			_, err = svc.Rank(ctx, "Z", time.Time{})
			So(errors.Is(err, service.ErrUnknownPlayer), ShouldBeTrue)
			_, err = svc.Profile(ctx, "Z")
			So(errors.Is(err, service.ErrUnknownPlayer), ShouldBeTrue)
			_, err = svc.History(ctx, "Z")
			So(errors.Is(err, service.ErrUnknownPlayer), ShouldBeTrue)
		})

		Convey("Then a player's rank is looked up on the requested day", func() {
			e, err := svc.Rank(ctx, "A", date(10))
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 1)
			So(e.Points, ShouldEqual, 1030)
			So(e.Movement, ShouldEqual, "new")
		})

		Convey("Then highlights report the day's upset", func() {
			h, err := svc.Highlights(ctx, date(11))
			So(err, ShouldBeNil)
			So(h.BiggestUpset, ShouldNotBeNil)
			So(h.BiggestUpset.MatchID, ShouldEqual, 3)
			So(h.BiggestUpset.Gap, ShouldEqual, 30)
		})

		Convey("Then players, profiles and history are served", func() {
			players, err := svc.Players(ctx)
			So(err, ShouldBeNil)
			So(players, ShouldResemble, []string{"A", "B", "C"})

			p, err := svc.Profile(ctx, "C")
			So(err, ShouldBeNil)
			So(p.Wins, ShouldEqual, 1)
			So(p.Losses, ShouldEqual, 1)

			h, err := svc.History(ctx, "C")
			So(err, ShouldBeNil)
			So(len(h), ShouldEqual, 2)
		})
	})

	Convey("Given a service scoring ties for the second player", t, func() {
		ctx := context.Background()
		svc := newService(&stubLoader{matches: matches}, service.WithTiePolicy(ranking.TieSecondPlayer))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the tied match counts in the profile", func() {
			p, err := svc.Profile(ctx, "B")
			So(err, ShouldBeNil)
			So(p.Wins, ShouldEqual, 2)
			So(svc.GetStats(ctx).TiePolicy, ShouldEqual, "second_player")
		})
	})
}

func TestService_RequestRefresh(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := newService(&stubLoader{matches: matches})

		Convey("Then refresh requests are refused", func() {
			_, _, err := svc.RequestRefresh(context.Background(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then a synchronous refresh still works", func() {
			snap, err := svc.Refresh(context.Background())
			So(err, ShouldBeNil)
			So(snap.Version, ShouldEqual, 1)
		})
	})

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(&stubLoader{matches: matches})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the same idempotency key is sent twice", func() {
			req, dup1, err1 := svc.RequestRefresh(ctx, "key-1")
			_, dup2, err2 := svc.RequestRefresh(ctx, "key-1")

			Convey("Then only the first is enqueued", func() {
				So(err1, ShouldBeNil)
				So(dup1, ShouldBeFalse)
				So(req.ID, ShouldNotBeEmpty)
				So(req.Reason, ShouldEqual, model.ReasonAPI)
				So(err2, ShouldBeNil)
				So(dup2, ShouldBeTrue)
			})

			Convey("Then the refresh is eventually published", func() {
				deadline := time.Now().Add(2 * time.Second)
				for svc.GetStats(ctx).Version < 2 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(svc.GetStats(ctx).Version, ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}
