package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotStore(t *testing.T) {
	Convey("Given an empty snapshot store", t, func() {
		ctx := context.Background()
		fixed := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
		store := NewSnapshotStore(WithClock(func() time.Time { return fixed }))

		Convey("When reading before any publish", func() {
			_, err := store.Current(ctx)

			Convey("Then ErrNotReady is returned", func() {
				So(errors.Is(err, ErrNotReady), ShouldBeTrue)
				So(store.Version(), ShouldEqual, 0)
			})
		})

		Convey("When publishing two snapshots", func() {
			matches := []model.Match{{ID: 1, Date: fixed, PlayerA: "ana", PlayerB: "bia", ScoreA: 11, ScoreB: 3}}
			first := store.Publish(ctx, Snapshot{Result: ranking.Compute(matches), Matches: matches})
			second := store.Publish(ctx, Snapshot{Result: ranking.Compute(nil), LoadedAt: fixed.Add(time.Hour)})

			Convey("Then versions increase and the clock stamps missing times", func() {
				So(first.Version, ShouldEqual, 1)
				So(first.LoadedAt, ShouldEqual, fixed)
				So(second.Version, ShouldEqual, 2)
				So(second.LoadedAt, ShouldEqual, fixed.Add(time.Hour))
			})

			Convey("Then Current returns the latest", func() {
				cur, err := store.Current(ctx)
				So(err, ShouldBeNil)
				So(cur.Version, ShouldEqual, 2)
				So(cur.Result.Empty(), ShouldBeTrue)
			})
		})
	})
}

func TestSnapshotStore_ConcurrentReaders(t *testing.T) {
	Convey("Given readers racing a publisher", t, func() {
		ctx := context.Background()
		store := NewSnapshotStore()
		store.Publish(ctx, Snapshot{Source: "v"})

		var wg sync.WaitGroup
		stop := make(chan struct{})
		bad := make(chan uint64, 1)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				last := uint64(0)
				for {
					select {
					case <-stop:
						return
					default:
					}
					cur, err := store.Current(ctx)
					if err != nil || cur.Version < last {
						select {
						case bad <- cur.Version:
						default:
						}
						return
					}
					last = cur.Version
				}
			}()
		}
		for i := 0; i < 100; i++ {
			store.Publish(ctx, Snapshot{Source: "v"})
		}
		close(stop)
		wg.Wait()

		Convey("Then every read sees a published, non-decreasing version", func() {
			So(len(bad), ShouldEqual, 0)
			So(store.Version(), ShouldEqual, 101)
		})
	})
}
