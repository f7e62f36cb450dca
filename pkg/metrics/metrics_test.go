package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)
			manager.refreshFailures.Inc()

			Convey("Then metrics are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_refresh_failures_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics on the duplicate", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a refresh succeeds and one fails", func() {
			before := testutil.ToFloat64(globalManager.refreshes.WithLabelValues("manual"))
			failedBefore := testutil.ToFloat64(globalManager.refreshFailures)
			RecordRefresh("manual")
			RecordRefreshFailure()
			RecordRefreshDuration(12)
			RecordRecomputeDuration(3)

			Convey("Then the counters move by one", func() {
				So(testutil.ToFloat64(globalManager.refreshes.WithLabelValues("manual")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.refreshFailures), ShouldEqual, failedBefore+1)
			})
		})

		Convey("When snapshot gauges are updated", func() {
			at := time.Unix(1_700_000_000, 0)
			UpdateMatchLog(10, 2, 1)
			UpdateMatchesSkipped(3)
			UpdateRanking(4, 5)
			UpdateSnapshot(7, at)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.matchesLoaded), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.rowsDropped), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.rowsCoerced), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.matchesSkipped), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.playersTotal), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.daysTotal), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.snapshotVersion), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.snapshotLastUnix), ShouldEqual, 1_700_000_000)
			})
		})

		Convey("When queue and HTTP metrics are recorded", func() {
			So(func() {
				UpdateQueueSize(1)
				UpdateQueueCapacity(16)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 0.01)
				RecordRateLimited()
				RecordErrorByComponent("worker", "refresh")
			}, ShouldNotPanic)

			Convey("Then the exposition lists them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "rally_ranking_http_requests_total")
				So(joined, ShouldContainSubstring, "rally_ranking_queue_capacity")
				So(joined, ShouldContainSubstring, "rally_ranking_errors_total")
			})
		})
	})
}
