package model_test

import (
	"testing"
	"time"

	model "github.com/okian/rally/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMatch(t *testing.T) {
	convey.Convey("Given a match between ana and bia", t, func() {
		m := model.Match{ID: 7, PlayerA: "ana", PlayerB: "bia", ScoreA: 11, ScoreB: 4}

		convey.Convey("Then both participants are present", func() {
			convey.So(m.HasPlayers(), convey.ShouldBeTrue)
		})

		convey.Convey("Then it involves exactly its participants", func() {
			convey.So(m.Involves("ana"), convey.ShouldBeTrue)
			convey.So(m.Involves("bia"), convey.ShouldBeTrue)
			convey.So(m.Involves("caio"), convey.ShouldBeFalse)
			convey.So(m.Involves(""), convey.ShouldBeFalse)
		})

		convey.Convey("Then the opponent is resolved from either side", func() {
			convey.So(m.Opponent("ana"), convey.ShouldEqual, "bia")
			convey.So(m.Opponent("bia"), convey.ShouldEqual, "ana")
			convey.So(m.Opponent("caio"), convey.ShouldEqual, "")
		})

		convey.Convey("When a participant is blank", func() {
			m.PlayerB = "   "

			convey.Convey("Then the match has no resolvable players", func() {
				convey.So(m.HasPlayers(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestDay(t *testing.T) {
	convey.Convey("Given timestamps on the same calendar date", t, func() {
		loc := time.FixedZone("BRT", -3*60*60)
		morning := time.Date(2025, 5, 2, 8, 30, 0, 0, loc)
		night := time.Date(2025, 5, 2, 23, 59, 59, 0, loc)

		convey.Convey("Then Day normalizes both to the same UTC midnight", func() {
			convey.So(model.Day(morning), convey.ShouldEqual, model.Day(night))
			convey.So(model.Day(morning), convey.ShouldEqual, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestNewRefreshRequest(t *testing.T) {
	convey.Convey("Given two refresh requests", t, func() {
		now := time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)
		a := model.NewRefreshRequest(model.ReasonAPI, now)
		b := model.NewRefreshRequest(model.ReasonAPI, now)

		convey.Convey("Then each has its own identifier", func() {
			convey.So(a.ID, convey.ShouldNotBeEmpty)
			convey.So(a.ID, convey.ShouldNotEqual, b.ID)
			convey.So(a.Reason, convey.ShouldEqual, "api")
			convey.So(a.RequestedAt, convey.ShouldEqual, now)
		})
	})
}
