package types_test

import (
	"errors"
	"testing"
	"time"

	types "github.com/okian/rally/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	Convey("Given the supported date forms", t, func() {
		for _, text := range []string{"2025-03-11", "11/03/2025", " 2025-03-11 ", "yesterday", "Yesterday"} {
			got, err := types.ParseDate(text, now)
			So(err, ShouldBeNil)
			So(got.Equal(want), ShouldBeTrue)
		}
	})

	Convey("An empty date means latest", t, func() {
		got, err := types.ParseDate("", now)
		So(err, ShouldBeNil)
		So(got.IsZero(), ShouldBeTrue)
	})

	Convey("Unrecognized text is rejected", t, func() {
		_, err := types.ParseDate("zzz", now)
		So(errors.Is(err, types.ErrInvalidDate), ShouldBeTrue)
	})
}
