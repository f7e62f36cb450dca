package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/rally/internal/adapters/matchlog"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const sheet = `ID_Partida,Data,Jogador_1,Jogador_2,Resultado_J1,Resultado_J2
1,10/03/2025,ana,bia,11,7
2,10/03/2025,caio,duda,11,9
3,11/03/2025,duda,ana,11,4
4,11/03/2025,bia,caio,6,11
`

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service reading a CSV file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		path := filepath.Join(t.TempDir(), "matches.csv")
		So(os.WriteFile(path, []byte(sheet), 0o600), ShouldBeNil)
		src, err := matchlog.NewSource(path)
		So(err, ShouldBeNil)

		svc := service.New(src, service.WithLogger(logger.Nop()), service.WithRefreshInterval(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the file changes and a refresh is requested", func() {
			extra := sheet + "5,12/03/2025,bia,ana,11,0\n"
			So(os.WriteFile(path, []byte(extra), 0o600), ShouldBeNil)
			_, _, err := svc.RequestRefresh(ctx, "")
			So(err, ShouldBeNil)

			Convey("Then the new day becomes the latest", func() {
				deadline := time.Now().Add(2 * time.Second)
				for svc.GetStats(ctx).Days < 3 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				days, err := svc.Days(ctx)
				So(err, ShouldBeNil)
				So(days[0], ShouldEqual, "2025-03-12")
				So(svc.GetStats(ctx).Version, ShouldEqual, 2)
			})
		})

		Convey("When reading the first day", func() {
			lb, err := svc.Leaderboard(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 0)

			Convey("Then only the win over a top-three player earns a bonus", func() {
				So(err, ShouldBeNil)
				So(lb.Entries[0].Player, ShouldEqual, "ana")
				So(lb.Entries[0].Points, ShouldEqual, 1030)
				So(lb.Entries[1].Player, ShouldEqual, "caio")
				So(lb.Entries[1].Points, ShouldEqual, 1010)
				So(lb.Entries[2].Player, ShouldEqual, "bia")
			})
		})
	})
}
