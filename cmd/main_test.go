package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/rally/internal/adapters/matchlog"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const sheetCSV = `ID_Partida,Data,Jogador_1,Jogador_2,Resultado_J1,Resultado_J2
1,10/03/2025,ana,bia,11,7
2,11/03/2025,bia,caio,11,9
`

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		src := filepath.Join(t.TempDir(), "matches.csv")
		convey.So(os.WriteFile(src, []byte(sheetCSV), 0o600), convey.ShouldBeNil)

		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("RALLY_ADDR", ":8080")
			_ = os.Setenv("RALLY_SOURCE", src)
			_ = os.Setenv("RALLY_TIE_POLICY", "second_player")
			defer func() {
				_ = os.Unsetenv("RALLY_ADDR")
				_ = os.Unsetenv("RALLY_SOURCE")
				_ = os.Unsetenv("RALLY_TIE_POLICY")
			}()

			cfg, err := config.Load(context.Background())

			convey.Convey("Then configuration should be loadable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Source, convey.ShouldEqual, src)
				convey.So(cfg.TiePolicy, convey.ShouldEqual, "second_player")
			})
		})

		convey.Convey("When building the server from configuration", func() {
			cfg := config.New()
			cfg.Source = src
			cfg.RefreshIntervalS = 0

			srv, svc, err := newServer(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the API serves the computed leaderboard", func() {
				convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"date":"2025-03-11"`)
			})

			convey.Convey("And the metrics endpoint is exposed", func() {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "rally_ranking_refreshes_total")
			})
		})

		convey.Convey("When the source has an unsupported extension", func() {
			cfg := config.New()
			cfg.Source = filepath.Join(t.TempDir(), "matches.txt")
			_, _, err := newServer(cfg, logger.Nop())

			convey.Convey("Then building fails", func() {
				convey.So(errors.Is(err, matchlog.ErrUnsupportedFormat), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the tie policy is unknown", func() {
			cfg := config.New()
			cfg.Source = src
			cfg.TiePolicy = "coin_flip"
			_, _, err := newServer(cfg, logger.Nop())

			convey.Convey("Then building fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
