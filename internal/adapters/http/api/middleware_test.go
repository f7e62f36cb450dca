package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by MetricsMiddleware", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTeapot, "teapot", nil)
		}, "teapot")

		Convey("Then the status code passes through", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Code, ShouldEqual, http.StatusTeapot)
		})
	})

	Convey("Status codes map to error types", t, func() {
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(503), ShouldEqual, "not_ready")
	})
}
