package api

import (
	"net/http"
	"time"

	"github.com/okian/rally/internal/domain/types"
)

// dateParam parses the "date" query parameter.
func (s *Server) dateParam(r *http.Request) (time.Time, error) {
	return types.ParseDate(r.URL.Query().Get("date"), s.now())
}
