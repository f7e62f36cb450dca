package api

import (
	"bytes"
	"net/http"

	"github.com/okian/rally/internal/adapters/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport handles GET /export.xlsx with the full ranking history.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	snap, err := s.deps.Snapshot(r.Context())
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, snap.Result); err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
