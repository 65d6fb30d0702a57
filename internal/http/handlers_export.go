package http

import (
	"bytes"
	"net/http"
	"strconv"

	"subtrack/internal/export"
	"subtrack/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	subs, settings, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, subs, settings); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	s.writeAttachment(w, "text/csv; charset=utf-8", export.Filename("csv", s.now()), buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	subs, settings, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, subs, settings, s.now()); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	s.writeAttachment(w, xlsxContentType, export.Filename("xlsx", s.now()), buf.Bytes())
}

func (s *Server) writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
