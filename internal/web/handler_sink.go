package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vbonduro/nutribot/internal/feedback"
	"github.com/vbonduro/nutribot/internal/service"
)

const maxFeedbackBytes = 16 << 10

// handleSinkRecord is the built-in feedback endpoint. It accepts the raw JSON
// map the feedback client posts, whatever Content-Type it arrives with.
func (s *Server) handleSinkRecord(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := s.sink.Record(r.Context(), payload)
	switch {
	case errors.Is(err, service.ErrEmptyFeedback), errors.Is(err, feedback.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("record feedback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "success", "id": sub.ID})
}

func (s *Server) handleSinkSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sink.Summary(r.Context())
	if err != nil {
		s.logger.Error("feedback summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize feedback")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSinkExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.sink.Export(r.Context(), &buf); err != nil {
		s.logger.Error("feedback export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export feedback")
		return
	}

	name := "feedback-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("write export failed", "error", err)
	}
}
