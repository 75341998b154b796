package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/nutribot/internal/feedback"
)

type feedbackResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// handleFeedback turns the star form (fields rating_<dish>) into a payload and
// posts it to the feedback endpoint once. The visitor always gets a 200 with
// the thank-you or retry message; a failed post is not retried.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	form := feedback.NewForm(s.catalog.IDs())
	for _, dish := range form.Dishes() {
		v := strings.TrimSpace(r.PostFormValue("rating_" + dish))
		if v == "" {
			continue
		}
		stars, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid rating for "+dish, http.StatusBadRequest)
			return
		}
		if err := form.Rate(dish, stars); err != nil {
			http.Error(w, "invalid rating for "+dish, http.StatusBadRequest)
			return
		}
	}

	err := s.feedback.Submit(r.Context(), form.Payload())
	if err != nil {
		s.logger.Error("feedback submit failed", "error", err)
	}
	res := feedbackResult{OK: err == nil, Message: feedback.UserMessage(err)}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	if err := s.renderPartial(w, "partials/feedback_result.html", res); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
