package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/scriptgenie/internal/service"
)

// AnalyticsHandler serves published-script performance data. Requires auth.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's analytics entries, newest publish first.
//
// HTTP: GET /api/analytics
func (h *AnalyticsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.List(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleSummary returns aggregate totals across all the caller's entries:
// total views/likes/comments, average views, per-platform view counts, and
// the top scripts by views.
//
// HTTP: GET /api/analytics/summary
func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
