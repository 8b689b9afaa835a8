package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/scriptgenie/internal/service"
)

// SeriesHandler manages CRUD for video series. All routes require auth.
type SeriesHandler struct {
	svc     *service.SeriesService
	scripts *service.ScriptService
	logger  *slog.Logger
}

func NewSeriesHandler(svc *service.SeriesService, scripts *service.ScriptService, logger *slog.Logger) *SeriesHandler {
	return &SeriesHandler{svc: svc, scripts: scripts, logger: logger}
}

// HandleList returns the caller's series, each with its derived script count.
//
// HTTP: GET /api/series
func (h *SeriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	series, err := h.svc.List(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// HandleCreate creates a series.
//
// HTTP: POST /api/series
// Body: {"name": "...", "description": "...", "colorTheme": "purple"}
func (h *SeriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var in service.SeriesInput
	if !decode(w, r, &in) {
		return
	}

	series, err := h.svc.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, series)
}

// HandleGet returns one series the caller owns.
//
// HTTP: GET /api/series/{id}
func (h *SeriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	series, err := h.svc.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// HandleUpdate replaces the editable fields of a series.
//
// HTTP: PUT /api/series/{id}
func (h *SeriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var in service.SeriesInput
	if !decode(w, r, &in) {
		return
	}

	series, err := h.svc.Update(r.Context(), uid, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// HandleDelete removes a series. Member scripts survive as standalone
// scripts — delete detaches them, it never cascades.
//
// HTTP: DELETE /api/series/{id}
func (h *SeriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListScripts returns a series' scripts in episode order.
//
// HTTP: GET /api/series/{id}/scripts
func (h *SeriesHandler) HandleListScripts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	scripts, err := h.scripts.ListBySeries(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scripts)
}
