package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/repository"
	"github.com/sakif/scriptgenie/internal/service"
)

// ScriptHandler manages CRUD and sharing for saved scripts.
//
// Every route except HandleGetShared sits behind RequireAuth, so the user ID
// is always present in the context by the time these methods run.
type ScriptHandler struct {
	svc    *service.ScriptService
	logger *slog.Logger
}

func NewScriptHandler(svc *service.ScriptService, logger *slog.Logger) *ScriptHandler {
	return &ScriptHandler{svc: svc, logger: logger}
}

// mustUserID extracts the authenticated user ID. RequireAuth guarantees it
// is set; an empty value here means a route was wired without the middleware.
func mustUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return "", false
	}
	return id, true
}

// HandleList returns the caller's scripts, newest first.
//
// HTTP: GET /api/scripts?limit=20&offset=40
func (h *ScriptHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var opts repository.ListOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}

	scripts, err := h.svc.List(r.Context(), uid, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scripts)
}

// HandleCreate saves a script.
//
// HTTP: POST /api/scripts
// Body: {"topic": "...", "language": "english", "scriptType": "explainer",
//        "content": "...", "seriesId": null, "episodeNumber": 0}
func (h *ScriptHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var in service.ScriptInput
	if !decode(w, r, &in) {
		return
	}

	script, err := h.svc.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, script)
}

// HandleGet returns one script the caller owns.
//
// HTTP: GET /api/scripts/{id}
func (h *ScriptHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	script, err := h.svc.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, script)
}

// HandleUpdate replaces the editable fields of a script.
//
// HTTP: PUT /api/scripts/{id}
func (h *ScriptHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var in service.ScriptInput
	if !decode(w, r, &in) {
		return
	}

	script, err := h.svc.Update(r.Context(), uid, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, script)
}

// HandleDelete removes a script and its analytics rows.
//
// HTTP: DELETE /api/scripts/{id}
func (h *ScriptHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

// HandleShare makes a script publicly readable and returns its share token.
// Sharing an already-shared script returns the existing token, so links
// stay stable.
//
// HTTP: POST /api/scripts/{id}/share
// Response: {"shareToken": "..."}
func (h *ScriptHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	token, err := h.svc.Share(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"shareToken": token})
}

// HandleUnshare revokes a script's public link. The old token is discarded,
// so re-sharing later mints a fresh URL.
//
// HTTP: DELETE /api/scripts/{id}/share
func (h *ScriptHandler) HandleUnshare(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Unshare(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetShared returns a publicly shared script by its token.
// This is the one unauthenticated route in the script family — anyone
// holding the link can read the script, nothing else.
//
// HTTP: GET /api/shared/{token}
func (h *ScriptHandler) HandleGetShared(w http.ResponseWriter, r *http.Request) {
	script, err := h.svc.GetShared(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, script)
}
