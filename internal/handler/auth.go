package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/service"
)

// AuthHandler manages both sign-in paths and session management.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, exchange it for a user, issue JWT
//   - HandleRegister       → create an email/password account, issue JWT
//   - HandleLogin          → verify email/password, issue JWT
//   - HandleLogout         → clear the JWT cookie
//   - HandleMe             → return the currently logged-in user's profile
//
// The business rules (upsert, bcrypt, token issuing) live in AuthService —
// this handler only speaks HTTP: cookies, redirects, status codes.
type AuthHandler struct {
	github *auth.GitHubProvider
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(github *auth.GitHubProvider, svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		github: github,
		svc:    svc,
		logger: logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When GitHub calls back, HandleGitHubCallback verifies the state matches.
// This proves the callback was initiated by this server, not a CSRF attacker.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Upsert the user and issue a JWT (AuthService)
//  4. Store the JWT in an HttpOnly cookie
//  5. Redirect to the app home page
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch",
			slog.String("expected", stateCookie.Value),
			slog.String("got", r.URL.Query().Get("state")),
		)
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// Check if GitHub sent an error (user denied authorization)
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.svc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// credentialsRequest is the body for register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"` // optional display name, register only
}

// HandleRegister creates an email/password account and signs it in.
//
// HTTP: POST /auth/register
// Body: {"email": "...", "password": "...", "name": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin authenticates an email/password account.
//
// HTTP: POST /auth/login
// Body: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the JWT cookie, effectively logging the user out.
//
// HTTP: POST /auth/logout
//
// WHY POST AND NOT GET?
// Logout is a state-changing operation. Using GET would be vulnerable to
// CSRF and to browsers pre-fetching the URL. POST ensures intentional action.
//
// Since we're stateless (JWT), "logout" just means deleting the client-side
// cookie. The token remains technically valid until it expires, but without
// the cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware sets userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	// Auth middleware has already validated the JWT and set userID in context.
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	user, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// setSessionCookie stores the JWT in an HttpOnly cookie.
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = cookie is sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only). We leave it false for local dev.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}
