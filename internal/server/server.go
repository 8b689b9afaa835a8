// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects repositories, services,
// handlers, and middleware. Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just read env and start)
//
// DEPENDENCY INJECTION FLOW:
// main.go reads the environment into a Config and calls New(). New() builds
// the full graph in one place (the "composition root"):
//
//	sqlite.DB → repositories
//	gateway/tts clients → generation services
//	DB guest counters → fixed-window rate limiter
//	services → handlers → routes
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/gateway"
	"github.com/sakif/scriptgenie/internal/handler"
	"github.com/sakif/scriptgenie/internal/middleware"
	"github.com/sakif/scriptgenie/internal/ratelimit"
	sqliteRepo "github.com/sakif/scriptgenie/internal/repository/sqlite"
	"github.com/sakif/scriptgenie/internal/service"
	"github.com/sakif/scriptgenie/internal/tts"
)

// Config holds server configuration, read from the environment in main.
// Using a struct (instead of individual parameters) makes it easy to add
// options without changing function signatures.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// AI gateway (script/caption/summary/research/chat generation).
	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayModel   string

	// OpenAI key for text-to-speech voiceovers.
	OpenAIAPIKey string

	// GitHub OAuth app. Optional — when the client ID is empty the
	// /auth/github routes still mount but the provider rejects logins.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. When the server shuts down we
// must close it to flush the WAL and release the file lock; Start() handles
// this during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the given config and wires the full dependency
// graph.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with the
// sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	Public:
//	  GET  /auth/github/login      → redirect to GitHub OAuth
//	  GET  /auth/github/callback   → OAuth callback, sets session cookie
//	  POST /auth/register          → email/password signup
//	  POST /auth/login             → email/password login
//	  POST /auth/logout            → clears session cookie
//	  GET  /api/shared/{token}     → read a publicly shared script
//
//	Optional auth (guests allowed, subject to per-IP daily ceilings):
//	  POST /api/generate-script, /api/enhance-script,
//	       /api/generate-captions-hashtags, /api/generate-summary,
//	       /api/analyze-topic, /api/research-assistant,
//	       /api/generate-voiceover, /api/ai-chat-helper
//
//	Required auth:
//	  GET  /api/me
//	  CRUD /api/scripts, /api/series (+ share/unshare, series scripts)
//	  GET  /api/analytics, /api/analytics/summary
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. CORS — the API serves a browser frontend on another origin
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// AllowCredentials is required so the browser sends the session cookie
	// on cross-origin API calls. Browsers reject credentialed responses
	// carrying a literal `Access-Control-Allow-Origin: *`, so the origin is
	// REFLECTED instead of wildcarded — any origin is still accepted, but
	// each response names the caller's origin explicitly.
	s.router.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === AUTH INFRASTRUCTURE ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	// === UPSTREAM CLIENTS ===
	gw, err := gateway.New(gateway.Config{
		BaseURL: s.config.GatewayBaseURL,
		APIKey:  s.config.GatewayAPIKey,
		Model:   s.config.GatewayModel,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}
	speech, err := tts.New(tts.Config{APIKey: s.config.OpenAIAPIKey}, s.logger)
	if err != nil {
		return fmt.Errorf("creating tts client: %w", err)
	}

	// === RATE LIMITING ===
	// Guest counters live in the same SQLite database (the DB implements
	// the CounterStore interface), one 24-hour window per IP per endpoint.
	limiter := ratelimit.NewFixedWindow(s.db, ratelimit.DefaultWindow)

	// === SERVICES ===
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	generationService := service.NewGenerationService(gw, s.db, s.logger)
	voiceoverService := service.NewVoiceoverService(speech, s.logger)
	scriptService := service.NewScriptService(s.db, s.db, s.logger)
	seriesService := service.NewSeriesService(s.db, s.logger)
	analyticsService := service.NewAnalyticsService(s.db)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(github, authService, s.logger)
	generateHandler := handler.NewGenerateHandler(generationService, voiceoverService, limiter, s.logger)
	scriptHandler := handler.NewScriptHandler(scriptService, s.logger)
	seriesHandler := handler.NewSeriesHandler(seriesService, scriptService, s.logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, s.logger)

	// === AUTH ROUTES ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API ROUTES ===
	s.router.Route("/api", func(r chi.Router) {
		// Anyone holding a share link can read the script.
		r.Get("/shared/{token}", scriptHandler.HandleGetShared)

		// Generation endpoints take OptionalAuth: a valid session lifts
		// the guest ceilings, a missing or bad one degrades to guest.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Post("/generate-script", generateHandler.HandleGenerateScript)
			r.Post("/enhance-script", generateHandler.HandleEnhanceScript)
			r.Post("/generate-captions-hashtags", generateHandler.HandleCaptions)
			r.Post("/generate-summary", generateHandler.HandleSummary)
			r.Post("/analyze-topic", generateHandler.HandleAnalyzeTopic)
			r.Post("/research-assistant", generateHandler.HandleResearch)
			r.Post("/generate-voiceover", generateHandler.HandleVoiceover)
			r.Post("/ai-chat-helper", generateHandler.HandleChat)
		})

		// Persistence endpoints require a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/scripts", scriptHandler.HandleList)
			r.Post("/scripts", scriptHandler.HandleCreate)
			r.Get("/scripts/{id}", scriptHandler.HandleGet)
			r.Put("/scripts/{id}", scriptHandler.HandleUpdate)
			r.Delete("/scripts/{id}", scriptHandler.HandleDelete)
			r.Post("/scripts/{id}/share", scriptHandler.HandleShare)
			r.Delete("/scripts/{id}/share", scriptHandler.HandleUnshare)

			r.Get("/series", seriesHandler.HandleList)
			r.Post("/series", seriesHandler.HandleCreate)
			r.Get("/series/{id}", seriesHandler.HandleGet)
			r.Put("/series/{id}", seriesHandler.HandleUpdate)
			r.Delete("/series/{id}", seriesHandler.HandleDelete)
			r.Get("/series/{id}/scripts", seriesHandler.HandleListScripts)

			r.Get("/analytics", analyticsHandler.HandleList)
			r.Get("/analytics/summary", analyticsHandler.HandleSummary)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout — generation calls
//    against the AI gateway can legitimately run long)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent
// state. The `defer s.db.Close()` ensures this happens even if something
// panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// WriteTimeout must cover the slowest generation call, which is
		// bounded by the gateway client's own timeout.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: gateway.DefaultTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
