// Package main is the entry point for the ScriptGenie API server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, database connections, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate, cmd/cli).
// Each gets its own directory with its own main.go.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/scriptgenie/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs human-readable logs.
	// os.Stdout means logs go to the terminal. slog.LevelDebug enables all log levels.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. READ CONFIGURATION ===
	// We read the port from the PORT environment variable, defaulting to 8080.
	// os.Getenv returns "" if the variable isn't set, so we check and provide a default.
	//
	// In a larger app, you'd use a config library (like viper) or a config struct
	// loaded from a YAML/TOML file. For a service this size, env vars are
	// simple and standard.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr) // Atoi = ASCII to Integer
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// === 3. DATABASE PATH ===
	// Default to "data/scriptgenie.db" in the project root.
	// DB_PATH env var allows overriding for production deployments.
	// Example: DB_PATH=/var/lib/scriptgenie/prod.db
	dbPath := "data/scriptgenie.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// Ensure the data directory exists.
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. AUTH CONFIGURATION ===
	// JWT_SECRET must be a long random string. Use:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	githubClientID := os.Getenv("GITHUB_CLIENT_ID")
	githubClientSecret := os.Getenv("GITHUB_CLIENT_SECRET")
	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}
	if githubClientID == "" {
		logger.Warn("GITHUB_CLIENT_ID not set — GitHub login is disabled")
	}

	// === 5. UPSTREAM AI PROVIDERS ===
	// The gateway key is required: every generation endpoint goes through it.
	// The OpenAI key powers voiceovers only.
	gatewayBaseURL := os.Getenv("AI_GATEWAY_URL")
	gatewayAPIKey := os.Getenv("AI_GATEWAY_API_KEY")
	gatewayModel := os.Getenv("AI_GATEWAY_MODEL") // empty = gateway.DefaultModel
	openAIKey := os.Getenv("OPENAI_API_KEY")

	// === 6. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GatewayBaseURL:     gatewayBaseURL,
		GatewayAPIKey:      gatewayAPIKey,
		GatewayModel:       gatewayModel,
		OpenAIAPIKey:       openAIKey,
		GitHubClientID:     githubClientID,
		GitHubClientSecret: githubClientSecret,
		GitHubCallbackURL:  githubCallbackURL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
