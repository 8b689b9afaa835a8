// Package service — authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate the GitHub OAuth callback: upsert the user, issue tokens
//   - Orchestrate email/password register and login via bcrypt
//   - Encapsulate all auth rules in one place, away from HTTP concerns
//   - Be easily testable with mock dependencies
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → generate/validate JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing for email accounts
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go (or main.go) when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the caller
// (the HTTP handler) can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// After the handler exchanges the GitHub code for a GitHubUser profile, it
// calls this method to:
//
//  1. Upsert the user in the database (create on first login, update on subsequent logins)
//  2. Generate a JWT access token for the authenticated user
//  3. Return both so the handler can set the HttpOnly cookie and redirect
//
// WHY UPSERT (not insert + check conflict)?
// GitHub's OAuth guarantees the GitHub ID is stable and unique, so we can
// always upsert on (github_id). First login → INSERT; subsequent logins → UPDATE
// the email/avatar in case the user changed them on GitHub.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}

	// After this call, user.ID is populated by the repository.
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	return s.issueToken(user)
}

// minPasswordLength is deliberately modest — length requirements beyond this
// push users toward reuse, and bcrypt does the heavy lifting anyway.
const minPasswordLength = 8

// Register creates an email/password account and signs it in.
//
// Returns apperror.ErrValidation for a malformed email or short password and
// apperror.ErrConflict when the email already has an account.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "A valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if displayName == "" {
		// Fall back to the mailbox name — users can always see something.
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	// Check-then-insert has a narrow race; the unique index on email is the
	// real guard, this check just produces a friendlier error for the common case.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrConflict,
			Message: "An account with this email already exists",
			Field:   "email",
		}
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Login:        displayName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user (email=%s): %w", email, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
	)

	return s.issueToken(user)
}

// Login authenticates an email/password account.
//
// Returns apperror.ErrUnauthorized for BOTH a missing account and a wrong
// password — distinguishing them would let attackers probe which emails
// have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user by email: %w", err)
	}

	// OAuth-only accounts have no password hash; they must sign in via GitHub.
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
	)

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID.
//
// Used by the /api/me handler to look up the full user record after the
// middleware validates the JWT and extracts the userID from the token's
// Subject claim.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
//
// This is a thin delegation to TokenService.Validate. Having it on
// AuthService means callers only need to import the service package, not
// the auth package directly.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
