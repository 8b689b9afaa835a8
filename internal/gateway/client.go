// Package gateway is the HTTP client for the hosted chat-completion gateway
// that every generation feature proxies through.
//
// DESIGN NOTES:
// - One best-effort call per user action. No retries, no circuit breaking:
//   the user is sitting in front of a loading spinner, and a failed call is
//   cheaper to resubmit than to silently retry behind their back.
// - HTTP status translation happens HERE, once, so the services above only
//   ever see domain errors (rate limited / payment required / upstream).
// - The Client interface exists so services can be tested with a canned fake
//   instead of a live gateway (see the service tests).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/scriptgenie/internal/apperror"
)

// Role values for chat messages. The gateway follows the OpenAI chat shape.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the gateway interface the service layer depends on.
//
// GenerateText covers the common case (one system + one user message).
// Complete is the low-level form for callers that need extra context
// messages (the chat helper attaches the current script as a second
// system message).
type Client interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config holds the gateway connection settings, read from env in main.
type Config struct {
	BaseURL string // e.g. "https://ai.gateway.lovable.dev"
	APIKey  string
	Model   string        // e.g. "google/gemini-2.5-flash"
	Timeout time.Duration // whole-call budget; zero means DefaultTimeout
}

// DefaultModel is the chat model requested when none is configured.
const DefaultModel = "google/gemini-2.5-flash"

// DefaultTimeout bounds a single completion call. Generation regularly takes
// tens of seconds for long scripts, so this is generous on purpose.
const DefaultTimeout = 120 * time.Second

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// New creates an HTTPClient from the config.
// Returns an error when the API key is missing — better to fail at startup
// than 500 on the first user action.
func New(cfg Config, logger *slog.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gateway: API key is not configured")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is not configured")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// chatRequest / chatResponse mirror the gateway's wire shape.
// We only declare the fields we read — unknown fields are ignored by
// encoding/json, which keeps us compatible with gateway additions.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText sends one system + one user message and returns the reply text.
func (c *HTTPClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	return c.Complete(ctx, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	})
}

// Complete sends a full message list and returns choices[0].message.content.
//
// STATUS TRANSLATION (the whole point of this method):
//   - 429 → apperror.RateLimited  ("try again later" — the GATEWAY's quota, not ours)
//   - 402 → apperror.PaymentRequired (workspace credits exhausted)
//   - any other non-2xx → apperror.Upstream (body logged, generic message out)
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("gateway: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("gateway call failed", slog.String("error", err.Error()))
		return "", apperror.Upstream("AI gateway is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded slice of the body for the server log. Never relay
		// the raw gateway body to callers — it can contain key fragments.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", apperror.RateLimited("Rate limit exceeded. Please try again later.")
		case http.StatusPaymentRequired:
			return "", apperror.PaymentRequired("Payment required. Please add credits to continue.")
		default:
			c.logger.Error("AI gateway error",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(errBody)),
			)
			return "", apperror.Upstream("AI gateway error")
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error("gateway returned malformed JSON", slog.String("error", err.Error()))
		return "", apperror.Upstream("AI gateway returned a malformed response")
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", apperror.Upstream("AI gateway returned an empty response")
	}

	return parsed.Choices[0].Message.Content, nil
}
