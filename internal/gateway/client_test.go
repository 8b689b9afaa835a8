package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/scriptgenie/internal/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points an HTTPClient at an httptest.Server.
// httptest spins up a real listener on localhost, so the full HTTP stack
// (headers, status codes, body streaming) is exercised.
func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestGenerateText_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Role != RoleUser {
			t.Errorf("messages = %+v, want [system, user]", req.Messages)
		}
		if req.Model != DefaultModel {
			t.Errorf("model = %q, want %q", req.Model, DefaultModel)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Once upon a time..."}},
			},
		})
	})

	got, err := c.GenerateText(context.Background(), "you are a writer", "write a story")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if got != "Once upon a time..." {
		t.Errorf("GenerateText() = %q", got)
	}
}

func TestComplete_StatusTranslation(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantTarget error
	}{
		{"429 becomes rate limited", http.StatusTooManyRequests, apperror.ErrRateLimited},
		{"402 becomes payment required", http.StatusPaymentRequired, apperror.ErrPaymentRequired},
		{"500 becomes upstream", http.StatusInternalServerError, apperror.ErrUpstream},
		{"403 becomes upstream", http.StatusForbidden, apperror.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.GenerateText(context.Background(), "sys", "user")
			if !errors.Is(err, tt.wantTarget) {
				t.Errorf("error = %v, want %v", err, tt.wantTarget)
			}
		})
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := c.GenerateText(context.Background(), "sys", "user")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}

func TestComplete_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := c.GenerateText(context.Background(), "sys", "user")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(Config{BaseURL: "https://example.com"}, testLogger()); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := New(Config{APIKey: "k"}, testLogger()); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestExtractJSON(t *testing.T) {
	type analysis struct {
		TrendingTopics []string `json:"trendingTopics"`
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		wantLen int
	}{
		{
			name:    "bare object",
			raw:     `{"trendingTopics":["a","b"]}`,
			wantLen: 2,
		},
		{
			name:    "object wrapped in prose",
			raw:     "Sure! Here's your analysis:\n```json\n{\"trendingTopics\":[\"a\"]}\n```\nHope that helps!",
			wantLen: 1,
		},
		{
			name:    "no JSON at all",
			raw:     "I'm sorry, I can't help with that.",
			wantErr: true,
		},
		{
			name:    "brackets around garbage",
			raw:     "result: {this is not json}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out analysis
			err := ExtractJSON(tt.raw, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, apperror.ErrUpstream) {
					t.Errorf("error = %v, want ErrUpstream", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON() error = %v", err)
			}
			if len(out.TrendingTopics) != tt.wantLen {
				t.Errorf("got %d topics, want %d", len(out.TrendingTopics), tt.wantLen)
			}
		})
	}
}

func TestExtractJSON_Array(t *testing.T) {
	var sources []struct {
		Title string `json:"title"`
	}
	raw := "Here are your sources:\n[{\"title\":\"Nature\"},{\"title\":\"NASA\"}]"
	if err := ExtractJSON(raw, &sources); err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if len(sources) != 2 || sources[0].Title != "Nature" {
		t.Errorf("sources = %+v", sources)
	}
}
