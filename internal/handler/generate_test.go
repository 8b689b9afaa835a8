package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/gateway"
	"github.com/sakif/scriptgenie/internal/handler"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/ratelimit"
	"github.com/sakif/scriptgenie/internal/repository"
	"github.com/sakif/scriptgenie/internal/service"
	"github.com/sakif/scriptgenie/internal/tts"
)

// MockGateway implements gateway.Client for handler testing without a
// network upstream.
type MockGateway struct {
	Response string
	Err      error
	Calls    int
}

func (m *MockGateway) GenerateText(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGateway) Complete(ctx context.Context, messages []gateway.Message) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// MockLimiter records the last check so tests can assert which identifier
// and ceiling an endpoint used.
type MockLimiter struct {
	Result         ratelimit.Result
	Err            error
	LastIdentifier string
	LastMax        int
	Calls          int
}

func (m *MockLimiter) Check(ctx context.Context, identifier string, maxRequests int) (ratelimit.Result, error) {
	m.Calls++
	m.LastIdentifier = identifier
	m.LastMax = maxRequests
	return m.Result, m.Err
}

// MockTTS returns canned audio bytes.
type MockTTS struct {
	Audio []byte
	Err   error
	Calls int
}

func (m *MockTTS) Synthesize(ctx context.Context, text string, voice tts.Voice, tone tts.Tone) ([]byte, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

// stubScriptRepo satisfies repository.ScriptRepository; guest requests never
// reach it, and signed-in generation only calls CreateScript.
type stubScriptRepo struct {
	created []*model.Script
}

func (r *stubScriptRepo) CreateScript(ctx context.Context, s *model.Script) error {
	// Mimic the real repository, which generates the ID on insert.
	s.ID = fmt.Sprintf("script-%d", len(r.created)+1)
	r.created = append(r.created, s)
	return nil
}

func (r *stubScriptRepo) GetScriptByID(ctx context.Context, id string) (*model.Script, error) {
	return nil, apperror.NotFound("script", id)
}

func (r *stubScriptRepo) GetScriptByShareToken(ctx context.Context, token string) (*model.Script, error) {
	return nil, apperror.NotFound("script", token)
}

func (r *stubScriptRepo) ListScripts(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Script, error) {
	return []model.Script{}, nil
}

func (r *stubScriptRepo) ListScriptsBySeries(ctx context.Context, userID, seriesID string) ([]model.Script, error) {
	return []model.Script{}, nil
}

func (r *stubScriptRepo) UpdateScript(ctx context.Context, s *model.Script) error { return nil }
func (r *stubScriptRepo) DeleteScript(ctx context.Context, id string) error       { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newGenerateHandler(gw *MockGateway, limiter *MockLimiter) *handler.GenerateHandler {
	logger := testLogger()
	gen := service.NewGenerationService(gw, &stubScriptRepo{}, logger)
	voice := service.NewVoiceoverService(&MockTTS{Audio: []byte("mp3")}, logger)
	return handler.NewGenerateHandler(gen, voice, limiter, logger)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func TestGenerateHandler_GuestLimits(t *testing.T) {
	validBody := `{"topic":"How solar panels work","language":"english","scriptType":"explainer"}`

	t.Run("guest under limit proceeds", func(t *testing.T) {
		gw := &MockGateway{Response: "HOOK: ..."}
		limiter := &MockLimiter{Result: ratelimit.Result{Allowed: true, Remaining: 3}}
		h := newGenerateHandler(gw, limiter)

		req := postJSON("/api/generate-script", validBody)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		rr := httptest.NewRecorder()

		h.HandleGenerateScript(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, limiter.Calls)
		assert.Equal(t, "generate-script_203.0.113.7", limiter.LastIdentifier)
		assert.Equal(t, ratelimit.GenerateLimit, limiter.LastMax)

		// "script" is the generated text itself. Guests get no record ID —
		// nothing was persisted for them.
		var body struct {
			Script string `json:"script"`
			ID     string `json:"id"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "HOOK: ...", body.Script)
		assert.Empty(t, body.ID)
	})

	t.Run("guest over limit gets 429 and no upstream call", func(t *testing.T) {
		gw := &MockGateway{Response: "should not be used"}
		limiter := &MockLimiter{Result: ratelimit.Result{Allowed: false, Remaining: 0}}
		h := newGenerateHandler(gw, limiter)

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, postJSON("/api/generate-script", validBody))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, 0, gw.Calls)

		var body struct {
			Error     string `json:"error"`
			Message   string `json:"message"`
			Remaining *int   `json:"remaining"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "rate_limited", body.Error)
		assert.Contains(t, body.Message, "Sign in")
		if assert.NotNil(t, body.Remaining) {
			assert.Equal(t, 0, *body.Remaining)
		}
	})

	t.Run("signed-in user bypasses the limiter", func(t *testing.T) {
		gw := &MockGateway{Response: "HOOK: ..."}
		limiter := &MockLimiter{Result: ratelimit.Result{Allowed: false}}
		h := newGenerateHandler(gw, limiter)

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, asUser(postJSON("/api/generate-script", validBody), "user-1"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, limiter.Calls)

		// Signed-in callers get the persisted record's ID alongside the text.
		var body struct {
			Script string `json:"script"`
			ID     string `json:"id"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "HOOK: ...", body.Script)
		assert.NotEmpty(t, body.ID)
	})

	t.Run("limiter backend failure fails open", func(t *testing.T) {
		gw := &MockGateway{Response: "HOOK: ..."}
		limiter := &MockLimiter{Err: errors.New("database is locked")}
		h := newGenerateHandler(gw, limiter)

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, postJSON("/api/generate-script", validBody))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, gw.Calls)
	})

	t.Run("each endpoint uses its own ceiling", func(t *testing.T) {
		cases := []struct {
			name    string
			call    func(h *handler.GenerateHandler, rr *httptest.ResponseRecorder)
			wantID  string
			wantMax int
		}{
			{
				name: "enhance",
				call: func(h *handler.GenerateHandler, rr *httptest.ResponseRecorder) {
					h.HandleEnhanceScript(rr, postJSON("/api/enhance-script", `{"text":"some draft text","action":"expand"}`))
				},
				wantID:  "enhance-script_unknown",
				wantMax: ratelimit.EnhanceLimit,
			},
			{
				name: "analyze",
				call: func(h *handler.GenerateHandler, rr *httptest.ResponseRecorder) {
					h.HandleAnalyzeTopic(rr, postJSON("/api/analyze-topic", `{"niche":"home cooking"}`))
				},
				wantID:  "analyze-topic_unknown",
				wantMax: ratelimit.AnalyzeLimit,
			},
			{
				name: "chat",
				call: func(h *handler.GenerateHandler, rr *httptest.ResponseRecorder) {
					h.HandleChat(rr, postJSON("/api/ai-chat-helper", `{"message":"make the hook punchier"}`))
				},
				wantID:  "ai-chat_unknown",
				wantMax: ratelimit.ChatLimit,
			},
			{
				name: "voiceover",
				call: func(h *handler.GenerateHandler, rr *httptest.ResponseRecorder) {
					h.HandleVoiceover(rr, postJSON("/api/generate-voiceover", `{"text":"hello there","voice":"male","tone":"calm"}`))
				},
				wantID:  "voiceover_unknown",
				wantMax: ratelimit.VoiceoverLimit,
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				gw := &MockGateway{Response: `{"caption":"x","hashtags":[]}`}
				limiter := &MockLimiter{Result: ratelimit.Result{Allowed: true, Remaining: 1}}
				h := newGenerateHandler(gw, limiter)

				tc.call(h, httptest.NewRecorder())

				// No client IP headers on these requests, so guests share
				// the "unknown" bucket.
				assert.Equal(t, tc.wantID, limiter.LastIdentifier)
				assert.Equal(t, tc.wantMax, limiter.LastMax)
			})
		}
	})
}

func TestGenerateHandler_Responses(t *testing.T) {
	allowAll := func() *MockLimiter {
		return &MockLimiter{Result: ratelimit.Result{Allowed: true, Remaining: 5}}
	}

	t.Run("invalid JSON body", func(t *testing.T) {
		h := newGenerateHandler(&MockGateway{}, allowAll())

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, postJSON("/api/generate-script", `{"topic":`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		gw := &MockGateway{}
		h := newGenerateHandler(gw, allowAll())

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, postJSON("/api/generate-script",
			`{"topic":"hi","language":"english","scriptType":"explainer"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, gw.Calls)
	})

	t.Run("upstream quota exhaustion maps to 429", func(t *testing.T) {
		gw := &MockGateway{Err: apperror.RateLimited("Rate limit exceeded. Please try again later.")}
		h := newGenerateHandler(gw, allowAll())

		rr := httptest.NewRecorder()
		h.HandleGenerateScript(rr, postJSON("/api/generate-script",
			`{"topic":"How solar panels work","language":"english","scriptType":"explainer"}`))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})

	t.Run("upstream payment error maps to 402", func(t *testing.T) {
		gw := &MockGateway{Err: apperror.PaymentRequired("Payment required. Please add credits to continue.")}
		h := newGenerateHandler(gw, allowAll())

		rr := httptest.NewRecorder()
		h.HandleChat(rr, postJSON("/api/ai-chat-helper", `{"message":"hello"}`))

		assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	})

	t.Run("enhance returns enhancedText", func(t *testing.T) {
		gw := &MockGateway{Response: "A much better draft."}
		h := newGenerateHandler(gw, allowAll())

		rr := httptest.NewRecorder()
		h.HandleEnhanceScript(rr, postJSON("/api/enhance-script",
			`{"text":"a rough draft","action":"polish"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "A much better draft.", body["enhancedText"])
	})

	t.Run("captions returns parsed JSON payload", func(t *testing.T) {
		gw := &MockGateway{Response: "```json\n{\"caption\":\"Sun power!\",\"hashtags\":[\"#solar\"]}\n```"}
		h := newGenerateHandler(gw, allowAll())

		rr := httptest.NewRecorder()
		h.HandleCaptions(rr, postJSON("/api/generate-captions-hashtags",
			`{"scriptContent":"the script body","scriptTopic":"solar"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Caption  string   `json:"caption"`
			Hashtags []string `json:"hashtags"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Sun power!", body.Caption)
		assert.Equal(t, []string{"#solar"}, body.Hashtags)
	})

	t.Run("voiceover returns base64 audio", func(t *testing.T) {
		logger := testLogger()
		gen := service.NewGenerationService(&MockGateway{}, &stubScriptRepo{}, logger)
		voice := service.NewVoiceoverService(&MockTTS{Audio: []byte("ID3mp3bytes")}, logger)
		h := handler.NewGenerateHandler(gen, voice, allowAll(), logger)

		rr := httptest.NewRecorder()
		h.HandleVoiceover(rr, postJSON("/api/generate-voiceover",
			`{"text":"welcome to the channel","voice":"female","tone":"energetic"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.NotEmpty(t, body["audioContent"])
	})
}
