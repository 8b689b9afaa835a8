package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/auth"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/prompt"
	"github.com/sakif/scriptgenie/internal/ratelimit"
	"github.com/sakif/scriptgenie/internal/service"
	"github.com/sakif/scriptgenie/internal/tts"
)

// GenerateHandler exposes the AI-backed endpoints.
//
// Every route here sits behind OptionalAuth: signed-in users pass straight
// through, guests are checked against per-IP, per-endpoint ceilings first.
type GenerateHandler struct {
	gen     *service.GenerationService
	voice   *service.VoiceoverService
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

func NewGenerateHandler(
	gen *service.GenerationService,
	voice *service.VoiceoverService,
	limiter ratelimit.Limiter,
	logger *slog.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		gen:     gen,
		voice:   voice,
		limiter: limiter,
		logger:  logger,
	}
}

// guestLimitMessage steers over-limit guests toward creating an account
// instead of just telling them no.
const guestLimitMessage = "Rate limit exceeded. Sign in to continue with unlimited access."

// allowGuest enforces the guest ceiling for one endpoint family.
// Returns false after writing the 429 — the caller just returns.
//
// FAIL-OPEN POLICY:
// When the limiter backend errors (the counter store is down, not the guest
// over quota), we log and let the request through. Guest ceilings protect
// spend, they are not a security boundary — dropping real traffic because
// the counter table hiccupped is the worse failure.
func (h *GenerateHandler) allowGuest(w http.ResponseWriter, r *http.Request, endpoint string, limit int) bool {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		return true
	}

	identifier := ratelimit.Identifier(endpoint, ratelimit.ClientIP(r))
	result, err := h.limiter.Check(r.Context(), identifier, limit)
	if err != nil {
		h.logger.Warn("rate limiter backend failed, allowing request",
			slog.String("identifier", identifier),
			slog.String("error", err.Error()),
		)
		return true
	}

	if !result.Allowed {
		zero := 0
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:     "rate_limited",
			Message:   guestLimitMessage,
			Remaining: &zero,
		})
		return false
	}
	return true
}

// userID returns the authenticated user's ID, or "" for guests.
func userID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// decode parses the JSON body into dst, reporting a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return false
	}
	return true
}

// HandleGenerateScript generates a full script for a topic.
//
// HTTP: POST /api/generate-script
// Body: {"topic": "...", "language": "english", "scriptType": "explainer"}
// Guests: 9 per day per IP. Signed-in users get the result persisted.
func (h *GenerateHandler) HandleGenerateScript(w http.ResponseWriter, r *http.Request) {
	if !h.allowGuest(w, r, "generate-script", ratelimit.GenerateLimit) {
		return
	}

	var req struct {
		Topic      string           `json:"topic"`
		Language   model.Language   `json:"language"`
		ScriptType model.ScriptType `json:"scriptType"`
	}
	if !decode(w, r, &req) {
		return
	}

	script, err := h.gen.GenerateScript(r.Context(), userID(r), req.Topic, req.Language, req.ScriptType)
	if err != nil {
		writeError(w, err)
		return
	}

	// "script" is the generated TEXT, not the record. The record ID rides
	// alongside when the result was persisted (signed-in callers) so the
	// client can link straight to the saved script.
	writeJSON(w, http.StatusOK, generateScriptResponse{
		Script: script.Content,
		ID:     script.ID,
	})
}

type generateScriptResponse struct {
	Script string `json:"script"`
	ID     string `json:"id,omitempty"` // set only when the script was saved
}

// HandleEnhanceScript rewrites text per the requested action.
//
// HTTP: POST /api/enhance-script
// Body: {"text": "...", "action": "expand"}
// Guests: 20 per day per IP.
func (h *GenerateHandler) HandleEnhanceScript(w http.ResponseWriter, r *http.Request) {
	if !h.allowGuest(w, r, "enhance-script", ratelimit.EnhanceLimit) {
		return
	}

	var req struct {
		Text   string               `json:"text"`
		Action prompt.EnhanceAction `json:"action"`
	}
	if !decode(w, r, &req) {
		return
	}

	enhanced, err := h.gen.Enhance(r.Context(), req.Text, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"enhancedText": enhanced})
}

// HandleCaptions generates a social caption and hashtags for a script.
//
// HTTP: POST /api/generate-captions-hashtags
// Body: {"scriptContent": "...", "scriptTopic": "..."}
func (h *GenerateHandler) HandleCaptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScriptContent string `json:"scriptContent"`
		ScriptTopic   string `json:"scriptTopic"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.gen.Captions(r.Context(), req.ScriptContent, req.ScriptTopic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleSummary generates a title, description, and hashtags for a script.
//
// HTTP: POST /api/generate-summary
// Body: {"scriptContent": "...", "emotionMode": "funny"}
func (h *GenerateHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScriptContent string             `json:"scriptContent"`
		EmotionMode   prompt.EmotionMode `json:"emotionMode"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.gen.Summary(r.Context(), req.ScriptContent, req.EmotionMode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleAnalyzeTopic suggests trending content ideas for a niche.
//
// HTTP: POST /api/analyze-topic
// Body: {"niche": "..."}
// Guests: 20 per day per IP.
func (h *GenerateHandler) HandleAnalyzeTopic(w http.ResponseWriter, r *http.Request) {
	if !h.allowGuest(w, r, "analyze-topic", ratelimit.AnalyzeLimit) {
		return
	}

	var req struct {
		Niche string `json:"niche"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.gen.AnalyzeTopic(r.Context(), req.Niche)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleResearch runs one research-assistant action.
//
// HTTP: POST /api/research-assistant
// Body: {"action": "fact-check", "text": "...", ...}
func (h *GenerateHandler) HandleResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action     prompt.ResearchAction `json:"action"`
		Text       string                `json:"text"`
		Fact       string                `json:"fact"`
		Topic      string                `json:"topic"`
		Content    string                `json:"content"`
		ScriptType string                `json:"scriptType"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.gen.Research(r.Context(), req.Action, prompt.ResearchInput{
		Text:       req.Text,
		Fact:       req.Fact,
		Topic:      req.Topic,
		Content:    req.Content,
		ScriptType: req.ScriptType,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

// HandleVoiceover synthesizes spoken audio for script text.
//
// HTTP: POST /api/generate-voiceover
// Body: {"text": "...", "voice": "male", "tone": "calm"}
// Guests: 5 per day per IP (the most expensive upstream call).
func (h *GenerateHandler) HandleVoiceover(w http.ResponseWriter, r *http.Request) {
	if !h.allowGuest(w, r, "voiceover", ratelimit.VoiceoverLimit) {
		return
	}

	var req struct {
		Text  string    `json:"text"`
		Voice tts.Voice `json:"voice"`
		Tone  tts.Tone  `json:"tone"`
	}
	if !decode(w, r, &req) {
		return
	}

	audio, err := h.voice.Generate(r.Context(), req.Text, req.Voice, req.Tone)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"audioContent": audio})
}

// HandleChat answers one message in the script-writing chat helper.
//
// HTTP: POST /api/ai-chat-helper
// Body: {"message": "...", "scriptContext": "..."}
// Guests: 50 per day per IP.
func (h *GenerateHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.allowGuest(w, r, "ai-chat", ratelimit.ChatLimit) {
		return
	}

	var req struct {
		Message       string `json:"message"`
		ScriptContext string `json:"scriptContext"`
	}
	if !decode(w, r, &req) {
		return
	}

	reply, err := h.gen.Chat(r.Context(), req.Message, req.ScriptContext)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
