// Package tts synthesizes voiceover audio through the OpenAI speech API.
//
// Unlike the chat gateway, the speech endpoint returns raw MP3 bytes, not
// JSON. The service layer base64-encodes them for the browser (the player
// consumes a data: URL).
package tts

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

// Voice is the speaker's gender selection exposed to users.
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
)

// Valid reports whether the voice is a supported value.
func (v Voice) Valid() bool {
	return v == VoiceMale || v == VoiceFemale
}

// Tone is the delivery style selection exposed to users.
type Tone string

const (
	ToneCalm      Tone = "calm"
	ToneEnergetic Tone = "energetic"
	ToneDramatic  Tone = "dramatic"
)

// Valid reports whether the tone is a supported value.
func (t Tone) Valid() bool {
	return t == ToneCalm || t == ToneEnergetic || t == ToneDramatic
}

// voiceTable maps the user-facing (voice, tone) pair to an upstream voice id.
// male+calm=onyx, male+energetic=echo, male+dramatic=fable
// female+calm=nova, female+energetic=shimmer, female+dramatic=alloy
var voiceTable = map[Voice]map[Tone]string{
	VoiceMale: {
		ToneCalm:      "onyx",
		ToneEnergetic: "echo",
		ToneDramatic:  "fable",
	},
	VoiceFemale: {
		ToneCalm:      "nova",
		ToneEnergetic: "shimmer",
		ToneDramatic:  "alloy",
	},
}

// SelectVoice resolves a (voice, tone) selection to the upstream voice id.
// Unknown combinations fall back to "alloy", matching the upstream default.
func SelectVoice(voice Voice, tone Tone) string {
	if tones, ok := voiceTable[voice]; ok {
		if id, ok := tones[tone]; ok {
			return id
		}
	}
	return "alloy"
}

// MaxTextLength is the hard input ceiling of the speech model.
// Over-length text is rejected at validation, not truncated — silently
// cutting a user's script off mid-sentence is worse than an error.
const MaxTextLength = 4000

// Client is the speech synthesis interface the service layer depends on.
type Client interface {
	// Synthesize returns MP3 audio for the text, spoken by the resolved voice.
	Synthesize(ctx context.Context, text string, voice Voice, tone Tone) ([]byte, error)
}

// Config holds the speech API settings, read from env in main.
type Config struct {
	BaseURL string // defaults to the OpenAI API
	APIKey  string
	Model   string        // defaults to "tts-1"
	Timeout time.Duration // defaults to DefaultTimeout
}

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "tts-1"

	// DefaultTimeout bounds one synthesis call. Audio generation for a
	// 4000-char script can take a while.
	DefaultTimeout = 60 * time.Second
)

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// New creates an HTTPClient. An empty API key is an error at construction
// time so a misconfigured deployment fails at startup.
func New(cfg Config, logger *slog.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("tts: API key is not configured")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
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

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize calls POST /v1/audio/speech and returns the MP3 bytes.
func (c *HTTPClient) Synthesize(ctx context.Context, text string, voice Voice, tone Tone) ([]byte, error) {
	body, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          SelectVoice(voice, tone),
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("tts: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("speech API call failed", slog.String("error", err.Error()))
		return nil, apperror.Upstream("speech service is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("speech API error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(errBody)),
		)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperror.RateLimited("Voiceover rate limit exceeded. Please try again later.")
		}
		return nil, apperror.Upstream("speech service error")
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream("reading speech response failed")
	}
	if len(audio) == 0 {
		return nil, apperror.Upstream("speech service returned no audio")
	}

	return audio, nil
}
