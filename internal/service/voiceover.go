package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/tts"
)

// VoiceoverService turns script text into spoken audio via the TTS client.
type VoiceoverService struct {
	tts    tts.Client
	logger *slog.Logger
}

func NewVoiceoverService(client tts.Client, logger *slog.Logger) *VoiceoverService {
	return &VoiceoverService{tts: client, logger: logger}
}

// Generate synthesizes the text and returns the MP3 as base64.
//
// Text over the TTS provider's limit is REJECTED, not silently truncated —
// a voiceover that cuts off mid-sentence is worse than an error the caller
// can fix by splitting the script.
func (s *VoiceoverService) Generate(ctx context.Context, text string, voice tts.Voice, tone tts.Tone) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperror.ValidationFailed("text", "Text is required")
	}
	// Character count, not bytes — Hindi/Bengali scripts are multi-byte.
	if utf8.RuneCountInString(text) > tts.MaxTextLength {
		return "", apperror.ValidationFailed("text",
			fmt.Sprintf("Text must be at most %d characters for voiceover", tts.MaxTextLength))
	}
	if !voice.Valid() {
		return "", apperror.ValidationFailed("voice", "Voice must be male or female")
	}
	if !tone.Valid() {
		return "", apperror.ValidationFailed("tone", "Tone must be calm, energetic, or dramatic")
	}

	audio, err := s.tts.Synthesize(ctx, text, voice, tone)
	if err != nil {
		return "", err
	}

	s.logger.Info("voiceover generated",
		slog.Int("textChars", utf8.RuneCountInString(text)),
		slog.Int("audioBytes", len(audio)),
	)

	// Base64 keeps the response plain JSON — no multipart, no separate
	// audio endpoint, and the clip sizes here stay well under a megabyte.
	return base64.StdEncoding.EncodeToString(audio), nil
}
