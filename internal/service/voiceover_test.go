package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/tts"
)

// fakeTTS returns canned audio bytes.
type fakeTTS struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, voice tts.Voice, tone tts.Tone) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func TestVoiceoverGenerate_ReturnsBase64(t *testing.T) {
	fake := &fakeTTS{audio: []byte{0xFF, 0xF3, 0x01, 0x02}}
	svc := NewVoiceoverService(fake, testLogger())

	encoded, err := svc.Generate(context.Background(), "Hello world", tts.VoiceMale, tts.ToneCalm)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if string(decoded) != string(fake.audio) {
		t.Error("decoded audio does not match synthesized bytes")
	}
}

func TestVoiceoverGenerate_RejectsOversizedText(t *testing.T) {
	fake := &fakeTTS{audio: []byte{1}}
	svc := NewVoiceoverService(fake, testLogger())

	// Over-limit text is rejected with a reason, never truncated.
	_, err := svc.Generate(context.Background(), strings.Repeat("a", tts.MaxTextLength+1),
		tts.VoiceFemale, tts.ToneDramatic)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Generate() error = %v, want ErrValidation", err)
	}
	if fake.calls != 0 {
		t.Error("oversized text must not reach the TTS provider")
	}
}

func TestVoiceoverGenerate_LimitCountsCharacters(t *testing.T) {
	fake := &fakeTTS{audio: []byte{1}}
	svc := NewVoiceoverService(fake, testLogger())

	// 2000 Devanagari characters are ~6000 bytes but well under the
	// 4000-CHARACTER provider limit; they must be accepted.
	_, err := svc.Generate(context.Background(), strings.Repeat("न", 2000),
		tts.VoiceMale, tts.ToneCalm)
	if err != nil {
		t.Fatalf("Generate() rejected 2000 Devanagari characters: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("TTS calls = %d, want 1", fake.calls)
	}

	// 4001 characters are over the limit regardless of script.
	_, err = svc.Generate(context.Background(), strings.Repeat("न", tts.MaxTextLength+1),
		tts.VoiceMale, tts.ToneCalm)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Generate() error = %v, want ErrValidation for 4001 characters", err)
	}
}

func TestVoiceoverGenerate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		voice tts.Voice
		tone  tts.Tone
	}{
		{"empty text", "", tts.VoiceMale, tts.ToneCalm},
		{"blank text", "   ", tts.VoiceMale, tts.ToneCalm},
		{"unknown voice", "hello", "robot", tts.ToneCalm},
		{"unknown tone", "hello", tts.VoiceMale, "whisper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewVoiceoverService(&fakeTTS{audio: []byte{1}}, testLogger())
			_, err := svc.Generate(context.Background(), tt.text, tt.voice, tt.tone)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Generate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestVoiceoverGenerate_ProviderErrorPassesThrough(t *testing.T) {
	fake := &fakeTTS{err: apperror.Upstream("TTS service unavailable")}
	svc := NewVoiceoverService(fake, testLogger())

	_, err := svc.Generate(context.Background(), "hello", tts.VoiceMale, tts.ToneEnergetic)
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Generate() error = %v, want ErrUpstream untouched", err)
	}
}
