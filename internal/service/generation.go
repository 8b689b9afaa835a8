package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/gateway"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/prompt"
	"github.com/sakif/scriptgenie/internal/repository"
)

// Input length bounds, enforced before anything reaches the gateway.
// Oversized input is the caller's mistake (400), never a gateway call.
// All bounds count CHARACTERS (runes), not bytes: Bengali and Hindi text
// runs ~3 bytes per character in UTF-8, and a 200-character Bengali topic
// is well within a 500-character limit.
const (
	topicMinLength     = 5
	topicMaxLength     = 500
	enhanceMaxLength   = 10000
	chatMessageMax     = 5000
	chatContextMax     = 10000
	nicheMaxLength     = 500
	researchTextMax    = 5000
	researchTopicMax   = 500
	researchContentMax = 10000
)

// topicPattern is the character allow-list for topics. Unicode letters and
// marks keep Bengali and Hindi topics valid; the punctuation set covers what
// people actually type into a topic box. Everything else (control characters,
// exotic symbols) is rejected rather than passed into a prompt.
var topicPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s.,:;!?'"()\[\]&%$#@+/–—-]+$`)

// GenerationService orchestrates every AI-backed operation: validate input,
// build the prompt, call the gateway, shape the response.
//
// It deliberately does NOT know about HTTP. Rate limiting happens in the
// handler (it needs the client IP); this layer assumes the request is
// already allowed.
type GenerationService struct {
	gateway gateway.Client
	scripts repository.ScriptRepository
	logger  *slog.Logger
}

// NewGenerationService wires the generation pipeline.
// scripts may be used only for persisting results for signed-in users.
func NewGenerationService(
	gw gateway.Client,
	scripts repository.ScriptRepository,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		gateway: gw,
		scripts: scripts,
		logger:  logger,
	}
}

// GenerateScript produces a full script for the topic.
//
// For authenticated callers (userID != "") the result is persisted and the
// saved record (with ID and timestamps) is returned. Guests get the same
// content with an empty ID — nothing is stored for them.
func (s *GenerationService) GenerateScript(ctx context.Context, userID, topic string, lang model.Language, scriptType model.ScriptType) (*model.Script, error) {
	topic = strings.TrimSpace(topic)
	if utf8.RuneCountInString(topic) < topicMinLength {
		return nil, apperror.ValidationFailed("topic",
			fmt.Sprintf("Topic must be at least %d characters", topicMinLength))
	}
	if utf8.RuneCountInString(topic) > topicMaxLength {
		return nil, apperror.ValidationFailed("topic",
			fmt.Sprintf("Topic must be at most %d characters", topicMaxLength))
	}
	if !topicPattern.MatchString(topic) {
		return nil, apperror.ValidationFailed("topic", "Topic contains unsupported characters")
	}
	if !lang.Valid() {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("Language must be one of: %s, %s, %s",
				model.LanguageEnglish, model.LanguageBengali, model.LanguageHindi))
	}
	if !scriptType.Valid() {
		return nil, apperror.ValidationFailed("scriptType",
			fmt.Sprintf("Script type must be one of: %s, %s, %s",
				model.ScriptTypeExplainer, model.ScriptTypeNarrative, model.ScriptTypeOutline))
	}

	system, user, err := prompt.ForScript(topic, lang, scriptType)
	if err != nil {
		return nil, fmt.Errorf("service/generation: building script prompt: %w", err)
	}

	content, err := s.gateway.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}

	script := &model.Script{
		UserID:     userID,
		Topic:      topic,
		Language:   lang,
		ScriptType: scriptType,
		Content:    content,
	}

	if userID != "" {
		if err := s.scripts.CreateScript(ctx, script); err != nil {
			// The generation itself succeeded; losing the save would waste
			// the user's (possibly rate-limited) call. Log and return the
			// content unsaved.
			s.logger.Error("failed to persist generated script",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			script.ID = ""
		}
	}

	return script, nil
}

// Enhance rewrites text according to the action's system prompt.
// The text itself is the user message, passed through untouched.
func (s *GenerationService) Enhance(ctx context.Context, text string, action prompt.EnhanceAction) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperror.ValidationFailed("text", "Text is required")
	}
	if utf8.RuneCountInString(text) > enhanceMaxLength {
		return "", apperror.ValidationFailed("text",
			fmt.Sprintf("Text must be at most %d characters", enhanceMaxLength))
	}
	if !action.Valid() {
		return "", apperror.ValidationFailed("action",
			fmt.Sprintf("Action must be one of: %s", joinEnhanceActions()))
	}

	system, err := prompt.ForEnhance(action)
	if err != nil {
		return "", fmt.Errorf("service/generation: building enhance prompt: %w", err)
	}

	return s.gateway.GenerateText(ctx, system, text)
}

// CaptionsResult is the parsed caption + hashtags payload.
type CaptionsResult struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Captions generates a social caption and hashtag set for a script.
// Both fields are required — the caption prompt anchors on the topic, and an
// empty topic would silently degrade the output instead of failing fast.
func (s *GenerationService) Captions(ctx context.Context, content, topic string) (*CaptionsResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("scriptContent", "Script content is required")
	}
	if utf8.RuneCountInString(content) > researchContentMax {
		return nil, apperror.ValidationFailed("scriptContent",
			fmt.Sprintf("Script content must be at most %d characters", researchContentMax))
	}
	if strings.TrimSpace(topic) == "" {
		return nil, apperror.ValidationFailed("scriptTopic", "Script topic is required")
	}
	if utf8.RuneCountInString(topic) > topicMaxLength {
		return nil, apperror.ValidationFailed("scriptTopic",
			fmt.Sprintf("Script topic must be at most %d characters", topicMaxLength))
	}

	system, user := prompt.ForCaptions(content, topic)
	raw, err := s.gateway.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var result CaptionsResult
	if err := gateway.ExtractJSON(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SummaryResult is the parsed title/description/hashtags payload.
type SummaryResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// Summary generates an SEO title, description, and hashtags for a script.
// An unrecognized emotion mode silently falls back to neutral — the mode
// shapes voice, it isn't load-bearing.
func (s *GenerationService) Summary(ctx context.Context, content string, mode prompt.EmotionMode) (*SummaryResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("scriptContent", "Script content is required")
	}
	if utf8.RuneCountInString(content) > researchContentMax {
		return nil, apperror.ValidationFailed("scriptContent",
			fmt.Sprintf("Script content must be at most %d characters", researchContentMax))
	}

	system, user := prompt.ForSummary(content, mode)
	raw, err := s.gateway.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var result SummaryResult
	if err := gateway.ExtractJSON(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TopicAnalysis is the parsed niche-analysis payload.
type TopicAnalysis struct {
	TrendingTopics  []string `json:"trendingTopics"`
	ViralHooks      []string `json:"viralHooks"`
	SuggestedTitles []string `json:"suggestedTitles"`
}

// AnalyzeTopic suggests trending subtopics, hooks, and titles for a niche.
func (s *GenerationService) AnalyzeTopic(ctx context.Context, niche string) (*TopicAnalysis, error) {
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return nil, apperror.ValidationFailed("niche", "Niche is required")
	}
	if utf8.RuneCountInString(niche) > nicheMaxLength {
		return nil, apperror.ValidationFailed("niche",
			fmt.Sprintf("Niche must be at most %d characters", nicheMaxLength))
	}

	system, user := prompt.ForTopicAnalysis(niche)
	raw, err := s.gateway.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var result TopicAnalysis
	if err := gateway.ExtractJSON(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Research runs one research-assistant action. The result is relayed as raw
// text: fact-check and generate_sources instruct the model to answer in
// JSON, but the client owns parsing those — the shape varies per action.
func (s *GenerationService) Research(ctx context.Context, action prompt.ResearchAction, in prompt.ResearchInput) (string, error) {
	if !action.Valid() {
		return "", apperror.ValidationFailed("action",
			fmt.Sprintf("Action must be one of: %s", joinResearchActions()))
	}

	switch action {
	case prompt.ResearchFactCheck, prompt.ResearchExpandFact, prompt.ResearchSuggestRelated:
		if strings.TrimSpace(in.Text) == "" {
			return "", apperror.ValidationFailed("text", "Text is required")
		}
	case prompt.ResearchSmoothIntegrate:
		if strings.TrimSpace(in.Text) == "" {
			return "", apperror.ValidationFailed("text", "Text is required")
		}
		if strings.TrimSpace(in.Fact) == "" {
			return "", apperror.ValidationFailed("fact", "Fact is required")
		}
	case prompt.ResearchGenerateSources:
		if strings.TrimSpace(in.Topic) == "" {
			return "", apperror.ValidationFailed("topic", "Topic is required")
		}
	}

	if utf8.RuneCountInString(in.Text) > researchTextMax {
		return "", apperror.ValidationFailed("text",
			fmt.Sprintf("Text must be at most %d characters", researchTextMax))
	}
	if utf8.RuneCountInString(in.Topic) > researchTopicMax {
		return "", apperror.ValidationFailed("topic",
			fmt.Sprintf("Topic must be at most %d characters", researchTopicMax))
	}
	if utf8.RuneCountInString(in.Content) > researchContentMax {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("Content must be at most %d characters", researchContentMax))
	}

	system, user, err := prompt.ForResearch(action, in)
	if err != nil {
		return "", fmt.Errorf("service/generation: building research prompt: %w", err)
	}

	return s.gateway.GenerateText(ctx, system, user)
}

// Chat answers one message in the script-writing chat helper.
// scriptContext, when present, rides along as a second system message so the
// assistant can ground its advice in the script being edited.
func (s *GenerationService) Chat(ctx context.Context, message, scriptContext string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperror.ValidationFailed("message", "Message is required")
	}
	if utf8.RuneCountInString(message) > chatMessageMax {
		return "", apperror.ValidationFailed("message",
			fmt.Sprintf("Message must be at most %d characters", chatMessageMax))
	}
	if utf8.RuneCountInString(scriptContext) > chatContextMax {
		return "", apperror.ValidationFailed("scriptContext",
			fmt.Sprintf("Script context must be at most %d characters", chatContextMax))
	}

	messages := []gateway.Message{
		{Role: gateway.RoleSystem, Content: prompt.ChatSystem},
	}
	if contextMsg := prompt.ForChatContext(scriptContext); contextMsg != "" {
		messages = append(messages, gateway.Message{Role: gateway.RoleSystem, Content: contextMsg})
	}
	messages = append(messages, gateway.Message{Role: gateway.RoleUser, Content: message})

	return s.gateway.Complete(ctx, messages)
}

func joinEnhanceActions() string {
	parts := make([]string, len(prompt.EnhanceActions))
	for i, a := range prompt.EnhanceActions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func joinResearchActions() string {
	parts := make([]string, len(prompt.ResearchActions))
	for i, a := range prompt.ResearchActions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
