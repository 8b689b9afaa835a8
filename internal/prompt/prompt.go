// Package prompt maps (language, script type, tone) selections to the
// system/user prompt pairs sent to the AI gateway.
//
// Everything in here is a pure function over static lookup tables — no I/O,
// no state. That's deliberate: the prompt text IS the product logic for the
// generation features, so it lives in one place where it can be reviewed and
// tested without touching HTTP or the gateway client.
//
// Each action vocabulary is a closed named type (EnhanceAction, ResearchAction,
// EmotionMode) rather than a free-form string switch. A valid-looking action
// sent to the wrong endpoint fails enum validation instead of silently picking
// a prompt from another feature's table.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sakif/scriptgenie/internal/model"
)

// languageNames are the human-readable names injected into prompts.
// The native-script suffixes matter: they anchor the model to answer in the
// native writing system, not transliteration.
var languageNames = map[model.Language]string{
	model.LanguageEnglish: "English",
	model.LanguageBengali: "Bengali (বাংলা)",
	model.LanguageHindi:   "Hindi (हिंदी)",
}

// LanguageName returns the prompt-facing name for a language.
func LanguageName(lang model.Language) (string, bool) {
	name, ok := languageNames[lang]
	return name, ok
}

var scriptInstructions = map[model.ScriptType]string{
	model.ScriptTypeExplainer: `Generate an EXPLAINER VIDEO SCRIPT with:
- A catchy title
- An engaging hook (1-2 lines)
- 3-5 clear explanation sections with facts and examples
- Educational tone with storytelling elements
- A strong outro with call-to-action`,

	model.ScriptTypeNarrative: `Generate a NARRATIVE SHORT SCRIPT with:
- A compelling title
- Setting (time and place)
- Character introduction
- Scene-by-scene narration with dialogues
- An emotional twist or conflict
- A memorable closing line or moral`,

	model.ScriptTypeOutline: `Generate a DETAILED CONTENT OUTLINE with:
- A descriptive title
- Introduction section
- 4-6 main sections with subtopics and key talking points
- Suggested visuals or tone for each section
- Transition suggestions between sections
- Summary and outro`,
}

// ForScript builds the system/user pair for script generation.
// Both enums must already be validated by the caller; unknown values still
// come back as an error here rather than producing a half-filled prompt.
func ForScript(topic string, lang model.Language, scriptType model.ScriptType) (system, user string, err error) {
	langName, ok := languageNames[lang]
	if !ok {
		return "", "", fmt.Errorf("prompt: unknown language %q", lang)
	}
	instructions, ok := scriptInstructions[scriptType]
	if !ok {
		return "", "", fmt.Errorf("prompt: unknown script type %q", scriptType)
	}

	system = fmt.Sprintf(`You are ScriptGenie, an expert AI script writer for influencers, YouTubers, and content creators.
You have deep knowledge across internet culture, science, history, philosophy, and trending topics.
You write engaging, viral-worthy scripts that are:
- Emotionally compelling and trend-aware
- Well-structured and easy to follow
- Perfect for social media and video content
- Authentic and relatable

CRITICAL: You MUST write the entire script in %s.
Every word, every line, every section must be in %s.
Do not mix languages. Use native script and vocabulary.`, langName, langName)

	user = fmt.Sprintf(`Topic: %s

%s

Make it creative, engaging, and ready to shoot. Include emojis where appropriate.
Remember: Write EVERYTHING in %s.`, topic, instructions, langName)

	return system, user, nil
}

// EnhanceAction selects how an existing script is rewritten.
// The first five reshape content; the last five adjust tone.
type EnhanceAction string

const (
	EnhanceExpand        EnhanceAction = "expand"
	EnhanceShorten       EnhanceAction = "shorten"
	EnhanceEmotional     EnhanceAction = "emotional"
	EnhancePolish        EnhanceAction = "polish"
	EnhanceRegenerate    EnhanceAction = "regenerate"
	EnhanceFunny         EnhanceAction = "funny"
	EnhanceMotivational  EnhanceAction = "motivational"
	EnhanceDramatic      EnhanceAction = "dramatic"
	EnhancePhilosophical EnhanceAction = "philosophical"
	EnhanceProfessional  EnhanceAction = "professional"
)

// EnhanceActions lists every valid action, in the order shown to users
// in validation error messages.
var EnhanceActions = []EnhanceAction{
	EnhanceExpand, EnhanceShorten, EnhanceEmotional, EnhancePolish, EnhanceRegenerate,
	EnhanceFunny, EnhanceMotivational, EnhanceDramatic, EnhancePhilosophical, EnhanceProfessional,
}

// Valid reports whether the action is in the closed enhance vocabulary.
func (a EnhanceAction) Valid() bool {
	_, ok := enhancePrompts[a]
	return ok
}

var enhancePrompts = map[EnhanceAction]string{
	EnhanceExpand:        "You are a script enhancement AI. Expand the given text by adding more details, descriptions, and depth while maintaining the original meaning and tone. Make it approximately 50% longer.",
	EnhanceShorten:       "You are a script enhancement AI. Condense the given text to its essential points while maintaining clarity and impact. Make it approximately 50% shorter.",
	EnhanceEmotional:     "You are a script enhancement AI. Rewrite the given text to be more emotionally engaging and impactful. Add emotional language, vivid descriptions, and compelling storytelling elements. Make it sentimental and heart-touching.",
	EnhancePolish:        "You are a script enhancement AI. Polish the given text by improving grammar, enhancing clarity, refining storytelling tone, and making it more professional and engaging.",
	EnhanceRegenerate:    "You are a script enhancement AI. Completely rewrite the given text with fresh wording while keeping the same core message and structure. Be creative but maintain the original intent.",
	EnhanceFunny:         "You are a script tone adjustment AI. Transform the given text into a funny, witty, and relatable version. Add humor, clever wordplay, and light-hearted elements while maintaining the core message. Use casual, conversational language that makes people smile.",
	EnhanceMotivational:  "You are a script tone adjustment AI. Transform the given text into an uplifting, inspiring, and motivational version. Use powerful, encouraging language that energizes and drives action. Focus on possibilities, growth, and empowerment.",
	EnhanceDramatic:      "You are a script tone adjustment AI. Transform the given text into a dramatic, cinematic version with emotional tension and powerful pacing. Build intensity, use vivid imagery, and create compelling narrative momentum. Make it feel like a movie scene.",
	EnhancePhilosophical: "You are a script tone adjustment AI. Transform the given text into a deep, reflective, and philosophical version. Explore underlying meanings, raise thoughtful questions, and add contemplative insights. Use introspective and thought-provoking language.",
	EnhanceProfessional:  "You are a script tone adjustment AI. Transform the given text into a formal, structured, and professional version. Use clear, authoritative language with proper business terminology. Maintain objectivity and precision while being engaging.",
}

// ForEnhance returns the system prompt for an enhancement action.
// The user message is the text being enhanced, passed through untouched.
func ForEnhance(action EnhanceAction) (system string, err error) {
	system, ok := enhancePrompts[action]
	if !ok {
		return "", fmt.Errorf("prompt: unknown enhance action %q", action)
	}
	return system, nil
}

// ResearchAction selects the research-assistant behaviour.
type ResearchAction string

const (
	ResearchFactCheck       ResearchAction = "fact-check"
	ResearchExpandFact      ResearchAction = "expand-fact"
	ResearchSmoothIntegrate ResearchAction = "smooth-integrate"
	ResearchSuggestRelated  ResearchAction = "suggest-related"
	ResearchGenerateSources ResearchAction = "generate_sources"
)

// ResearchActions lists every valid research action for error messages.
var ResearchActions = []ResearchAction{
	ResearchFactCheck, ResearchExpandFact, ResearchSmoothIntegrate,
	ResearchSuggestRelated, ResearchGenerateSources,
}

// Valid reports whether the action is in the closed research vocabulary.
func (a ResearchAction) Valid() bool {
	switch a {
	case ResearchFactCheck, ResearchExpandFact, ResearchSmoothIntegrate,
		ResearchSuggestRelated, ResearchGenerateSources:
		return true
	}
	return false
}

// ResearchInput carries the per-action fields. Which fields matter depends
// on the action: fact-check/expand-fact/suggest-related use Text,
// smooth-integrate uses Text+Fact, generate_sources uses Topic+Content+ScriptType.
type ResearchInput struct {
	Text       string
	Fact       string // verified fact to weave in (smooth-integrate)
	Topic      string
	Content    string
	ScriptType string
}

// ForResearch builds the system/user pair for a research-assistant action.
func ForResearch(action ResearchAction, in ResearchInput) (system, user string, err error) {
	switch action {
	case ResearchFactCheck:
		system = `You are a fact-checking assistant. Verify the provided text and return accurate, verified information with credible sources. Format your response as JSON with:
{
  "verified": true/false,
  "summary": "Brief verified fact summary",
  "sources": ["Source 1", "Source 2", "Source 3"],
  "confidence": "high/medium/low"
}`
		user = fmt.Sprintf("Fact-check this text: %q", in.Text)

	case ResearchExpandFact:
		system = "You are a research assistant. Provide a concise, one-sentence explanation or interesting fact about the given keyword. Make it educational and engaging."
		user = fmt.Sprintf("Provide a brief, interesting fact about: %q", in.Text)

	case ResearchSmoothIntegrate:
		system = "You are a script editor specializing in natural fact integration. Rewrite the provided text to smoothly incorporate the verified fact while maintaining storytelling flow and tone. Keep it natural and engaging."
		user = fmt.Sprintf("Original text: %q\n\nVerified fact to integrate: %q\n\nRewrite this to naturally incorporate the fact while maintaining narrative flow.", in.Text, in.Fact)

	case ResearchSuggestRelated:
		system = "You are a research assistant. Suggest one interesting, related fact or detail connected to the given topic. Keep it concise and relevant."
		user = fmt.Sprintf("Suggest an interesting related fact about: %q", in.Text)

	case ResearchGenerateSources:
		system = `You are a research assistant. Generate 3-5 credible source references based on the script content. Return as JSON array:
[{"title": "Source Name", "description": "Brief description of what this source covers", "url": "optional URL if available"}]`
		user = fmt.Sprintf("Generate source references for this %s script about %q. Content excerpt: %q", in.ScriptType, in.Topic, in.Content)

	default:
		return "", "", fmt.Errorf("prompt: unknown research action %q", action)
	}

	return system, user, nil
}

// EmotionMode tunes the voice of the smart-summary output.
type EmotionMode string

const (
	EmotionNeutral    EmotionMode = "neutral"
	EmotionFunny      EmotionMode = "funny"
	EmotionEmotional  EmotionMode = "emotional"
	EmotionSerious    EmotionMode = "serious"
	EmotionMysterious EmotionMode = "mysterious"
)

var emotionGuidelines = map[EmotionMode]string{
	EmotionNeutral:    "Keep it clear and straightforward.",
	EmotionFunny:      "Make it witty, playful, and engaging with a light touch.",
	EmotionEmotional:  "Use heartfelt, touching language that connects emotionally.",
	EmotionSerious:    "Keep it professional, informative, and impactful.",
	EmotionMysterious: "Create intrigue and curiosity with enigmatic phrasing.",
}

// Valid reports whether the emotion mode is a known value.
func (m EmotionMode) Valid() bool {
	_, ok := emotionGuidelines[m]
	return ok
}

// summaryExcerptLimit bounds how much of the script rides in the user prompt.
// Summaries only need the opening to capture voice and subject; sending the
// whole script just burns gateway tokens.
const summaryExcerptLimit = 1000

// ForSummary builds the system/user pair for title/description/hashtag generation.
// An unknown emotion mode falls back to neutral guidance rather than erroring —
// the mode shapes the voice, it isn't load-bearing.
func ForSummary(scriptContent string, mode EmotionMode) (system, user string) {
	guideline, ok := emotionGuidelines[mode]
	if !ok {
		mode = EmotionNeutral
		guideline = emotionGuidelines[EmotionNeutral]
	}

	system = fmt.Sprintf(`You are an expert social media content strategist. Generate engaging, optimized content for social platforms.
%s

Return your response as valid JSON with this exact structure:
{
  "title": "SEO-friendly title (under 60 characters)",
  "description": "Short engaging description (40-60 words)",
  "hashtags": ["#tag1", "#tag2", "#tag3", "#tag4", "#tag5"]
}

Rules:
- Title must be catchy and SEO-optimized
- Description must be concise, engaging, and platform-ready
- Include 5-10 relevant, trending hashtags
- Match the emotion mode: %s
- Focus on maximum engagement`, guideline, mode)

	user = fmt.Sprintf("Script content:\n\n%s\n\nGenerate an optimized title, description, and hashtags for this content.", truncate(scriptContent, summaryExcerptLimit))
	return system, user
}

// ForCaptions builds the system/user pair for caption + hashtag generation.
func ForCaptions(scriptContent, scriptTopic string) (system, user string) {
	system = `You are a social media caption expert. Generate one engaging, platform-ready caption and a set of relevant hashtags for the given script.

Return your response as valid JSON with this exact structure:
{
  "caption": "the caption text",
  "hashtags": ["#tag1", "#tag2", "#tag3"]
}

Rules:
- The caption should be 1-3 sentences, hook-first, with a call-to-action
- Include 8-15 relevant, trending hashtags
- Hashtags must start with #`

	user = fmt.Sprintf("Topic: %s\n\nScript content:\n\n%s\n\nGenerate a caption and hashtags for this content.", scriptTopic, truncate(scriptContent, summaryExcerptLimit))
	return system, user
}

// ForTopicAnalysis builds the system/user pair for niche trend analysis.
func ForTopicAnalysis(niche string) (system, user string) {
	system = `You are a content strategy expert specializing in identifying trending topics and viral content ideas.
Generate 5-7 trending subtopics, 3-5 viral hook ideas, and 5-7 suggested titles for the given niche.
Format your response as JSON with this structure: {
  "trendingTopics": ["topic1", "topic2", ...],
  "viralHooks": ["hook1", "hook2", ...],
  "suggestedTitles": ["title1", "title2", ...]
}`

	user = fmt.Sprintf("Niche: %s\n\nAnalyze this niche and provide trending content ideas, viral hooks, and compelling titles.", niche)
	return system, user
}

// ChatSystem is the assistant persona for the in-editor chat helper.
const ChatSystem = `You are an AI script writing assistant integrated into ScriptGenie.
You help users improve their scripts, provide creative suggestions, and answer questions about scriptwriting.
Keep your responses concise, helpful, and actionable. Focus on practical improvements.`

// chatContextLimit bounds how much of the current script is attached to the
// conversation as context.
const chatContextLimit = 1000

// ForChatContext formats the current script as an extra system message.
// Returns "" when there is no context to attach.
func ForChatContext(scriptContext string) string {
	if strings.TrimSpace(scriptContext) == "" {
		return ""
	}
	return fmt.Sprintf("Current script context:\n%s", truncate(scriptContext, chatContextLimit))
}

// truncate clips s to at most n bytes. Prompt excerpts are advisory, so
// clipping mid-rune at the boundary is acceptable.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
