package prompt

import (
	"strings"
	"testing"

	"github.com/sakif/scriptgenie/internal/model"
)

func TestForScript_AllCombinations(t *testing.T) {
	// Every (language, scriptType) pair must produce a non-empty pair of
	// prompts that names the target language and embeds the topic.
	languages := []model.Language{model.LanguageEnglish, model.LanguageBengali, model.LanguageHindi}
	types := []model.ScriptType{model.ScriptTypeExplainer, model.ScriptTypeNarrative, model.ScriptTypeOutline}

	for _, lang := range languages {
		for _, st := range types {
			system, user, err := ForScript("the fall of Rome", lang, st)
			if err != nil {
				t.Fatalf("ForScript(%s, %s) error = %v", lang, st, err)
			}
			if system == "" || user == "" {
				t.Errorf("ForScript(%s, %s) returned empty prompt", lang, st)
			}
			langName, _ := LanguageName(lang)
			if !strings.Contains(system, langName) {
				t.Errorf("system prompt for %s does not mention %q", lang, langName)
			}
			if !strings.Contains(user, "the fall of Rome") {
				t.Errorf("user prompt for (%s, %s) does not contain the topic", lang, st)
			}
		}
	}
}

func TestForScript_UnknownEnums(t *testing.T) {
	if _, _, err := ForScript("topic", model.Language("klingon"), model.ScriptTypeExplainer); err == nil {
		t.Error("expected error for unknown language")
	}
	if _, _, err := ForScript("topic", model.LanguageEnglish, model.ScriptType("haiku")); err == nil {
		t.Error("expected error for unknown script type")
	}
}

func TestForEnhance_CoversAllActions(t *testing.T) {
	for _, action := range EnhanceActions {
		system, err := ForEnhance(action)
		if err != nil {
			t.Errorf("ForEnhance(%s) error = %v", action, err)
		}
		if system == "" {
			t.Errorf("ForEnhance(%s) returned empty system prompt", action)
		}
	}
}

func TestForEnhance_UnknownAction(t *testing.T) {
	if _, err := ForEnhance(EnhanceAction("sarcastic")); err == nil {
		t.Error("expected error for unknown enhance action")
	}
	if EnhanceAction("sarcastic").Valid() {
		t.Error("Valid() = true for unknown enhance action")
	}
}

func TestActionVocabulariesAreDisjoint(t *testing.T) {
	// Tone actions like "funny" or "dramatic" must NOT validate as research
	// actions — each endpoint owns a closed vocabulary.
	for _, action := range EnhanceActions {
		if ResearchAction(action).Valid() {
			t.Errorf("enhance action %q also validates as a research action", action)
		}
	}
}

func TestForResearch_AllActions(t *testing.T) {
	in := ResearchInput{
		Text:       "the moon landing was in 1969",
		Fact:       "Apollo 11 landed on July 20, 1969",
		Topic:      "space history",
		Content:    "a script about the space race",
		ScriptType: "explainer",
	}

	for _, action := range ResearchActions {
		system, user, err := ForResearch(action, in)
		if err != nil {
			t.Fatalf("ForResearch(%s) error = %v", action, err)
		}
		if system == "" || user == "" {
			t.Errorf("ForResearch(%s) returned empty prompt", action)
		}
	}

	// smooth-integrate must carry both the text and the fact
	_, user, _ := ForResearch(ResearchSmoothIntegrate, in)
	if !strings.Contains(user, in.Fact) {
		t.Error("smooth-integrate user prompt missing the fact to integrate")
	}
}

func TestForSummary_UnknownModeFallsBackToNeutral(t *testing.T) {
	system, _ := ForSummary("some script", EmotionMode("sleepy"))
	if !strings.Contains(system, emotionGuidelines[EmotionNeutral]) {
		t.Error("unknown emotion mode should fall back to neutral guidance")
	}
}

func TestForSummary_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("x", summaryExcerptLimit*3)
	_, user := ForSummary(long, EmotionNeutral)
	if len(user) > summaryExcerptLimit+200 {
		t.Errorf("user prompt not truncated: %d bytes", len(user))
	}
}

func TestForChatContext(t *testing.T) {
	if got := ForChatContext("   "); got != "" {
		t.Errorf("ForChatContext(blank) = %q, want empty", got)
	}
	if got := ForChatContext("INT. LAB - NIGHT"); !strings.Contains(got, "INT. LAB - NIGHT") {
		t.Errorf("ForChatContext missing the script text: %q", got)
	}
}
