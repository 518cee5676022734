package ai

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type Mode string

const (
	ModeFast     Mode = "FAST"
	ModeThinking Mode = "THINKING"
)

// ParseMode accepts the mode names case-insensitively; empty input yields def.
func ParseMode(s string, def Mode) (Mode, error) {
	if s == "" {
		return def, nil
	}
	switch Mode(strings.ToUpper(s)) {
	case ModeFast:
		return ModeFast, nil
	case ModeThinking:
		return ModeThinking, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Kind string

const (
	KindText          Kind = "text"
	KindSmartPrompt   Kind = "smart_prompt"
	KindSummary       Kind = "summary"
	KindFlashcards    Kind = "flashcards"
	KindQuiz          Kind = "quiz"
	KindRelatedTopics Kind = "related_topics"
	KindAnalysis      Kind = "analysis"
	KindExtraction    Kind = "extraction"
	KindChat          Kind = "chat"
	KindExecution     Kind = "execution"
	KindIllustration  Kind = "illustration"
)

var Kinds = []Kind{
	KindText, KindSmartPrompt, KindSummary, KindFlashcards, KindQuiz,
	KindRelatedTopics, KindAnalysis, KindExtraction, KindChat, KindExecution, KindIllustration,
}

// Profile is everything the provider needs to know about one call besides its contents.
type Profile struct {
	Model          string
	ThinkingBudget *int32
	JSON           bool
	Schema         *genai.Schema
	Search         bool
	Image          bool
}

type Models struct {
	Fast           string
	Thinking       string
	Structured     string
	Image          string
	ThinkingBudget int32
}

func DefaultModels() Models {
	return Models{
		Fast:           "gemini-flash-lite-latest",
		Thinking:       "gemini-3-pro-preview",
		Structured:     "gemini-3-flash-preview",
		Image:          "gemini-2.5-flash-image",
		ThinkingBudget: 2048,
	}
}

// Table resolves (mode, kind) to a call profile.
type Table map[Mode]map[Kind]Profile

func NewTable(m Models) Table {
	def := DefaultModels()
	if m.Fast == "" {
		m.Fast = def.Fast
	}
	if m.Thinking == "" {
		m.Thinking = def.Thinking
	}
	if m.Structured == "" {
		m.Structured = def.Structured
	}
	if m.Image == "" {
		m.Image = def.Image
	}
	budget := m.ThinkingBudget

	fast := Profile{Model: m.Fast}
	structured := Profile{Model: m.Structured}
	thinking := Profile{Model: m.Thinking, ThinkingBudget: &budget}

	withSchema := func(p Profile, s *genai.Schema) Profile {
		p.JSON = true
		p.Schema = s
		return p
	}
	withSearch := func(p Profile) Profile {
		p.Search = true
		return p
	}

	extraction := structured
	illustration := Profile{Model: m.Image, Image: true}

	return Table{
		ModeFast: {
			KindText:          fast,
			KindChat:          fast,
			KindExecution:     withSearch(fast),
			KindSmartPrompt:   withSearch(structured),
			KindSummary:       structured,
			KindFlashcards:    withSchema(structured, flashcardSchema),
			KindQuiz:          withSchema(structured, quizSchema),
			KindRelatedTopics: withSchema(structured, relatedTopicSchema),
			KindAnalysis:      withSchema(structured, analysisSchema),
			KindExtraction:    extraction,
			KindIllustration:  illustration,
		},
		ModeThinking: {
			KindText:          thinking,
			KindChat:          thinking,
			KindExecution:     withSearch(thinking),
			KindSmartPrompt:   withSearch(thinking),
			KindSummary:       thinking,
			KindFlashcards:    withSchema(thinking, flashcardSchema),
			KindQuiz:          withSchema(thinking, quizSchema),
			KindRelatedTopics: withSchema(thinking, relatedTopicSchema),
			KindAnalysis:      withSchema(thinking, analysisSchema),
			KindExtraction:    extraction,
			KindIllustration:  illustration,
		},
	}
}

// Resolve falls back to FAST for an unknown mode.
func (t Table) Resolve(mode Mode, kind Kind) (Profile, error) {
	byKind, ok := t[mode]
	if !ok {
		byKind = t[ModeFast]
	}
	p, ok := byKind[kind]
	if !ok {
		return Profile{}, fmt.Errorf("no profile for %s/%s", mode, kind)
	}
	return p, nil
}
