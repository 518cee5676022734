package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"anoa.com/eduainexus/pkg/logger"
)

var ErrNoImage = errors.New("model returned no image")

// Gateway is the single entry point to the hosted model. Every method except
// Illustrate degrades instead of returning an error.
type Gateway interface {
	Run(ctx context.Context, prompt string, mode Mode) TextResult
	SmartPrompt(ctx context.Context, idea string, mode Mode) TextResult
	Summary(ctx context.Context, text string, mode Mode) TextResult
	Flashcards(ctx context.Context, text string, mode Mode) []Flashcard
	Quiz(ctx context.Context, text string, mode Mode) []QuizQuestion
	RelatedTopics(ctx context.Context, text string, mode Mode) []RelatedTopic
	Analyze(ctx context.Context, text string) *Analysis
	ExtractImageText(ctx context.Context, image Blob) TextResult
	ExtractFileText(ctx context.Context, file Blob) TextResult
	Illustrate(ctx context.Context, description string) (*Blob, error)
	NewSession(mode Mode, persona Persona) *Session
}

type gateway struct {
	provider Provider
	table    Table
	log      *logger.Logger
}

func NewGateway(provider Provider, table Table, log *logger.Logger) Gateway {
	if log == nil {
		log = logger.Nop()
	}
	return &gateway{provider: provider, table: table, log: log.With("component", "ai")}
}

func (g *gateway) call(ctx context.Context, mode Mode, kind Kind, system string, turns ...Turn) (*Response, error) {
	if g.provider == nil {
		return nil, errors.New("ai provider not configured")
	}
	profile, err := g.table.Resolve(mode, kind)
	if err != nil {
		return nil, err
	}

	resp, err := g.provider.Generate(ctx, Request{Profile: profile, System: system, Turns: turns})
	if err != nil {
		g.log.Warn("model call failed", "kind", kind, "mode", mode, "model", profile.Model, "error", err)
		return nil, err
	}
	return resp, nil
}

func userTurn(text string, blobs ...Blob) Turn {
	return Turn{Role: RoleUser, Text: text, Blobs: blobs}
}

func (g *gateway) text(ctx context.Context, mode Mode, kind Kind, prompt, fallback, empty string, blobs ...Blob) TextResult {
	resp, err := g.call(ctx, mode, kind, "", userTurn(prompt, blobs...))
	if err != nil {
		return TextResult{Text: fallback, Sources: []Source{}, Degraded: true}
	}
	if strings.TrimSpace(resp.Text) == "" {
		return TextResult{Text: empty, Sources: nonNil(resp.Sources), Degraded: true}
	}
	return TextResult{Text: resp.Text, Sources: nonNil(resp.Sources)}
}

func nonNil(s []Source) []Source {
	if s == nil {
		return []Source{}
	}
	return s
}

func (g *gateway) Run(ctx context.Context, prompt string, mode Mode) TextResult {
	return g.text(ctx, mode, KindText, prompt, FallbackRun, EmptyRun)
}

func (g *gateway) SmartPrompt(ctx context.Context, idea string, mode Mode) TextResult {
	return g.text(ctx, mode, KindSmartPrompt, smartPromptPrompt(idea), FallbackSmart, FallbackSmart)
}

func (g *gateway) Summary(ctx context.Context, text string, mode Mode) TextResult {
	return g.text(ctx, mode, KindSummary, summaryPrompt(text), FallbackSummary, FallbackSummary)
}

func (g *gateway) ExtractImageText(ctx context.Context, image Blob) TextResult {
	return g.text(ctx, ModeFast, KindExtraction, ocrInstruction, FallbackOCR, FallbackOCR, image)
}

func (g *gateway) ExtractFileText(ctx context.Context, file Blob) TextResult {
	return g.text(ctx, ModeFast, KindExtraction, fileInstruction, FallbackFile, EmptyFile, file)
}

// structured decodes a schema-constrained reply into out.
func (g *gateway) structured(ctx context.Context, mode Mode, kind Kind, prompt string, out any) bool {
	resp, err := g.call(ctx, mode, kind, "", userTurn(prompt))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), out); err != nil {
		g.log.Warn("unparseable structured reply", "kind", kind, "error", err)
		return false
	}
	return true
}

func (g *gateway) Flashcards(ctx context.Context, text string, mode Mode) []Flashcard {
	var cards []Flashcard
	if !g.structured(ctx, mode, KindFlashcards, flashcardPrompt(text), &cards) {
		return []Flashcard{}
	}
	out := make([]Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.Front != "" && c.Back != "" {
			out = append(out, c)
		}
	}
	return out
}

func (g *gateway) Quiz(ctx context.Context, text string, mode Mode) []QuizQuestion {
	var questions []QuizQuestion
	if !g.structured(ctx, mode, KindQuiz, quizPrompt(text), &questions) {
		return []QuizQuestion{}
	}
	out := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Question == "" || q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (g *gateway) RelatedTopics(ctx context.Context, text string, mode Mode) []RelatedTopic {
	var topics []RelatedTopic
	if !g.structured(ctx, mode, KindRelatedTopics, relatedTopicPrompt(text), &topics) {
		return []RelatedTopic{}
	}
	if topics == nil {
		return []RelatedTopic{}
	}
	return topics
}

func (g *gateway) Analyze(ctx context.Context, text string) *Analysis {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var a Analysis
	if !g.structured(ctx, ModeFast, KindAnalysis, analysisPrompt(text), &a) {
		return nil
	}
	return repairAnalysis(&a, text)
}

// repairAnalysis normalizes the type, keeps at most two suggestions and makes
// sure each suggested prompt carries the scanned text.
func repairAnalysis(a *Analysis, text string) *Analysis {
	switch ContentType(strings.ToUpper(string(a.Type))) {
	case ContentProblem:
		a.Type = ContentProblem
	case ContentContent:
		a.Type = ContentContent
	default:
		a.Type = ContentOther
	}

	if len(a.Suggestions) > 2 {
		a.Suggestions = a.Suggestions[:2]
	}
	if a.Suggestions == nil {
		a.Suggestions = []Suggestion{}
	}

	prefix := runePrefix(text, repairPrefixLen)
	for i := range a.Suggestions {
		if !strings.Contains(a.Suggestions[i].PromptTemplate, prefix) {
			a.Suggestions[i].PromptTemplate += "\n\nNội dung văn bản:\n" + text
		}
	}
	return a
}

func (g *gateway) Illustrate(ctx context.Context, description string) (*Blob, error) {
	resp, err := g.call(ctx, ModeFast, KindIllustration, "", userTurn(illustrationPrompt(description)))
	if err != nil {
		return nil, err
	}
	for _, b := range resp.Blobs {
		if len(b.Data) > 0 {
			return &b, nil
		}
	}
	return nil, ErrNoImage
}

func (g *gateway) NewSession(mode Mode, persona Persona) *Session {
	kind := persona.kind
	if kind == "" {
		kind = KindChat
	}
	return newSession(g, mode, kind, persona)
}
