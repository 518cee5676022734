package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCoversEveryModeAndKind(t *testing.T) {
	table := NewTable(DefaultModels())

	for _, mode := range []Mode{ModeFast, ModeThinking} {
		for _, kind := range Kinds {
			p, err := table.Resolve(mode, kind)
			require.NoError(t, err, "%s/%s", mode, kind)
			assert.NotEmpty(t, p.Model, "%s/%s", mode, kind)
		}
	}
}

func TestThinkingAddsBudgetToModeDependentKinds(t *testing.T) {
	table := NewTable(Models{ThinkingBudget: 1024})

	for _, kind := range []Kind{KindText, KindChat, KindSummary, KindQuiz} {
		fast, _ := table.Resolve(ModeFast, kind)
		thinking, _ := table.Resolve(ModeThinking, kind)

		assert.Nil(t, fast.ThinkingBudget, kind)
		require.NotNil(t, thinking.ThinkingBudget, kind)
		assert.Equal(t, int32(1024), *thinking.ThinkingBudget)
	}

	extraction, _ := table.Resolve(ModeThinking, KindExtraction)
	assert.Nil(t, extraction.ThinkingBudget)
}

func TestSchemasOnStructuredKinds(t *testing.T) {
	table := NewTable(DefaultModels())

	for _, kind := range []Kind{KindFlashcards, KindQuiz, KindRelatedTopics, KindAnalysis} {
		p, _ := table.Resolve(ModeFast, kind)
		assert.True(t, p.JSON, kind)
		assert.NotNil(t, p.Schema, kind)
	}
}

func TestResolveUnknownModeFallsBackToFast(t *testing.T) {
	table := NewTable(DefaultModels())

	p, err := table.Resolve(Mode("TURBO"), KindText)
	require.NoError(t, err)
	assert.Equal(t, "gemini-flash-lite-latest", p.Model)

	_, err = table.Resolve(ModeFast, Kind("poetry"))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("thinking", ModeFast)
	require.NoError(t, err)
	assert.Equal(t, ModeThinking, m)

	m, err = ParseMode("", ModeThinking)
	require.NoError(t, err)
	assert.Equal(t, ModeThinking, m)

	_, err = ParseMode("slow", ModeFast)
	assert.Error(t, err)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[]`, cleanJSON("  []  "))
}

func TestDedupeSources(t *testing.T) {
	got := dedupeSources([]Source{
		{Title: "A", URI: "https://a"},
		{Title: "A again", URI: "https://a"},
		{Title: "no uri"},
		{Title: "B", URI: "https://b"},
	})
	assert.Equal(t, []Source{{Title: "A", URI: "https://a"}, {Title: "B", URI: "https://b"}}, got)
}

func TestRepairAnalysisKeepsTextBearingPrompt(t *testing.T) {
	text := "Phương trình bậc hai ax^2+bx+c=0"
	a := repairAnalysis(&Analysis{
		Type:        "content",
		Suggestions: []Suggestion{{PromptTemplate: "Giải thích: " + text}},
	}, text)

	assert.Equal(t, ContentContent, a.Type)
	assert.Equal(t, "Giải thích: "+text, a.Suggestions[0].PromptTemplate)
}
