package ai_test

import (
	"context"
	"strings"
	"testing"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/ai/aitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsModelText(t *testing.T) {
	p := aitest.Reply("Đạo hàm là tốc độ thay đổi.")
	g := aitest.Gateway(p)

	res := g.Run(context.Background(), "Giải thích đạo hàm", ai.ModeFast)
	assert.Equal(t, "Đạo hàm là tốc độ thay đổi.", res.Text)
	assert.False(t, res.Degraded)

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-flash-lite-latest", calls[0].Profile.Model)
	assert.Nil(t, calls[0].Profile.ThinkingBudget)
}

func TestRunThinkingSetsBudget(t *testing.T) {
	p := aitest.Reply("ok")
	g := aitest.Gateway(p)

	g.Run(context.Background(), "x", ai.ModeThinking)

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-3-pro-preview", calls[0].Profile.Model)
	require.NotNil(t, calls[0].Profile.ThinkingBudget)
	assert.Equal(t, int32(2048), *calls[0].Profile.ThinkingBudget)
}

func TestRunDegradesOnFailure(t *testing.T) {
	g := aitest.Gateway(aitest.Failing())

	res := g.Run(context.Background(), "x", ai.ModeFast)
	assert.Equal(t, ai.FallbackRun, res.Text)
	assert.True(t, res.Degraded)
	assert.NotNil(t, res.Sources)
}

func TestRunEmptyReply(t *testing.T) {
	g := aitest.Gateway(aitest.Reply("   "))

	res := g.Run(context.Background(), "x", ai.ModeFast)
	assert.Equal(t, ai.EmptyRun, res.Text)
}

func TestRunWithoutProvider(t *testing.T) {
	g := ai.NewGateway(nil, ai.NewTable(ai.DefaultModels()), nil)

	assert.Equal(t, ai.FallbackRun, g.Run(context.Background(), "x", ai.ModeFast).Text)
	assert.Empty(t, g.Flashcards(context.Background(), "x", ai.ModeFast))
}

func TestSmartPromptUsesSearchAndReturnsSources(t *testing.T) {
	p := aitest.Reply("1. Vai trò: giáo viên Toán",
		ai.Source{Title: "Bộ GD&ĐT", URI: "https://moet.gov.vn"},
	)
	g := aitest.Gateway(p)

	res := g.SmartPrompt(context.Background(), "soạn giáo án đạo hàm", ai.ModeFast)
	assert.Equal(t, "1. Vai trò: giáo viên Toán", res.Text)
	assert.Equal(t, []ai.Source{{Title: "Bộ GD&ĐT", URI: "https://moet.gov.vn"}}, res.Sources)

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Profile.Search)
	assert.Contains(t, calls[0].Turns[0].Text, "soạn giáo án đạo hàm")
}

func TestFlashcardsStripsFences(t *testing.T) {
	g := aitest.Gateway(aitest.Reply("```json\n[{\"front\":\"Đạo hàm\",\"back\":\"Giới hạn tỉ số\"},{\"front\":\"\",\"back\":\"x\"}]\n```"))

	cards := g.Flashcards(context.Background(), "tài liệu", ai.ModeFast)
	assert.Equal(t, []ai.Flashcard{{Front: "Đạo hàm", Back: "Giới hạn tỉ số"}}, cards)
}

func TestStructuredParseFailureYieldsEmptyLists(t *testing.T) {
	g := aitest.Gateway(aitest.Reply("not json"))
	ctx := context.Background()

	cards := g.Flashcards(ctx, "x", ai.ModeFast)
	quiz := g.Quiz(ctx, "x", ai.ModeFast)
	topics := g.RelatedTopics(ctx, "x", ai.ModeFast)

	assert.NotNil(t, cards)
	assert.Empty(t, cards)
	assert.NotNil(t, quiz)
	assert.Empty(t, quiz)
	assert.NotNil(t, topics)
	assert.Empty(t, topics)
	assert.Nil(t, g.Analyze(ctx, "x"))
}

func TestQuizDropsOutOfRangeAnswers(t *testing.T) {
	g := aitest.Gateway(aitest.Reply(`[
		{"question":"1+1?","options":["1","2"],"correctAnswerIndex":1,"explanation":"cộng"},
		{"question":"bad","options":["a"],"correctAnswerIndex":3,"explanation":""}
	]`))

	quiz := g.Quiz(context.Background(), "x", ai.ModeFast)
	require.Len(t, quiz, 1)
	assert.Equal(t, "1+1?", quiz[0].Question)
	assert.Equal(t, 1, quiz[0].CorrectAnswerIndex)
}

func TestAnalyzeRepairsSuggestions(t *testing.T) {
	text := "Bài 1: Tính đạo hàm của hàm số y = x^3 + 2x tại x = 1. Bài 2: Tìm cực trị."
	prefix := string([]rune(text)[:50])

	g := aitest.Gateway(aitest.Reply(`{
		"type": "problem",
		"summary": "Hai bài tập đạo hàm",
		"suggestions": [
			{"title":"Giải từng bước","description":"d","promptTemplate":"Giải chi tiết: ` + prefix + `...","icon":"calculator"},
			{"title":"Đáp án nhanh","description":"d","promptTemplate":"Cho đáp án nhanh","icon":"sparkles"},
			{"title":"Thừa","description":"d","promptTemplate":"x","icon":"book"}
		]
	}`))

	a := g.Analyze(context.Background(), text)
	require.NotNil(t, a)
	assert.Equal(t, ai.ContentProblem, a.Type)
	require.Len(t, a.Suggestions, 2)
	assert.False(t, strings.HasSuffix(a.Suggestions[0].PromptTemplate, text))
	assert.Equal(t, "Cho đáp án nhanh\n\nNội dung văn bản:\n"+text, a.Suggestions[1].PromptTemplate)
}

func TestAnalyzeUnknownTypeBecomesOther(t *testing.T) {
	g := aitest.Gateway(aitest.Reply(`{"type":"POEM","summary":"s","suggestions":[]}`))

	a := g.Analyze(context.Background(), "Một bài thơ")
	require.NotNil(t, a)
	assert.Equal(t, ai.ContentOther, a.Type)
	assert.NotNil(t, a.Suggestions)
}

func TestAnalyzeTruncatesLongText(t *testing.T) {
	p := aitest.Reply(`{"type":"CONTENT","summary":"s","suggestions":[]}`)
	g := aitest.Gateway(p)

	long := strings.Repeat("ж", 2500)
	g.Analyze(context.Background(), long)

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2000, strings.Count(calls[0].Turns[0].Text, "ж"))
}

func TestExtractImageTextSendsBlob(t *testing.T) {
	p := aitest.Reply("y = x^2")
	g := aitest.Gateway(p)

	res := g.ExtractImageText(context.Background(), ai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}})
	assert.Equal(t, "y = x^2", res.Text)

	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Turns[0].Blobs, 1)
	assert.Equal(t, "image/png", calls[0].Turns[0].Blobs[0].MIMEType)
}

func TestExtractFileTextFallback(t *testing.T) {
	g := aitest.Gateway(aitest.Failing())

	res := g.ExtractFileText(context.Background(), ai.Blob{MIMEType: "application/pdf", Data: []byte("%PDF")})
	assert.True(t, res.Degraded)
	assert.Equal(t, ai.FallbackFile, res.Text)
}

func TestIllustrate(t *testing.T) {
	p := &aitest.Provider{GenerateFunc: func(context.Context, ai.Request) (*ai.Response, error) {
		return &ai.Response{Blobs: []ai.Blob{{MIMEType: "image/png", Data: []byte("png")}}}, nil
	}}
	g := aitest.Gateway(p)

	img, err := g.Illustrate(context.Background(), "chu trình nước")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.True(t, p.Calls()[0].Profile.Image)

	_, err = aitest.Gateway(aitest.Reply("no image")).Illustrate(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrNoImage)
}
