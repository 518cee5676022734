package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/ai/aitest"
	conversation "anoa.com/eduainexus/internal/modules/conversation/service"
	"anoa.com/eduainexus/internal/modules/study/dto"
	"anoa.com/eduainexus/internal/modules/study/service"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = "Quang hợp là quá trình cây xanh dùng ánh sáng để tổng hợp chất hữu cơ."

// studyModel answers each generator with a canned reply picked from the prompt.
func studyModel() *aitest.Provider {
	return &aitest.Provider{GenerateFunc: func(_ context.Context, req ai.Request) (*ai.Response, error) {
		prompt := req.Turns[len(req.Turns)-1].Text
		switch {
		case strings.HasPrefix(prompt, "Tóm tắt"):
			return &ai.Response{Text: "**Quang hợp** tạo chất hữu cơ."}, nil
		case strings.HasPrefix(prompt, "Tạo 5-8 flashcard"):
			return &ai.Response{Text: "```json\n[{\"front\":\"Quang hợp\",\"back\":\"Tổng hợp chất hữu cơ\"},{\"front\":\"\",\"back\":\"x\"}]\n```"}, nil
		case strings.HasPrefix(prompt, "Tạo 5 câu hỏi"):
			return &ai.Response{Text: `[{"question":"Quang hợp cần gì?","options":["Ánh sáng","Bóng tối"],"correctAnswerIndex":0,"explanation":"Cần ánh sáng."},{"question":"Sai","options":["a"],"correctAnswerIndex":3}]`}, nil
		case strings.HasPrefix(prompt, "Từ nội dung này"):
			return &ai.Response{Text: `[{"title":"Hô hấp tế bào","description":"Quá trình ngược","relevance":"Cao"}]`}, nil
		case strings.HasPrefix(prompt, "Hãy viết một đoạn"):
			return &ai.Response{Text: "Hô hấp tế bào giải phóng năng lượng."}, nil
		case strings.HasPrefix(prompt, "Hãy trích xuất toàn bộ văn bản có trong hình ảnh"):
			return &ai.Response{Text: "x^2 + 1 = 0"}, nil
		case strings.HasPrefix(prompt, "Hãy trích xuất"):
			return &ai.Response{Text: "Chương 1: Quang hợp"}, nil
		}
		return &ai.Response{Text: "?"}, nil
	}}
}

func newService(p *aitest.Provider, limiter *ratelimiter.Limiter) service.StudyService {
	gateway := aitest.Gateway(p)
	conversations := conversation.NewConversationService(gateway, conversation.NewRegistry(), nil, nil)
	return service.NewStudyService(gateway, conversations, limiter, nil)
}

func TestSummary(t *testing.T) {
	svc := newService(studyModel(), nil)

	res, err := svc.Summary(context.Background(), uuid.New(), dto.StudyTextRequest{Text: document})
	require.NoError(t, err)
	assert.Equal(t, "**Quang hợp** tạo chất hữu cơ.", res.Summary)
	assert.False(t, res.Degraded)

	degraded, err := newService(aitest.Failing(), nil).Summary(context.Background(), uuid.New(), dto.StudyTextRequest{Text: document})
	require.NoError(t, err)
	assert.True(t, degraded.Degraded)
	assert.Equal(t, ai.FallbackSummary, degraded.Summary)
}

func TestStructuredGenerators(t *testing.T) {
	svc := newService(studyModel(), nil)
	ctx := context.Background()
	req := dto.StudyTextRequest{Text: document, Mode: "THINKING"}

	cards, err := svc.Flashcards(ctx, uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, []ai.Flashcard{{Front: "Quang hợp", Back: "Tổng hợp chất hữu cơ"}}, cards)

	quiz, err := svc.Quiz(ctx, uuid.New(), req)
	require.NoError(t, err)
	require.Len(t, quiz, 1)
	assert.Equal(t, 0, quiz[0].CorrectAnswerIndex)

	topics, err := svc.RelatedTopics(ctx, uuid.New(), req)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Hô hấp tế bào", topics[0].Title)
}

func TestStructuredGenerators_FailureGivesEmptyLists(t *testing.T) {
	svc := newService(aitest.Failing(), nil)
	ctx := context.Background()
	req := dto.StudyTextRequest{Text: document}

	cards, err := svc.Flashcards(ctx, uuid.New(), req)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)

	quiz, err := svc.Quiz(ctx, uuid.New(), req)
	require.NoError(t, err)
	assert.Empty(t, quiz)

	topics, err := svc.RelatedTopics(ctx, uuid.New(), req)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestBadInput(t *testing.T) {
	svc := newService(studyModel(), nil)

	_, err := svc.Summary(context.Background(), uuid.New(), dto.StudyTextRequest{Text: "   "})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.Quiz(context.Background(), uuid.New(), dto.StudyTextRequest{Text: document, Mode: "SLOW"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestToolkit(t *testing.T) {
	provider := studyModel()
	svc := newService(provider, nil)

	res, err := svc.Toolkit(context.Background(), uuid.New(), dto.StudyTextRequest{Text: document})
	require.NoError(t, err)

	assert.Equal(t, "**Quang hợp** tạo chất hữu cơ.", res.Summary)
	assert.Len(t, res.Flashcards, 1)
	assert.Len(t, res.Quiz, 1)
	assert.Len(t, res.RelatedTopics, 1)
	assert.False(t, res.Degraded)
	assert.Len(t, provider.Calls(), 4)
}

func TestToolkit_DegradedWhenAListFails(t *testing.T) {
	quizDown := &aitest.Provider{GenerateFunc: func(ctx context.Context, req ai.Request) (*ai.Response, error) {
		if strings.HasPrefix(req.Turns[len(req.Turns)-1].Text, "Tạo 5 câu hỏi") {
			return nil, aitest.ErrUnavailable
		}
		return studyModel().Generate(ctx, req)
	}}

	res, err := newService(quizDown, nil).Toolkit(context.Background(), uuid.New(), dto.StudyTextRequest{Text: document})
	require.NoError(t, err)

	assert.Equal(t, "**Quang hợp** tạo chất hữu cơ.", res.Summary)
	assert.NotNil(t, res.Quiz)
	assert.Empty(t, res.Quiz)
	assert.Len(t, res.Flashcards, 1)
	assert.True(t, res.Degraded)
}

func TestExtract(t *testing.T) {
	svc := newService(studyModel(), nil)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	t.Run("image uses ocr", func(t *testing.T) {
		file, err := upload.ReadFrom(strings.NewReader(string(png)), "bai-tap.png", 1024)
		require.NoError(t, err)

		res, err := svc.Extract(context.Background(), uuid.New(), file)
		require.NoError(t, err)
		assert.Equal(t, dto.FileImage, res.Kind)
		assert.Equal(t, "x^2 + 1 = 0", res.Text)
		assert.Equal(t, "bai-tap", res.Title)
	})

	t.Run("pdf uses file extraction", func(t *testing.T) {
		file, err := upload.ReadFrom(strings.NewReader("%PDF-1.7\n1 0 obj\n"), "Sinh hoc.pdf", 1024)
		require.NoError(t, err)

		res, err := svc.Extract(context.Background(), uuid.New(), file)
		require.NoError(t, err)
		assert.Equal(t, dto.FilePDF, res.Kind)
		assert.Equal(t, "application/pdf", res.MIMEType)
		assert.Equal(t, "Chương 1: Quang hợp", res.Text)
	})

	t.Run("unsupported type", func(t *testing.T) {
		file, err := upload.ReadFrom(strings.NewReader("PK\x03\x04garbage"), "bundle.zip", 1024)
		require.NoError(t, err)

		_, err = svc.Extract(context.Background(), uuid.New(), file)
		assert.ErrorIs(t, err, apperror.ErrUnsupportedMedia)
	})

	t.Run("model failure degrades", func(t *testing.T) {
		file, err := upload.ReadFrom(strings.NewReader("ghi chú"), "notes.txt", 1024)
		require.NoError(t, err)

		res, err := newService(aitest.Failing(), nil).Extract(context.Background(), uuid.New(), file)
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, ai.FallbackFile, res.Text)
		assert.Equal(t, dto.FileOther, res.Kind)
	})
}

func TestOpenSession(t *testing.T) {
	provider := studyModel()
	svc := newService(provider, nil)

	res, err := svc.OpenSession(context.Background(), uuid.New(), dto.StudySessionRequest{Document: document})
	require.NoError(t, err)
	assert.Equal(t, "Study Space", res.Title)
	assert.Equal(t, ai.ModeFast, res.Mode)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, provider.Calls())
}

func TestExpand(t *testing.T) {
	provider := studyModel()
	svc := newService(provider, nil)
	topic := ai.RelatedTopic{Title: "Hô hấp tế bào", Description: "Quá trình ngược"}

	res, err := svc.Expand(context.Background(), uuid.New(), dto.ExpandRequest{Document: document, Topic: topic})
	require.NoError(t, err)

	assert.Equal(t, "\n\n### Mở rộng: Hô hấp tế bào\nHô hấp tế bào giải phóng năng lượng.", res.Section)
	assert.Equal(t, document+res.Section, res.Document)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ai.StudyPersona(document).System, calls[0].System)
	assert.Equal(t, ai.ExpandTopicPrompt(topic), calls[0].Turns[0].Text)
}

func TestExpand_FailureKeepsDocument(t *testing.T) {
	svc := newService(aitest.Failing(), nil)

	res, err := svc.Expand(context.Background(), uuid.New(), dto.ExpandRequest{Document: document, Topic: ai.RelatedTopic{Title: "X"}})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, document, res.Document)

	_, err = svc.Expand(context.Background(), uuid.New(), dto.ExpandRequest{Document: document})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := newService(studyModel(), ratelimiter.New(rdb, time.Minute, time.Minute))
	user := uuid.New()
	req := dto.StudyTextRequest{Text: document}

	_, err := svc.Summary(context.Background(), user, req)
	require.NoError(t, err)

	_, err = svc.Summary(context.Background(), user, req)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	// cooldowns are per action
	_, err = svc.Quiz(context.Background(), user, req)
	assert.NoError(t, err)
}
