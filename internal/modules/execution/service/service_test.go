package service_test

import (
	"context"
	"testing"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/ai/aitest"
	conversation "anoa.com/eduainexus/internal/modules/conversation/service"
	"anoa.com/eduainexus/internal/modules/execution/dto"
	"anoa.com/eduainexus/internal/modules/execution/service"
	"anoa.com/eduainexus/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(p *aitest.Provider) service.ExecutionService {
	conversations := conversation.NewConversationService(aitest.Gateway(p), conversation.NewRegistry(), nil, nil)
	return service.NewExecutionService(conversations, nil)
}

func TestExecute_MathScenario(t *testing.T) {
	provider := aitest.Reply("Đạo hàm đo tốc độ biến thiên.", ai.Source{Title: "SGK Toán 11", URI: "https://example.com/toan11"})
	svc := newService(provider)

	res, err := svc.Execute(context.Background(), uuid.New(), dto.ExecutionRequest{
		Title:   "Giải thích khái niệm Toán học",
		Content: "Hãy giải thích khái niệm toán học: \"[Tên khái niệm]\" cho một học sinh lớp [Lớp mấy].",
		Variables: map[string]string{
			"Tên khái niệm": "Đạo hàm",
			"Lớp mấy":       "",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ai.ModeThinking, res.Mode)
	assert.Equal(t, "Giải thích khái niệm Toán học", res.Title)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "Hãy giải thích khái niệm toán học: \"Đạo hàm\" cho một học sinh lớp [Lớp mấy].", res.Messages[0].Text)
	assert.Equal(t, "Đạo hàm đo tốc độ biến thiên.", res.Messages[1].Text)
	assert.Equal(t, []ai.Source{{Title: "SGK Toán 11", URI: "https://example.com/toan11"}}, res.Messages[1].Sources)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ai.ExecutionPersona.System, calls[0].System)
	assert.NotNil(t, calls[0].Profile.ThinkingBudget)
}

func TestExecute_FastMode(t *testing.T) {
	provider := aitest.Reply("ok")
	svc := newService(provider)

	res, err := svc.Execute(context.Background(), uuid.New(), dto.ExecutionRequest{Title: "t", Content: "c", Mode: "fast"})
	require.NoError(t, err)
	assert.Equal(t, ai.ModeFast, res.Mode)
	assert.Nil(t, provider.Calls()[0].Profile.ThinkingBudget)
}

func TestExecute_Degraded(t *testing.T) {
	svc := newService(aitest.Failing())

	res, err := svc.Execute(context.Background(), uuid.New(), dto.ExecutionRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, ai.ExecutionPersona.Fallback, res.Reply.Text)
}

func TestExecute_BadInput(t *testing.T) {
	svc := newService(aitest.Reply("ok"))

	_, err := svc.Execute(context.Background(), uuid.New(), dto.ExecutionRequest{Title: "t", Content: " "})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.Execute(context.Background(), uuid.New(), dto.ExecutionRequest{Title: "t", Content: "c", Mode: "TURBO"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}
