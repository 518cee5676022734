package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/eduainexus/internal/ai"
	conversationDto "anoa.com/eduainexus/internal/modules/conversation/dto"
	conversation "anoa.com/eduainexus/internal/modules/conversation/service"
	"anoa.com/eduainexus/internal/modules/execution/dto"
	"anoa.com/eduainexus/internal/promptvar"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"github.com/google/uuid"
)

type ExecutionService interface {
	Execute(ctx context.Context, userID uuid.UUID, req dto.ExecutionRequest) (*conversationDto.ConversationResponse, error)
}

type executionService struct {
	conversations conversation.ConversationService
	limiter       *ratelimiter.Limiter
}

func NewExecutionService(conversations conversation.ConversationService, limiter *ratelimiter.Limiter) ExecutionService {
	return &executionService{conversations: conversations, limiter: limiter}
}

// Execute fills the template, opens an execution conversation and sends the final
// prompt as its first message.
func (s *executionService) Execute(ctx context.Context, userID uuid.UUID, req dto.ExecutionRequest) (*conversationDto.ConversationResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content must not be blank: %w", apperror.ErrBadRequest)
	}
	mode, err := ai.ParseMode(req.Mode, ai.ModeThinking)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrBadRequest)
	}

	final := promptvar.Substitute(req.Content, req.Variables)

	var res *conversationDto.ConversationResponse
	err = s.limiter.Do(ctx, userID, "execution", func() error {
		var startErr error
		res, startErr = s.conversations.Start(ctx, userID, req.Title, mode, ai.ExecutionPersona, final)
		return startErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
