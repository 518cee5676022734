package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/modules/conversation/dto"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"github.com/google/uuid"
)

type ConversationService interface {
	// Start opens a conversation and, when first is not blank, sends it as the opening message.
	Start(ctx context.Context, owner uuid.UUID, title string, mode ai.Mode, persona ai.Persona, first string) (*dto.ConversationResponse, error)
	Send(ctx context.Context, owner uuid.UUID, id, text string) (*dto.MessageResponse, error)
	Get(owner uuid.UUID, id string) (*dto.ConversationResponse, error)
	Delete(owner uuid.UUID, id string) error
}

type conversationService struct {
	gateway  ai.Gateway
	registry Registry
	limiter  *ratelimiter.Limiter
	log      *logger.Logger
}

func NewConversationService(gateway ai.Gateway, registry Registry, limiter *ratelimiter.Limiter, log *logger.Logger) ConversationService {
	if log == nil {
		log = logger.Nop()
	}
	return &conversationService{
		gateway:  gateway,
		registry: registry,
		limiter:  limiter,
		log:      log.With("component", "conversation"),
	}
}

func toResponse(c *Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		ID:        c.ID,
		Title:     c.Title,
		Mode:      c.Session.Mode(),
		Messages:  c.Session.History(),
		CreatedAt: c.CreatedAt,
	}
}

func (s *conversationService) Start(ctx context.Context, owner uuid.UUID, title string, mode ai.Mode, persona ai.Persona, first string) (*dto.ConversationResponse, error) {
	c := s.registry.Open(owner, title, s.gateway.NewSession(mode, persona))
	s.log.Debug("conversation opened", "id", c.ID, "owner", owner, "mode", mode)

	if strings.TrimSpace(first) == "" {
		return toResponse(c), nil
	}

	res, err := s.send(ctx, c, first)
	if err != nil {
		_ = s.registry.Close(owner, c.ID)
		return nil, err
	}
	out := toResponse(c)
	out.Reply = &ai.Message{Role: ai.RoleModel, Text: res.Text, Sources: res.Sources}
	out.Degraded = res.Degraded
	return out, nil
}

func (s *conversationService) send(ctx context.Context, c *Conversation, text string) (*ai.TextResult, error) {
	release, err := s.limiter.Acquire(ctx, c.OwnerID, "conversation:"+c.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	done := s.registry.Use(c)
	defer done()

	res := c.Session.Send(ctx, text)
	return &res, nil
}

func (s *conversationService) Send(ctx context.Context, owner uuid.UUID, id, text string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message must not be blank: %w", apperror.ErrBadRequest)
	}
	c, err := s.registry.Get(owner, id)
	if err != nil {
		return nil, err
	}

	res, err := s.send(ctx, c, text)
	if err != nil {
		return nil, err
	}
	return &dto.MessageResponse{
		ConversationID: c.ID,
		Reply:          ai.Message{Role: ai.RoleModel, Text: res.Text, Sources: res.Sources},
		Degraded:       res.Degraded,
	}, nil
}

func (s *conversationService) Get(owner uuid.UUID, id string) (*dto.ConversationResponse, error) {
	c, err := s.registry.Get(owner, id)
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

func (s *conversationService) Delete(owner uuid.UUID, id string) error {
	return s.registry.Close(owner, id)
}
