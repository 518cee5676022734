package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/modules/assistant/dto"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"github.com/google/uuid"
)

type AssistantService interface {
	// NewChat starts a FAST chat for one connection.
	NewChat(userID uuid.UUID) *Chat
}

type assistantService struct {
	gateway ai.Gateway
	limiter *ratelimiter.Limiter
	log     *logger.Logger
}

func NewAssistantService(gateway ai.Gateway, limiter *ratelimiter.Limiter, log *logger.Logger) AssistantService {
	if log == nil {
		log = logger.Nop()
	}
	return &assistantService{gateway: gateway, limiter: limiter, log: log.With("component", "assistant")}
}

func (s *assistantService) NewChat(userID uuid.UUID) *Chat {
	return &Chat{
		id:      uuid.NewString(),
		userID:  userID,
		svc:     s,
		session: s.gateway.NewSession(ai.ModeFast, ai.AssistantPersona),
	}
}

// Chat is the assistant state of one connection. It is not safe for concurrent use.
type Chat struct {
	id      string
	userID  uuid.UUID
	svc     *assistantService
	session *ai.Session
}

func (c *Chat) Mode() ai.Mode {
	return c.session.Mode()
}

// Send answers text. A mode different from the current one starts a fresh session,
// dropping the history.
func (c *Chat) Send(ctx context.Context, text, mode string) (*dto.ChatEvent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message must not be blank: %w", apperror.ErrBadRequest)
	}
	m, err := ai.ParseMode(mode, c.session.Mode())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrBadRequest)
	}
	if m != c.session.Mode() {
		c.svc.log.Debug("assistant mode changed", "chat", c.id, "from", c.session.Mode(), "to", m)
		c.session = c.svc.gateway.NewSession(m, ai.AssistantPersona)
	}

	release, err := c.svc.limiter.Acquire(ctx, c.userID, "assistant")
	if err != nil {
		return nil, err
	}
	defer release()

	res := c.session.Send(ctx, text)
	return &dto.ChatEvent{
		Type:     dto.EventReply,
		Mode:     m,
		Text:     res.Text,
		Sources:  res.Sources,
		Degraded: res.Degraded,
	}, nil
}
