package ai

import (
	"context"
	"strings"
	"sync"
)

// Session is a multi-turn conversation. It is owned by whoever created it; two
// sessions never share history. Sends are serialized.
type Session struct {
	g       *gateway
	mode    Mode
	kind    Kind
	persona Persona

	mu      sync.Mutex
	history []Message
}

func newSession(g *gateway, mode Mode, kind Kind, persona Persona) *Session {
	return &Session{g: g, mode: mode, kind: kind, persona: persona}
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Send appends the exchange to the history only when the model answered.
func (s *Session) Send(ctx context.Context, text string) TextResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]Turn, 0, len(s.history)+1)
	for _, m := range s.history {
		turns = append(turns, Turn{Role: m.Role, Text: m.Text})
	}
	turns = append(turns, userTurn(text))

	resp, err := s.g.call(ctx, s.mode, s.kind, s.persona.System, turns...)
	if err != nil {
		return TextResult{Text: s.persona.Fallback, Sources: []Source{}, Degraded: true}
	}

	reply := resp.Text
	degraded := false
	if strings.TrimSpace(reply) == "" {
		reply = s.persona.Empty
		degraded = true
	}
	sources := nonNil(resp.Sources)

	s.history = append(s.history,
		Message{Role: RoleUser, Text: text},
		Message{Role: RoleModel, Text: reply, Sources: sources},
	)
	return TextResult{Text: reply, Sources: sources, Degraded: degraded}
}

func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}
