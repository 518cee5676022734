package dto

import (
	"time"

	"anoa.com/eduainexus/internal/ai"
)

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ConversationResponse carries the opening reply when one was sent. A degraded reply
// is not part of Messages.
type ConversationResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Mode      ai.Mode      `json:"mode"`
	Messages  []ai.Message `json:"messages"`
	CreatedAt time.Time    `json:"created_at"`
	Reply     *ai.Message  `json:"reply,omitempty"`
	Degraded  bool         `json:"degraded,omitempty"`
}

type MessageResponse struct {
	ConversationID string     `json:"conversation_id"`
	Reply          ai.Message `json:"reply"`
	Degraded       bool       `json:"degraded"`
}
