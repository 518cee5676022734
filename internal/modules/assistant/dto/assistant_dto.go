package dto

import "anoa.com/eduainexus/internal/ai"

// ChatMessage is what the client sends over the socket.
type ChatMessage struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type EventType string

const (
	EventReady EventType = "ready"
	EventReply EventType = "reply"
	EventError EventType = "error"
)

// ChatEvent is what the server sends over the socket.
type ChatEvent struct {
	Type     EventType   `json:"type"`
	Mode     ai.Mode     `json:"mode,omitempty"`
	Text     string      `json:"text,omitempty"`
	Sources  []ai.Source `json:"sources,omitempty"`
	Degraded bool        `json:"degraded,omitempty"`
	Error    string      `json:"error,omitempty"`
}
