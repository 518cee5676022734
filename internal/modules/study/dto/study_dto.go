package dto

import (
	"anoa.com/eduainexus/internal/ai"
	conversationDto "anoa.com/eduainexus/internal/modules/conversation/dto"
)

type FileKind string

const (
	FileImage FileKind = "IMAGE"
	FilePDF   FileKind = "PDF"
	FileVideo FileKind = "VIDEO"
	FileOther FileKind = "OTHER"
)

type StudyTextRequest struct {
	Text string `json:"text" binding:"required"`
	Mode string `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}

type SummaryResponse struct {
	Summary  string `json:"summary"`
	Degraded bool   `json:"degraded,omitempty"`
}

// ToolkitResponse is degraded when the summary fell back or any list is empty.
type ToolkitResponse struct {
	Summary       string            `json:"summary"`
	Flashcards    []ai.Flashcard    `json:"flashcards"`
	Quiz          []ai.QuizQuestion `json:"quiz"`
	RelatedTopics []ai.RelatedTopic `json:"related_topics"`
	Degraded      bool              `json:"degraded,omitempty"`
}

type ExtractResponse struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	MIMEType string   `json:"mime_type"`
	Kind     FileKind `json:"kind"`
	Degraded bool     `json:"degraded,omitempty"`
}

type StudySessionRequest struct {
	Document string `json:"document" binding:"required"`
	Title    string `json:"title" binding:"max=255"`
	Mode     string `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}

type StudySessionResponse = conversationDto.ConversationResponse

type ExpandRequest struct {
	Document string          `json:"document" binding:"required"`
	Topic    ai.RelatedTopic `json:"topic"`
	Mode     string          `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}

type ExpandResponse struct {
	Section  string      `json:"section"`
	Document string      `json:"document"`
	Sources  []ai.Source `json:"sources"`
	Degraded bool        `json:"degraded,omitempty"`
}
