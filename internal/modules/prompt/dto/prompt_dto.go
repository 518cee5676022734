package dto

import (
	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/internal/promptvar"
)

const DefaultCategory = "Tổng hợp"

type PromptFilter struct {
	Role     string `form:"role"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

type CreatePromptRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Tags        []string `json:"tags"`
	Role        string   `json:"role" binding:"omitempty,oneof=student teacher"`
	Category    string   `json:"category" binding:"max=100"`
	IsPublic    *bool    `json:"is_public"`
}

// UpdatePromptRequest overwrites every mutable field.
type UpdatePromptRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Tags        []string `json:"tags"`
	Role        string   `json:"role" binding:"omitempty,oneof=student teacher"`
	Category    string   `json:"category" binding:"max=100"`
	IsPublic    bool     `json:"is_public"`
}

type PromptResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Role        string   `json:"role"`
	RoleLabel   string   `json:"role_label"`
	Category    string   `json:"category"`
	AuthorID    *string  `json:"author_id,omitempty"`
	IsPublic    bool     `json:"is_public"`
	CreatedAt   int64    `json:"created_at"`
	Likes       int      `json:"likes"`
	LikedByMe   bool     `json:"liked_by_me"`
	CanEdit     bool     `json:"can_edit"`
	Variables   []string `json:"variables"`
}

// Viewer is the caller of a read; a nil pointer in a service call means a guest.
type Viewer struct {
	ID   string
	Role entity.Role
}

func NewPromptResponse(p *entity.PromptTemplate, viewer *Viewer) PromptResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}

	res := PromptResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Tags:        tags,
		Role:        p.Role,
		RoleLabel:   entity.Role(p.Role).Label(),
		Category:    p.Category,
		AuthorID:    p.AuthorID,
		IsPublic:    p.IsPublic,
		CreatedAt:   p.CreatedAt,
		Likes:       p.Likes,
		Variables:   promptvar.Extract(p.Content),
	}
	if viewer != nil {
		res.LikedByMe = p.LikedByUser(viewer.ID)
		res.CanEdit = p.CanModify(viewer.ID, viewer.Role)
	}
	return res
}

type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type QuickTestRequest struct {
	Variables map[string]string `json:"variables"`
	Mode      string            `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}

type QuickTestResponse struct {
	FinalPrompt string      `json:"final_prompt"`
	Result      string      `json:"result"`
	Sources     []ai.Source `json:"sources"`
	Degraded    bool        `json:"degraded"`
}

type SmartPromptRequest struct {
	Idea string `json:"idea" binding:"required"`
	Mode string `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}

// SmartPromptResponse pre-fills the save form the way the library does.
type SmartPromptResponse struct {
	Content   string      `json:"content"`
	Sources   []ai.Source `json:"sources"`
	Degraded  bool        `json:"degraded"`
	Variables []string    `json:"variables"`
	Draft     PromptDraft `json:"draft"`
}

type PromptDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Role        string `json:"role"`
	IsPublic    bool   `json:"is_public"`
}

type PreviewRequest struct {
	Content   string            `json:"content" binding:"required"`
	Variables map[string]string `json:"variables"`
}

type PreviewResponse struct {
	Variables   []promptvar.Field `json:"variables"`
	Missing     []string          `json:"missing"`
	FinalPrompt string            `json:"final_prompt"`
}

type IllustrationResponse struct {
	URL      string `json:"url,omitempty"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data,omitempty"`
}
