package entity

import (
	"gorm.io/datatypes"
)

type PromptTemplate struct {
	ID          string                      `gorm:"size:64;primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Content     string                      `gorm:"type:text;not null" json:"content"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Role        string                      `gorm:"size:50;index" json:"role"`
	Category    string                      `gorm:"size:100;index" json:"category"`
	AuthorID    *string                     `gorm:"size:64;index" json:"author_id,omitempty"`
	IsPublic    bool                        `gorm:"index" json:"is_public"`
	CreatedAt   int64                       `gorm:"autoCreateTime:milli;index" json:"created_at"`
	Likes       int                         `gorm:"not null;default:0" json:"likes"`
	LikedBy     datatypes.JSONSlice[string] `json:"liked_by"`
}

// OwnedBy reports whether userID authored the template.
func (p *PromptTemplate) OwnedBy(userID string) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}

// VisibleTo applies the listing rule: public, or owned by the caller.
func (p *PromptTemplate) VisibleTo(userID *string) bool {
	if p.IsPublic {
		return true
	}
	return userID != nil && p.OwnedBy(*userID)
}

// CanModify is the write rule for update and delete: the author, or a teacher when the record is public.
func (p *PromptTemplate) CanModify(userID string, role Role) bool {
	if p.OwnedBy(userID) {
		return true
	}
	return role == RoleTeacher && p.IsPublic
}

func (p *PromptTemplate) LikedByUser(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips membership of userID in LikedBy and adjusts Likes, never below zero.
func (p *PromptTemplate) ToggleLike(userID string) bool {
	if p.LikedByUser(userID) {
		kept := make([]string, 0, len(p.LikedBy))
		for _, id := range p.LikedBy {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.LikedBy = kept
		if p.Likes > 0 {
			p.Likes--
		}
		return false
	}

	p.LikedBy = append(p.LikedBy, userID)
	p.Likes++
	return true
}
