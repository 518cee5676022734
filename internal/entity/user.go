package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Label is the Vietnamese display name shown in the UI.
func (r Role) Label() string {
	switch r {
	case RoleTeacher:
		return "Giáo viên"
	default:
		return "Học sinh"
	}
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID  *string   `gorm:"size:100;uniqueIndex" json:"-"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:20;not null;default:student" json:"role"`
	AvatarURL *string   `gorm:"type:text" json:"avatar,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}
