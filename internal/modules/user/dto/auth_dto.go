package dto

import (
	"time"

	"anoa.com/eduainexus/internal/entity"
)

type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	RoleLabel string      `json:"role_label"`
	Avatar    *string     `json:"avatar,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		RoleLabel: u.Role.Label(),
		Avatar:    u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// GoogleUser is the subset of the userinfo endpoint we keep.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
