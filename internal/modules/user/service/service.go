package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/internal/modules/user/dto"
	"anoa.com/eduainexus/internal/modules/user/repository"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService interface {
	GoogleLogin(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, claims *jwt.RegisteredClaims) error
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	identity IdentityProvider
	tokens   *token.Manager
	teachers func(email string) bool
	log      *logger.Logger
}

// NewAuthService takes a nil identity when Google sign-in is not configured.
// isTeacher decides the role of newly created accounts.
func NewAuthService(repo repository.UserRepository, identity IdentityProvider, tokens *token.Manager, isTeacher func(email string) bool, log *logger.Logger) AuthService {
	if isTeacher == nil {
		isTeacher = func(string) bool { return false }
	}
	if log == nil {
		log = logger.Nop()
	}
	return &authService{
		repo:     repo,
		identity: identity,
		tokens:   tokens,
		teachers: isTeacher,
		log:      log,
	}
}

func (s *authService) configured() bool {
	return s.identity != nil && s.tokens.Configured()
}

func (s *authService) GoogleLogin(state string) (string, error) {
	if !s.configured() {
		return "", fmt.Errorf("google sign-in: %w", apperror.ErrNotConfigured)
	}
	return s.identity.AuthCodeURL(state), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if !s.configured() {
		return nil, fmt.Errorf("google sign-in: %w", apperror.ErrNotConfigured)
	}

	googleUser, err := s.identity.FetchUser(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrUnauthorized)
	}
	if googleUser.Email == "" {
		return nil, fmt.Errorf("google account has no email: %w", apperror.ErrUnauthorized)
	}

	user, err := s.findOrCreate(ctx, googleUser)
	if err != nil {
		return nil, err
	}

	signed, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) findOrCreate(ctx context.Context, g *dto.GoogleUser) (*entity.User, error) {
	user, err := s.repo.FindByGoogleID(ctx, g.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		user, err = s.repo.FindByEmail(ctx, g.Email)
	}

	if errors.Is(err, apperror.ErrNotFound) {
		role := entity.RoleStudent
		if s.teachers(g.Email) {
			role = entity.RoleTeacher
		}

		newUser := &entity.User{
			GoogleID: &g.ID,
			Name:     g.Name,
			Email:    g.Email,
			Role:     role,
		}
		if g.Picture != "" {
			newUser.AvatarURL = &g.Picture
		}
		if newUser.Name == "" {
			newUser.Name = g.Email
		}

		if err := s.repo.Create(ctx, newUser); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.log.Info("user registered", "user_id", newUser.ID, "role", role)
		return newUser, nil
	}
	if err != nil {
		return nil, err
	}

	// refresh provider-owned fields; role is never touched by sign-in
	changed := false
	if user.GoogleID == nil || *user.GoogleID != g.ID {
		user.GoogleID = &g.ID
		changed = true
	}
	if g.Name != "" && user.Name != g.Name {
		user.Name = g.Name
		changed = true
	}
	if g.Picture != "" && (user.AvatarURL == nil || *user.AvatarURL != g.Picture) {
		user.AvatarURL = &g.Picture
		changed = true
	}
	if changed {
		if err := s.repo.Update(ctx, user); err != nil {
			s.log.Warn("failed to refresh user profile", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.RegisteredClaims) error {
	return s.tokens.Revoke(ctx, claims)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}
