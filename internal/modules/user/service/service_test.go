package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/internal/modules/user/dto"
	"anoa.com/eduainexus/internal/modules/user/repository"
	"anoa.com/eduainexus/internal/modules/user/service"
	"anoa.com/eduainexus/internal/testutil"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIdentity struct {
	AuthCodeURLFunc func(state string) string
	FetchUserFunc   func(ctx context.Context, code string) (*dto.GoogleUser, error)
}

func (m *mockIdentity) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://accounts.example.com/auth?state=" + state
}

func (m *mockIdentity) FetchUser(ctx context.Context, code string) (*dto.GoogleUser, error) {
	return m.FetchUserFunc(ctx, code)
}

func returning(u dto.GoogleUser) *mockIdentity {
	return &mockIdentity{FetchUserFunc: func(context.Context, string) (*dto.GoogleUser, error) {
		return &u, nil
	}}
}

func isTeacher(email string) bool {
	return strings.HasSuffix(email, "@school.edu.vn")
}

func setup(t *testing.T, identity service.IdentityProvider) (service.AuthService, repository.UserRepository, *token.Manager) {
	t.Helper()
	repo := repository.NewUserRepository(testutil.DB(t))
	tokens := token.NewManager("secret", time.Hour, nil)
	return service.NewAuthService(repo, identity, tokens, isTeacher, testutil.Logger(t)), repo, tokens
}

func TestGoogleCallback_CreatesStudent(t *testing.T) {
	svc, repo, tokens := setup(t, returning(dto.GoogleUser{
		ID: "g-1", Email: "an@gmail.com", Name: "Nguyễn An", Picture: "https://img.example.com/an.png",
	}))
	ctx := context.Background()

	res, err := svc.GoogleCallback(ctx, "code")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, entity.RoleStudent, res.User.Role)
	assert.Equal(t, "Học sinh", res.User.RoleLabel)
	require.NotNil(t, res.User.Avatar)
	assert.Equal(t, "https://img.example.com/an.png", *res.User.Avatar)

	claims, err := tokens.Parse(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)

	stored, err := repo.FindByEmail(ctx, "an@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, stored.ID.String())
}

func TestGoogleCallback_TeacherEmail(t *testing.T) {
	svc, _, _ := setup(t, returning(dto.GoogleUser{ID: "g-2", Email: "co.lan@school.edu.vn"}))

	res, err := svc.GoogleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, entity.RoleTeacher, res.User.Role)
	// name falls back to the email
	assert.Equal(t, "co.lan@school.edu.vn", res.User.Name)
}

func TestGoogleCallback_ExistingAccountKeepsRole(t *testing.T) {
	identity := returning(dto.GoogleUser{ID: "g-3", Email: "binh@gmail.com", Name: "Bình mới"})
	svc, repo, _ := setup(t, identity)
	ctx := context.Background()

	existing := &entity.User{Name: "Bình", Email: "binh@gmail.com", Role: entity.RoleTeacher}
	require.NoError(t, repo.Create(ctx, existing))

	res, err := svc.GoogleCallback(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), res.User.ID)
	assert.Equal(t, entity.RoleTeacher, res.User.Role)
	assert.Equal(t, "Bình mới", res.User.Name)

	// linked by email above, found by google id now
	byGoogle, err := repo.FindByGoogleID(ctx, "g-3")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byGoogle.ID)

	again, err := svc.GoogleCallback(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), again.User.ID)
}

func TestGoogleCallback_Failures(t *testing.T) {
	t.Run("ExchangeFails", func(t *testing.T) {
		svc, _, _ := setup(t, &mockIdentity{FetchUserFunc: func(context.Context, string) (*dto.GoogleUser, error) {
			return nil, errors.New("bad code")
		}})
		_, err := svc.GoogleCallback(context.Background(), "code")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("NoEmail", func(t *testing.T) {
		svc, _, _ := setup(t, returning(dto.GoogleUser{ID: "g-4"}))
		_, err := svc.GoogleCallback(context.Background(), "code")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestNotConfigured(t *testing.T) {
	repo := repository.NewUserRepository(testutil.DB(t))

	noIdentity := service.NewAuthService(repo, nil, token.NewManager("secret", time.Hour, nil), nil, nil)
	_, err := noIdentity.GoogleLogin("state")
	assert.ErrorIs(t, err, apperror.ErrNotConfigured)

	noSecret := service.NewAuthService(repo, &mockIdentity{}, token.NewManager("", time.Hour, nil), nil, nil)
	_, err = noSecret.GoogleCallback(context.Background(), "code")
	assert.ErrorIs(t, err, apperror.ErrNotConfigured)
}

func TestGoogleLogin(t *testing.T) {
	svc, _, _ := setup(t, &mockIdentity{})

	url, err := svc.GoogleLogin("abc")
	require.NoError(t, err)
	assert.Contains(t, url, "state=abc")
}

func TestMe(t *testing.T) {
	svc, repo, _ := setup(t, &mockIdentity{})
	ctx := context.Background()

	u := &entity.User{Name: "Chi", Email: "chi@gmail.com"}
	require.NoError(t, repo.Create(ctx, u))

	res, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "chi@gmail.com", res.Email)
	assert.Equal(t, entity.RoleStudent, res.Role)
}
