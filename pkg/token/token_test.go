package token

import (
	"context"
	"testing"
	"time"

	"anoa.com/eduainexus/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	id := uuid.New()

	signed, exp, err := m.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.Parse(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsForeignSecretAndExpiry(t *testing.T) {
	issuer := NewManager("one", time.Hour, nil)
	signed, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour, nil).Parse(context.Background(), signed)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	late := NewManager("one", time.Hour, nil)
	late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = late.Parse(context.Background(), signed)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUnconfigured(t *testing.T) {
	m := NewManager("", time.Hour, nil)
	assert.False(t, m.Configured())

	_, _, err := m.Issue(uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotConfigured)
}

func TestRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	m := NewManager("secret", time.Hour, rdb)
	ctx := context.Background()

	signed, _, err := m.Issue(uuid.New())
	require.NoError(t, err)

	claims, err := m.Parse(ctx, signed)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, claims))

	_, err = m.Parse(ctx, signed)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.True(t, mr.Exists("revoked_token:"+claims.ID))
}
