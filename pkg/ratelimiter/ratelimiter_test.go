package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/eduainexus/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cooldown time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cooldown, time.Minute), mr
}

func TestNilClientAllowsEverything(t *testing.T) {
	l := New(nil, time.Minute, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, l.Allow(ctx, id, "quick_test"))
	require.NoError(t, l.Allow(ctx, id, "quick_test"))

	release, err := l.Acquire(ctx, id, "quick_test")
	require.NoError(t, err)
	release()
}

func TestAllowCooldown(t *testing.T) {
	l, mr := newLimiter(t, 10*time.Second)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, l.Allow(ctx, id, "smart_prompt"))

	err := l.Allow(ctx, id, "smart_prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Greater(t, rl.RetryAfter, time.Duration(0))

	// other users and other actions are independent
	require.NoError(t, l.Allow(ctx, uuid.New(), "smart_prompt"))
	require.NoError(t, l.Allow(ctx, id, "summary"))

	mr.FastForward(11 * time.Second)
	require.NoError(t, l.Allow(ctx, id, "smart_prompt"))
}

func TestClearDropsCooldown(t *testing.T) {
	l, _ := newLimiter(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, l.Allow(ctx, id, "scan"))
	require.NoError(t, l.Clear(ctx, id, "scan"))
	require.NoError(t, l.Allow(ctx, id, "scan"))
}

func TestAcquireRejectsDuplicateSubmission(t *testing.T) {
	l, _ := newLimiter(t, 0)
	ctx := context.Background()
	id := uuid.New()

	release, err := l.Acquire(ctx, id, "execution")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, id, "execution")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	release()

	release, err = l.Acquire(ctx, id, "execution")
	require.NoError(t, err)
	release()
}

func TestDoHoldsLockWhileRunning(t *testing.T) {
	l, _ := newLimiter(t, 0)
	ctx := context.Background()
	id := uuid.New()

	err := l.Do(ctx, id, "toolkit", func() error {
		_, err := l.Acquire(ctx, id, "toolkit")
		assert.ErrorIs(t, err, apperror.ErrConflict)
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, l.Do(ctx, id, "toolkit", func() error { return boom }), boom)
}

func TestDoRespectsCooldown(t *testing.T) {
	l, _ := newLimiter(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	calls := 0
	run := func() error { calls++; return nil }

	require.NoError(t, l.Do(ctx, id, "summary", run))
	assert.ErrorIs(t, l.Do(ctx, id, "summary", run), apperror.ErrRateLimitExceeded)
	assert.Equal(t, 1, calls)
}
