package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/eduainexus/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries the remaining cooldown so handlers can set Retry-After.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter guards AI actions per user. A nil redis client disables every check.
type Limiter struct {
	rdb      *redis.Client
	cooldown time.Duration
	hold     time.Duration
}

// New returns a limiter with a per-action cooldown and a maximum in-flight hold.
func New(rdb *redis.Client, cooldown, hold time.Duration) *Limiter {
	if hold <= 0 {
		hold = 2 * time.Minute
	}
	return &Limiter{rdb: rdb, cooldown: cooldown, hold: hold}
}

func cooldownKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

func inflightKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("inflight:user:%s:%s", userID.String(), action)
}

// Allow sets the cooldown for action or reports how long the caller must wait.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil || l.cooldown <= 0 {
		return nil
	}

	key := cooldownKey(userID, action)
	wasSet, err := l.rdb.SetNX(ctx, key, "locked", l.cooldown).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.cooldown
	}
	return &RateLimitError{
		Message:    fmt.Sprintf("Bạn thao tác quá nhanh, vui lòng thử lại sau %.0f giây", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// Clear drops the cooldown, used when the guarded action failed before reaching the model.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, cooldownKey(userID, action)).Err()
}

// Acquire takes the in-flight lock for action. The returned release must be called
// once the action finishes; a second Acquire before that fails with ErrConflict.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID, action string) (func(), error) {
	if l == nil || l.rdb == nil {
		return func() {}, nil
	}

	key := inflightKey(userID, action)
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.hold).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire in-flight lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", action, apperror.ErrConflict)
	}

	release := func() {
		// request ctx may already be cancelled
		bg, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cur, err := l.rdb.Get(bg, key).Result(); err == nil && cur == token {
			l.rdb.Del(bg, key)
		}
	}
	return release, nil
}

// Do runs fn behind the cooldown and the in-flight lock of action.
func (l *Limiter) Do(ctx context.Context, userID uuid.UUID, action string, fn func() error) error {
	if err := l.Allow(ctx, userID, action); err != nil {
		return err
	}
	release, err := l.Acquire(ctx, userID, action)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
