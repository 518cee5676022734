package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/eduainexus/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Manager issues and verifies HS256 access tokens. Revocation needs redis;
// without it logout is client-side only.
type Manager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, rdb *redis.Client) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, rdb: rdb, now: time.Now}
}

func (m *Manager) Configured() bool {
	return m != nil && len(m.secret) > 0
}

func (m *Manager) Issue(userID uuid.UUID) (string, time.Time, error) {
	if !m.Configured() {
		return "", time.Time{}, fmt.Errorf("jwt secret: %w", apperror.ErrNotConfigured)
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) Parse(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error) {
	if !m.Configured() {
		return nil, apperror.ErrUnauthorized
	}

	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", apperror.ErrUnauthorized)
	}

	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: %w", apperror.ErrUnauthorized)
	}

	revoked, err := m.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token revoked: %w", apperror.ErrUnauthorized)
	}
	return claims, nil
}

func revokedKey(jti string) string {
	return "revoked_token:" + jti
}

// Revoke denylists the token id until the token would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedKey(claims.ID), "1", ttl).Err()
}

func (m *Manager) isRevoked(ctx context.Context, jti string) (bool, error) {
	if m.rdb == nil || jti == "" {
		return false, nil
	}
	err := m.rdb.Get(ctx, revokedKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
