package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jeannegris/equora/internal/domain"
)

const (
	sessionNS   = "equora_session:"
	tempTokenNS = "equora_temp_token:"
)

// TokenRepository keeps sessions and temp tokens as expiry-bearing records in
// Redis so every service instance observes the same state. Redis TTLs do the
// sweeping; reads additionally check the embedded expiry so a record past its
// deadline is treated as nonexistent regardless of physical deletion timing.
type TokenRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{rdb: rdb, now: time.Now}
}

func (r *TokenRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, sessionNS+s.ID, b, ttl).Err()
}

// GetSession returns (nil, nil) when the session is missing or expired.
func (r *TokenRepository) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionNS+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	if s.Expired(r.now()) {
		_ = r.rdb.Del(ctx, sessionNS+sessionID).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *TokenRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, sessionNS+sessionID).Err()
}

func (r *TokenRepository) CreateTempToken(ctx context.Context, t *domain.TempToken) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, tempTokenNS+t.Token, b, ttl).Err()
}

func (r *TokenRepository) GetTempToken(ctx context.Context, token string) (*domain.TempToken, error) {
	raw, err := r.rdb.Get(ctx, tempTokenNS+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t domain.TempToken
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, err
	}
	if t.Expired(r.now()) {
		_ = r.rdb.Del(ctx, tempTokenNS+token).Err()
		return nil, nil
	}
	return &t, nil
}

func (r *TokenRepository) DeleteTempToken(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, tempTokenNS+token).Err()
}
