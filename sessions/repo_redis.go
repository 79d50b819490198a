package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo stores sessions in Redis so multiple API instances share one
// view of who is logged in. Expiry rides on the key TTL, which makes
// Cleanup a no-op; Redis evicts on its own.
type RedisRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisRepo wraps an existing client. The caller owns the client's
// lifecycle; Close here does not close it.
func NewRedisRepo(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisRepo {
	return &RedisRepo{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *RedisRepo) key(userID string) string {
	return fmt.Sprintf("%s:session:%s", r.keyPrefix, userID)
}

func (r *RedisRepo) Set(ctx context.Context, session Session) error {
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = time.Now().Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, session.UserID)
	}
	if err := r.client.Set(ctx, r.key(session.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, userID string) (Session, error) {
	payload, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	// Key TTL and ExpiresAt normally agree; trust the stricter of the two.
	if session.Expired() {
		_ = r.client.Del(ctx, r.key(userID)).Err()
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *RedisRepo) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup is a no-op: key expiry is native to Redis.
func (r *RedisRepo) Cleanup(context.Context) error {
	return nil
}

func (r *RedisRepo) Close() error {
	return nil
}

var _ Repo = (*RedisRepo)(nil)
