package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// RedisSessionStore persists sessions in Redis with a TTL per key, so expiry
// and reclamation are handled by Redis itself. A per-user set of tokens
// backs DestroyAllForUser.
type RedisSessionStore struct {
	client   *redis.Client
	duration time.Duration
}

// NewRedisSessionStore returns a Redis-backed store whose sessions expire
// after duration. A non-positive duration is a configuration error.
func NewRedisSessionStore(client *redis.Client, duration time.Duration) (*RedisSessionStore, error) {
	if duration <= 0 {
		return nil, errors.New("session duration must be positive")
	}
	return &RedisSessionStore{client: client, duration: duration}, nil
}

type redisSessionValue struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string    { return sessionKeyPrefix + token }
func userIndexKey(userID string) string { return userIndexPrefix + userID }

func (s *RedisSessionStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptySessionUser
	}

	token := NewSessionToken()
	data, err := json.Marshal(redisSessionValue{UserID: userID, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	// NX guards the token-uniqueness invariant.
	set, err := s.client.SetNX(ctx, sessionKey(token), data, s.duration).Result()
	if err != nil {
		return "", err
	}
	if !set {
		return "", ErrTokenCollision
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, userIndexKey(userID), token)
	// The index never needs to outlive the newest session in it.
	pipe.Expire(ctx, userIndexKey(userID), s.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var rec redisSessionValue
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return "", fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.UserID, nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	// Look up the owner first so the user index stays consistent.
	userID, err := s.Resolve(ctx, token)
	if err != nil {
		return false, err
	}

	removed, err := s.client.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, err
	}
	if userID != "" {
		if err := s.client.SRem(ctx, userIndexKey(userID), token).Err(); err != nil {
			return false, err
		}
	}
	return removed > 0, nil
}

// DestroyAllForUser removes every session of userID regardless of token.
func (s *RedisSessionStore) DestroyAllForUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}

	tokens, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, err
	}

	var n int64
	for _, token := range tokens {
		removed, err := s.client.Del(ctx, sessionKey(token)).Result()
		if err != nil {
			return n, err
		}
		n += removed
	}
	if err := s.client.Del(ctx, userIndexKey(userID)).Err(); err != nil {
		return n, err
	}
	return n, nil
}
