package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrEmptySessionUser is returned when a session is requested for an
	// empty user id.
	ErrEmptySessionUser = errors.New("session user id is empty")
	// ErrTokenCollision means a freshly generated token already exists in
	// the store. With 128-bit random tokens this indicates a broken entropy
	// source or corrupted store, so it is treated as fatal by callers.
	ErrTokenCollision = errors.New("session token collision")
)

// SessionRecord is one live session. A zero ExpiresAt means the session
// never expires. Records are immutable after creation; the store only ever
// deletes them.
type SessionRecord struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record has passed its expiry at the given time.
func (s SessionRecord) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStore maps opaque tokens to user ids and owns expiry policy.
// Resolve returns "" for tokens that are unknown, destroyed, or expired
// (lazy expiry; no sweep required).
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) (bool, error)
}

// UserSessionStore additionally supports bulk invalidation of every session
// belonging to one user, used on password reset.
type UserSessionStore interface {
	SessionStore
	DestroyAllForUser(ctx context.Context, userID string) (int64, error)
}

// NewSessionStore builds the session store the configured strategy needs.
// none/basic strategies use no store and get nil. db and redisClient may be
// nil when the configuration does not call for them.
func NewSessionStore(cfg Config, db *pgxpool.Pool, redisClient *redis.Client) (SessionStore, error) {
	duration := time.Duration(cfg.SessionDuration) * time.Second
	switch cfg.AuthType {
	case AuthTypeNone, AuthTypeBasic:
		return nil, nil
	case AuthTypeSession:
		return NewMemorySessionStore(), nil
	case AuthTypeExpiringSession:
		return NewExpiringMemorySessionStore(duration)
	case AuthTypePersistedSession:
		switch cfg.SessionBackend {
		case SessionBackendRedis:
			if redisClient == nil {
				return nil, errors.New("redis session backend requires a redis client")
			}
			return NewRedisSessionStore(redisClient, duration)
		default:
			if db == nil {
				return nil, errors.New("postgres session backend requires a database pool")
			}
			return NewPgSessionStore(db, duration)
		}
	default:
		return nil, errors.New("unknown auth type " + cfg.AuthType)
	}
}

// MemorySessionStore keeps sessions in a process-local map. A single mutex
// serializes writers and expiry checks against concurrent readers.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]SessionRecord
	duration time.Duration // 0 = sessions never expire
	now      func() time.Time
}

// NewMemorySessionStore returns a store whose sessions never expire.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]SessionRecord),
		now:      time.Now,
	}
}

// NewExpiringMemorySessionStore returns a store whose sessions expire after
// duration. A non-positive duration is a configuration error.
func NewExpiringMemorySessionStore(duration time.Duration) (*MemorySessionStore, error) {
	if duration <= 0 {
		return nil, errors.New("session duration must be positive")
	}
	s := NewMemorySessionStore()
	s.duration = duration
	return s, nil
}

// Create issues a fresh token for userID.
func (s *MemorySessionStore) Create(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptySessionUser
	}

	token := NewSessionToken()
	now := s.now()
	rec := SessionRecord{Token: token, UserID: userID, CreatedAt: now}
	if s.duration > 0 {
		rec.ExpiresAt = now.Add(s.duration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[token]; exists {
		// 128-bit random tokens do not collide on a healthy system.
		panic(ErrTokenCollision)
	}
	s.sessions[token] = rec
	return token, nil
}

// Resolve returns the user id the token belongs to, or "" when the token is
// unknown or the session has expired.
func (s *MemorySessionStore) Resolve(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[token]
	if !ok || rec.Expired(s.now()) {
		return "", nil
	}
	return rec.UserID, nil
}

// Destroy removes the session and reports whether it existed.
func (s *MemorySessionStore) Destroy(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false, nil
	}
	delete(s.sessions, token)
	return true, nil
}

// DestroyAllForUser removes every session belonging to userID and returns
// how many were removed.
func (s *MemorySessionStore) DestroyAllForUser(_ context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, rec := range s.sessions {
		if rec.UserID == userID {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

// PurgeExpired evicts expired records. Expiry is already enforced lazily at
// Resolve time; this only reclaims memory.
func (s *MemorySessionStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int
	for token, rec := range s.sessions {
		if rec.Expired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}
