package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSessionStore persists sessions in PostgreSQL so they survive restarts
// and are shared across processes. Expected table:
//
//	CREATE TABLE sessions (
//	    token      TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//	CREATE INDEX sessions_user_id_idx ON sessions (user_id);
//
// Each operation is a single statement, so concurrency control is left to
// the database.
type PgSessionStore struct {
	db       *pgxpool.Pool
	duration time.Duration
	now      func() time.Time
}

// NewPgSessionStore returns a Postgres-backed store whose sessions expire
// after duration. A non-positive duration is a configuration error.
func NewPgSessionStore(db *pgxpool.Pool, duration time.Duration) (*PgSessionStore, error) {
	if duration <= 0 {
		return nil, errors.New("session duration must be positive")
	}
	return &PgSessionStore{db: db, duration: duration, now: time.Now}, nil
}

func (s *PgSessionStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptySessionUser
	}

	token := NewSessionToken()
	now := s.now()
	expiresAt := now.Add(s.duration)

	const q = `INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1,$2,$3,$4)`
	if _, err := s.db.Exec(ctx, q, token, userID, now, expiresAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrTokenCollision
		}
		return "", err
	}
	return token, nil
}

func (s *PgSessionStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	const q = `SELECT user_id, expires_at FROM sessions WHERE token=$1`
	var userID string
	var expiresAt *time.Time
	if err := s.db.QueryRow(ctx, q, token).Scan(&userID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	// Expiry is checked at read time; the sweeper only reclaims rows.
	if expiresAt != nil && s.now().After(*expiresAt) {
		return "", nil
	}
	return userID, nil
}

func (s *PgSessionStore) Destroy(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DestroyAllForUser removes every session of userID regardless of token.
func (s *PgSessionStore) DestroyAllForUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeExpired deletes rows whose expiry has passed and returns the count.
// Called periodically by cmd/sweeper.
func (s *PgSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at < $1`, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
