package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// UserRecord is the persistence-layer projection of a user.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	ResetToken   *string
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users. Lookup methods
// return (nil, nil) when no matching user exists; errors are reserved for
// datastore failures.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByResetToken(ctx context.Context, token string) (*UserRecord, error)
	Create(ctx context.Context, email, passwordHash string) (*UserRecord, error)
	SetResetToken(ctx context.Context, userID, token string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	HasAny(ctx context.Context) (bool, error)
}

// PgUserRepository implements UserRepository using pgxpool. Expected table:
//
//	CREATE TABLE users (
//	    id            TEXT PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    reset_token   TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, email, password_hash, reset_token, created_at`

func (r *PgUserRepository) findOne(ctx context.Context, query string, args ...any) (*UserRecord, error) {
	var u UserRecord
	err := r.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ResetToken, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if email == "" {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	if id == "" {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *PgUserRepository) FindByResetToken(ctx context.Context, token string) (*UserRecord, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token=$1`, token)
}

func (r *PgUserRepository) Create(ctx context.Context, email, passwordHash string) (*UserRecord, error) {
	id := uuid.NewString()
	const q = `INSERT INTO users (id, email, password_hash) VALUES ($1,$2,$3) RETURNING created_at`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, q, id, email, passwordHash).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &UserRecord{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: createdAt}, nil
}

func (r *PgUserRepository) SetResetToken(ctx context.Context, userID, token string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET reset_token=$1 WHERE id=$2`, token, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

// UpdatePassword stores the new hash and consumes any outstanding reset token.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, reset_token=NULL WHERE id=$2`, passwordHash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

func (r *PgUserRepository) HasAny(ctx context.Context) (bool, error) {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1 FROM users LIMIT 1`).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
