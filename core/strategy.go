package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	// ErrNoCredential means the client presented nothing to authenticate with.
	ErrNoCredential = errors.New("no credential presented")
	// ErrInvalidCredential means the presented credential is malformed,
	// wrong, expired, or belongs to no user.
	ErrInvalidCredential = errors.New("invalid credential")
)

// AuthStrategy is one of the interchangeable authentication policies. Any
// error other than ErrNoCredential/ErrInvalidCredential is a datastore
// failure and surfaces as a server error, not a client one.
type AuthStrategy interface {
	Authenticate(ctx context.Context, r *http.Request) (Principal, error)
	IsExempt(path string, excludedPaths []string) bool
}

// exemptByPath supplies the shared path-exemption behaviour to all variants.
type exemptByPath struct{}

func (exemptByPath) IsExempt(path string, excludedPaths []string) bool {
	return IsExcluded(path, excludedPaths)
}

// NoneAuth never authenticates anyone. The request gate recognises it as
// "no auth configured" and lets every request through; it is a documented
// escape hatch, not a security strategy.
type NoneAuth struct {
	exemptByPath
}

func (NoneAuth) Authenticate(context.Context, *http.Request) (Principal, error) {
	return Principal{}, ErrNoCredential
}

// BasicAuth validates an RFC 7617 Authorization header against the user
// datastore.
type BasicAuth struct {
	exemptByPath
	users UserRepository
}

func NewBasicAuth(users UserRepository) *BasicAuth {
	return &BasicAuth{users: users}
}

func (a *BasicAuth) Authenticate(ctx context.Context, r *http.Request) (Principal, error) {
	header, ok := AuthorizationHeader(r)
	if !ok {
		return Principal{}, ErrNoCredential
	}

	payload, ok := DecodeBasic(header)
	if !ok {
		return Principal{}, ErrInvalidCredential
	}
	decoded, ok := DecodeBase64(payload)
	if !ok {
		return Principal{}, ErrInvalidCredential
	}
	email, password, ok := SplitCredentials(decoded)
	if !ok {
		return Principal{}, ErrInvalidCredential
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return Principal{}, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil || !VerifyPassword(password, user.PasswordHash) {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{ID: user.ID, Email: user.Email}, nil
}

// SessionAuth validates an opaque session cookie against a SessionStore.
// The expiring and persisted variants are this same strategy composed with
// a different store; expiry policy lives entirely in the store.
type SessionAuth struct {
	exemptByPath
	users      UserRepository
	sessions   SessionStore
	cookieName string
}

func NewSessionAuth(users UserRepository, sessions SessionStore, cookieName string) *SessionAuth {
	return &SessionAuth{users: users, sessions: sessions, cookieName: cookieName}
}

func (a *SessionAuth) Authenticate(ctx context.Context, r *http.Request) (Principal, error) {
	token, ok := SessionCookie(r, a.cookieName)
	if !ok {
		return Principal{}, ErrNoCredential
	}

	userID, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("session lookup failed: %w", err)
	}
	if userID == "" {
		return Principal{}, ErrInvalidCredential
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return Principal{}, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{ID: user.ID, Email: user.Email}, nil
}

// NewStrategy builds the strategy selected by cfg.AuthType. store must be
// non-nil for the session variants and is ignored otherwise.
func NewStrategy(cfg Config, users UserRepository, store SessionStore) (AuthStrategy, error) {
	switch cfg.AuthType {
	case AuthTypeNone:
		return NoneAuth{}, nil
	case AuthTypeBasic:
		return NewBasicAuth(users), nil
	case AuthTypeSession, AuthTypeExpiringSession, AuthTypePersistedSession:
		if store == nil {
			return nil, fmt.Errorf("auth type %s requires a session store", cfg.AuthType)
		}
		return NewSessionAuth(users, store, cfg.SessionName), nil
	default:
		return nil, fmt.Errorf("unknown AUTH_TYPE %q", cfg.AuthType)
	}
}
