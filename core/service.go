package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownEmail is returned when no user exists for the given email.
	ErrUnknownEmail = errors.New("no user found for this email")
	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidResetToken is returned when a reset token matches no user.
	ErrInvalidResetToken = errors.New("invalid reset token")
)

// AuthService bundles the credential checks behind the login, registration,
// and password-reset endpoints. sessions may be nil for deployments that
// only use basic auth.
type AuthService struct {
	users    UserRepository
	sessions SessionStore
}

func NewAuthService(users UserRepository, sessions SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Sessions exposes the session store, nil when none is configured.
func (s *AuthService) Sessions() SessionStore {
	return s.sessions
}

// Authenticate checks an email/password pair against the user datastore.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Principal{}, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return Principal{}, ErrUnknownEmail
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return Principal{}, ErrWrongPassword
	}
	return Principal{ID: user.ID, Email: user.Email}, nil
}

// Login validates the credentials and opens a session, returning the
// principal and the new session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Principal, string, error) {
	if s.sessions == nil {
		return Principal{}, "", errors.New("session store not configured")
	}

	principal, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Principal{}, "", err
	}
	token, err := s.sessions.Create(ctx, principal.ID)
	if err != nil {
		return Principal{}, "", fmt.Errorf("failed to create session: %w", err)
	}
	return principal, token, nil
}

// Logout destroys the session for the given token and reports whether one
// existed.
func (s *AuthService) Logout(ctx context.Context, token string) (bool, error) {
	if s.sessions == nil {
		return false, nil
	}
	return s.sessions.Destroy(ctx, token)
}

// Register creates a new user with a freshly hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (Principal, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Principal{}, err
	}
	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return Principal{}, err
	}
	return Principal{ID: user.ID, Email: user.Email}, nil
}

// ResetPasswordToken issues a single-use token the user can redeem to set a
// new password.
func (s *AuthService) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return "", ErrUnknownEmail
	}

	token := NewResetToken()
	if err := s.users.SetResetToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// UpdatePassword redeems a reset token, stores the new password hash, and
// invalidates every live session of the user so stolen cookies die with the
// old password.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, resetToken)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if us, ok := s.sessions.(UserSessionStore); ok && us != nil {
		if _, err := us.DestroyAllForUser(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to destroy sessions: %w", err)
		}
	}
	return nil
}
