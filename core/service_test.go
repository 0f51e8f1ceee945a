package core

import (
	"context"
	"errors"
	"testing"
)

func TestAuthServiceAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	user := repo.add(t, "alice@example.com", "s3cret")
	service := NewAuthService(repo, nil)

	principal, err := service.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if principal.ID != user.ID {
		t.Fatalf("principal = %+v", principal)
	}

	if _, err := service.Authenticate(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrUnknownEmail) {
		t.Fatalf("got %v, want ErrUnknownEmail", err)
	}
	if _, err := service.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("got %v, want ErrWrongPassword", err)
	}
}

func TestAuthServiceLoginLogout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	user := repo.add(t, "alice@example.com", "s3cret")
	store := NewMemorySessionStore()
	service := NewAuthService(repo, store)

	principal, token, err := service.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if principal.ID != user.ID || token == "" {
		t.Fatalf("Login = (%+v, %q)", principal, token)
	}
	if userID, _ := store.Resolve(ctx, token); userID != user.ID {
		t.Fatalf("token does not resolve to the user")
	}

	destroyed, err := service.Logout(ctx, token)
	if err != nil || !destroyed {
		t.Fatalf("Logout = (%v, %v), want (true, nil)", destroyed, err)
	}
	destroyed, err = service.Logout(ctx, token)
	if err != nil || destroyed {
		t.Fatalf("second Logout = (%v, %v), want (false, nil)", destroyed, err)
	}
}

func TestAuthServiceLoginWithoutStore(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(t, "alice@example.com", "s3cret")
	service := NewAuthService(repo, nil)

	if _, _, err := service.Login(context.Background(), "alice@example.com", "s3cret"); err == nil {
		t.Fatalf("expected error without a session store")
	}
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	service := NewAuthService(repo, nil)

	principal, err := service.Register(ctx, "bob@example.com", "pw123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if principal.Email != "bob@example.com" {
		t.Fatalf("principal = %+v", principal)
	}

	// The stored hash verifies the plaintext.
	if _, err := service.Authenticate(ctx, "bob@example.com", "pw123"); err != nil {
		t.Fatalf("Authenticate after Register: %v", err)
	}

	if _, err := service.Register(ctx, "bob@example.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestAuthServicePasswordReset(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	user := repo.add(t, "carol@example.com", "old-pw")
	store := NewMemorySessionStore()
	service := NewAuthService(repo, store)

	token1, err := store.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	token2, err := store.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	resetToken, err := service.ResetPasswordToken(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("ResetPasswordToken error: %v", err)
	}
	if _, err := service.ResetPasswordToken(ctx, "nobody@example.com"); !errors.Is(err, ErrUnknownEmail) {
		t.Fatalf("got %v, want ErrUnknownEmail", err)
	}

	if err := service.UpdatePassword(ctx, resetToken, "new-pw"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}

	// Every session of the user is gone.
	for _, token := range []string{token1, token2} {
		if userID, _ := store.Resolve(ctx, token); userID != "" {
			t.Fatalf("session %s survived the password reset", token)
		}
	}

	// The token was single-use and the password actually changed.
	if err := service.UpdatePassword(ctx, resetToken, "again"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("got %v, want ErrInvalidResetToken", err)
	}
	if _, err := service.Authenticate(ctx, "carol@example.com", "old-pw"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("old password still verifies: %v", err)
	}
	if _, err := service.Authenticate(ctx, "carol@example.com", "new-pw"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
