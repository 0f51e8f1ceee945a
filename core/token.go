package core

import "github.com/google/uuid"

// NewSessionToken returns a fresh opaque session token: a version-4 UUID,
// 128 bits from a CSPRNG. uuid.NewString panics only if the system entropy
// source is broken, which is not a condition worth recovering from.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewResetToken returns a single-use password-reset token. Same shape as a
// session token but the two namespaces never mix.
func NewResetToken() string {
	return uuid.NewString()
}
