package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// SharedPassword implements Authenticator with one password shared by
// everyone using the app. It holds either a bcrypt hash or a plain
// password; the hash wins when both are set.
type SharedPassword struct {
	hash  []byte
	plain []byte
}

// NewSharedPassword creates a shared-password authenticator. With both
// arguments empty the gate is disabled.
func NewSharedPassword(plain, bcryptHash string) (*SharedPassword, error) {
	if bcryptHash != "" {
		if _, err := bcrypt.Cost([]byte(bcryptHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		return &SharedPassword{hash: []byte(bcryptHash)}, nil
	}
	return &SharedPassword{plain: []byte(plain)}, nil
}

// Enabled implements Authenticator.
func (a *SharedPassword) Enabled() bool {
	return len(a.hash) > 0 || len(a.plain) > 0
}

// Authenticate implements Authenticator.
func (a *SharedPassword) Authenticate(ctx context.Context, credential string) error {
	switch {
	case len(a.hash) > 0:
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
			return ErrInvalidCredentials
		}
	case len(a.plain) > 0:
		if subtle.ConstantTimeCompare(a.plain, []byte(credential)) != 1 {
			return ErrInvalidCredentials
		}
	}
	return nil
}

// HashPassword returns the bcrypt hash to put in the passwordHash setting.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
