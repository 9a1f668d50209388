package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSharedPassword(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	tests := []struct {
		name       string
		plain      string
		hash       string
		credential string
		enabled    bool
		wantErr    bool
	}{
		{name: "disabled accepts anything", credential: "whatever", enabled: false},
		{name: "plain match", plain: "secret", credential: "secret", enabled: true},
		{name: "plain mismatch", plain: "secret", credential: "Secret", enabled: true, wantErr: true},
		{name: "hash match", hash: hash, credential: "correct horse", enabled: true},
		{name: "hash mismatch", hash: hash, credential: "wrong", enabled: true, wantErr: true},
		{name: "hash wins over plain", plain: "secret", hash: hash, credential: "secret", enabled: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewSharedPassword(tt.plain, tt.hash)
			if err != nil {
				t.Fatalf("NewSharedPassword failed: %v", err)
			}
			if a.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", a.Enabled(), tt.enabled)
			}
			err = a.Authenticate(ctx, tt.credential)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Authenticate error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestNewSharedPasswordRejectsBadHash(t *testing.T) {
	if _, err := NewSharedPassword("", "not-a-bcrypt-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("HashPassword = %v, want ErrWeakPassword", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, expires, err := m.Generate("cli")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expiry %v is in the past", expires)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "cli" || claims.Issuer != Issuer {
		t.Errorf("claims = %+v", claims.RegisteredClaims)
	}
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, _, err := m.Generate("cli")
	if err != nil {
		t.Fatal(err)
	}

	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Generate("cli")
	if err != nil {
		t.Fatal(err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	// Flip the first signature character
	dot := strings.LastIndex(token, ".") + 1
	flipped := "A"
	if token[dot] == 'A' {
		flipped = "B"
	}
	tampered := token[:dot] + flipped + token[dot+1:]

	tests := map[string]struct {
		manager *JWTManager
		token   string
	}{
		"wrong secret": {NewJWTManager("other", time.Hour), token},
		"expired":      {m, old},
		"garbage":      {m, "not.a.token"},
		"tampered":     {m, tampered},
		"alg none":     {m, unsigned},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tt.manager.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate = %v, want ErrInvalidToken", err)
			}
		})
	}
}
