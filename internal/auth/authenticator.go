package auth

import (
	"context"
)

// Authenticator verifies the credential presented at login.
// The gate is a single shared credential, so there is no user identity.
type Authenticator interface {
	// Enabled reports whether a credential is configured at all. A disabled
	// authenticator lets every request through.
	Enabled() bool

	// Authenticate returns ErrInvalidCredentials when credential does not
	// match.
	Authenticate(ctx context.Context, credential string) error
}
