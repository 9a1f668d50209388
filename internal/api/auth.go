package api

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "eventsplit.v1.AuthService"

// AuthService procedure paths.
const (
	AuthServiceLoginProcedure  = "/eventsplit.v1.AuthService/Login"
	AuthServiceStatusProcedure = "/eventsplit.v1.AuthService/Status"
)

type LoginRequest struct {
	Password string `json:"password"`
	// Client is a free-text label recorded as the session subject.
	Client string `json:"client,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
	// ExpiresAt is RFC 3339; empty when the gate is disabled.
	ExpiresAt string `json:"expires_at,omitempty"`
}

type StatusRequest struct{}

type StatusResponse struct {
	// PasswordRequired tells clients whether to call Login first.
	PasswordRequired bool `json:"password_required"`
}
