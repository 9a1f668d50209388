package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/auth"
)

func setupAuthServer(t *testing.T) testClients {
	t.Helper()
	authenticator, err := auth.NewSharedPassword("correct-horse", "")
	if err != nil {
		t.Fatalf("NewSharedPassword failed: %v", err)
	}
	return setupTestServer(t, authenticator, auth.NewJWTManager("test-secret", time.Hour))
}

func TestLogin(t *testing.T) {
	c := setupAuthServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		code     connect.Code
	}{
		{name: "empty password", password: "", code: connect.CodeInvalidArgument},
		{name: "wrong password", password: "battery-staple", code: connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Password: tt.password}))
			assertCode(t, err, tt.code)
		})
	}

	resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Password: "correct-horse", Client: "test"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Msg.Token == "" || resp.Msg.ExpiresAt == "" {
		t.Errorf("expected token and expiry, got %+v", resp.Msg)
	}

	status, err := c.auth.Status(ctx, connect.NewRequest(&api.StatusRequest{}))
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Msg.PasswordRequired {
		t.Error("expected PasswordRequired=true")
	}
}

func TestProtectedServices(t *testing.T) {
	c := setupAuthServer(t)
	ctx := context.Background()

	_, err := c.events.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Password: "correct-horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	authed := api.NewEventServiceClient(http.DefaultClient, c.url,
		connect.WithInterceptors(api.BearerToken(login.Msg.Token)))
	if _, err := authed.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{})); err != nil {
		t.Errorf("ListEvents with token failed: %v", err)
	}

	forged := api.NewEventServiceClient(http.DefaultClient, c.url,
		connect.WithInterceptors(api.BearerToken("not-a-token")))
	_, err = forged.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestLoginWithoutPassword(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()

	resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Msg.Token != "" {
		t.Errorf("expected empty token when no password is configured, got %q", resp.Msg.Token)
	}

	status, err := c.auth.Status(ctx, connect.NewRequest(&api.StatusRequest{}))
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Msg.PasswordRequired {
		t.Error("expected PasswordRequired=false")
	}
}
