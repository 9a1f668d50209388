package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/auth"
	"github.com/mmynk/eventsplit/internal/middleware"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/settle"
	"github.com/mmynk/eventsplit/internal/storage/sqlite"
)

var testRoster = []models.Member{
	{Name: "Alice", PayTo: "bank 111"},
	{Name: "Bob", PayTo: "bank 222"},
	{Name: "Carol"},
}

type testClients struct {
	events     *api.EventServiceClient
	settlement *api.SettlementServiceClient
	auth       *api.AuthServiceClient
	url        string
}

// setupTestServer serves every service over a temp SQLite store. A non-nil
// jwtManager puts the event and settlement services behind RequireAuth.
func setupTestServer(t *testing.T, authenticator auth.Authenticator, jwtManager *auth.JWTManager) testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	core := settle.New(store, settle.WithRoster(testRoster))

	var opts []connect.HandlerOption
	if jwtManager != nil {
		opts = append(opts, connect.WithInterceptors(middleware.RequireAuth(jwtManager)))
	}
	if authenticator == nil {
		authenticator, _ = auth.NewSharedPassword("", "")
	}
	if jwtManager == nil {
		jwtManager = auth.NewJWTManager("test-secret", time.Hour)
	}

	mux := http.NewServeMux()
	mux.Handle(api.NewEventServiceHandler(NewEventService(core), opts...))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(core), opts...))
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, slog.Default())))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return testClients{
		events:     api.NewEventServiceClient(http.DefaultClient, server.URL),
		settlement: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		auth:       api.NewAuthServiceClient(http.DefaultClient, server.URL),
		url:        server.URL,
	}
}

func createTestEvent(t *testing.T, c testClients) string {
	t.Helper()
	resp, err := c.events.CreateEvent(context.Background(), connect.NewRequest(&api.CreateEventRequest{
		Title: "Jeju trip",
		Start: "2024-05-01",
		End:   "2024-05-03",
	}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return resp.Msg.Event.ID
}

func addExpense(t *testing.T, c testClients, eventID string, req *api.AddExpenseRequest) models.Expense {
	t.Helper()
	req.EventID = eventID
	resp, err := c.events.AddExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
