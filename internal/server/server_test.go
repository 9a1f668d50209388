package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/goleak"
	"golang.org/x/net/http2"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/auth"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/settle"
	"github.com/mmynk/eventsplit/internal/storage/filestore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	core   *settle.Service
	srv    *Server
	url    string
	client *http.Client
}

func setup(t *testing.T, opts ...Option) testEnv {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	core := settle.New(store, settle.WithRoster([]models.Member{
		{Name: "Alice", PayTo: "bank 111"},
		{Name: "Bob"},
	}))

	srv := New(core, opts...)
	ts := httptest.NewServer(srv.Handler())
	client := &http.Client{Transport: &http.Transport{}}
	t.Cleanup(func() {
		client.CloseIdleConnections()
		ts.Close()
		store.Close()
	})

	return testEnv{core: core, srv: srv, url: ts.URL, client: client}
}

func seedEvent(t *testing.T, core *settle.Service) string {
	t.Helper()
	ctx := context.Background()
	id, err := core.CreateEvent(ctx, "Jeju trip", "2024-05-01", "2024-05-03")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	_, err = core.AddExpense(ctx, id, settle.ExpenseInput{
		Payer:        "Alice",
		Item:         "Dinner",
		Amount:       30000,
		Participants: []string{"Alice", "Bob"},
		Receipts:     []settle.ReceiptUpload{{Name: "bill.png", Data: []byte("png-bytes")}},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return id
}

func get(t *testing.T, env testEnv, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.url+path, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestExportDownload(t *testing.T) {
	env := setup(t)
	id := seedEvent(t, env.core)

	resp := get(t, env, "/export/"+id+"?format=csv", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "2024-05-01_2024-05-03_settlement.csv") {
		t.Errorf("expected settlement file name in %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "\ufeffpayer,item,amount,Alice,Bob\nAlice,Dinner,30000,15000,15000\nTOTAL,,30000,15000,15000\n"
	if string(body) != want {
		t.Errorf("unexpected CSV:\n%q\nwant\n%q", body, want)
	}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "xlsx", path: "/export/" + id + "?format=xlsx", status: http.StatusOK},
		{name: "unknown format", path: "/export/" + id + "?format=docx", status: http.StatusBadRequest},
		{name: "unknown event", path: "/export/nope?format=csv", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(t, env, tt.path, "").StatusCode; got != tt.status {
				t.Errorf("expected %d, got %d", tt.status, got)
			}
		})
	}
}

func TestReceiptDownload(t *testing.T) {
	env := setup(t)
	id := seedEvent(t, env.core)

	expenses, err := env.core.Receipts(context.Background(), id, "")
	if err != nil || len(expenses) != 1 {
		t.Fatalf("expected one expense with receipts, got %v (%v)", expenses, err)
	}
	ref := expenses[0].ReceiptPaths[0]

	resp := get(t, env, "/"+strings.Replace(ref, "receipts/", "receipts/"+id+"/", 1), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, []byte("png-bytes")) {
		t.Errorf("unexpected receipt body %q", body)
	}

	if got := get(t, env, "/receipts/"+id+"/"+expenses[0].ID+"/missing.png", "").StatusCode; got != http.StatusNotFound {
		t.Errorf("expected 404 for a missing receipt, got %d", got)
	}
}

func TestAccessGate(t *testing.T) {
	authenticator, err := auth.NewSharedPassword("correct-horse", "")
	if err != nil {
		t.Fatalf("NewSharedPassword failed: %v", err)
	}
	env := setup(t, WithAuth(authenticator, auth.NewJWTManager("test-secret", time.Hour)))
	id := seedEvent(t, env.core)
	ctx := context.Background()

	if got := get(t, env, "/export/"+id, "").StatusCode; got != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", got)
	}

	events := api.NewEventServiceClient(env.client, env.url)
	_, err = events.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}

	login, err := api.NewAuthServiceClient(env.client, env.url).Login(ctx,
		connect.NewRequest(&api.LoginRequest{Password: "correct-horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := login.Msg.Token

	if got := get(t, env, "/export/"+id, token).StatusCode; got != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", got)
	}
	authed := api.NewEventServiceClient(env.client, env.url, connect.WithInterceptors(api.BearerToken(token)))
	resp, err := authed.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{}))
	if err != nil {
		t.Fatalf("ListEvents with token failed: %v", err)
	}
	if len(resp.Msg.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(resp.Msg.Events))
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setup(t)

	req, err := http.NewRequest(http.MethodOptions, env.url+api.EventServiceListEventsProcedure, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Errorf("expected Authorization in allowed headers, got %q", resp.Header.Get("Access-Control-Allow-Headers"))
	}
}

func TestMetrics(t *testing.T) {
	env := setup(t)
	seedEvent(t, env.core)

	events := api.NewEventServiceClient(env.client, env.url)
	if _, err := events.ListEvents(context.Background(), connect.NewRequest(&api.ListEventsRequest{})); err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}

	rec := httptest.NewRecorder()
	env.srv.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	want := `eventsplit_rpc_requests_total{code="ok",procedure="/eventsplit.v1.EventService/ListEvents"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("expected %q in metrics output", want)
	}
}

func TestPriorKnowledgeH2CWithMetricsOnAPI(t *testing.T) {
	env := setup(t, WithMetricsOnAPI())
	seedEvent(t, env.core)

	transport := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
	client := &http.Client{Transport: transport}
	t.Cleanup(transport.CloseIdleConnections)

	events := api.NewEventServiceClient(client, env.url)
	res, err := events.ListEvents(context.Background(), connect.NewRequest(&api.ListEventsRequest{}))
	if err != nil {
		t.Fatalf("ListEvents over h2c failed: %v", err)
	}
	if len(res.Msg.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(res.Msg.Events))
	}

	resp, err := client.Get(env.url + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics over h2c failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.ProtoMajor != 2 {
		t.Errorf("expected HTTP/2, got %s", resp.Proto)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	want := `eventsplit_rpc_requests_total{code="ok",procedure="/eventsplit.v1.EventService/ListEvents"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("expected %q in metrics output", want)
	}
}

func TestMetricsNotOnAPIByDefault(t *testing.T) {
	env := setup(t)
	resp := get(t, env, "/metrics", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
