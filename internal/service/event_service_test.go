package service

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/models"
)

func TestCreateEvent(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()

	id := createTestEvent(t, c)
	if want := models.EventID("2024-05-01", "2024-05-03", "Jeju trip"); id != want {
		t.Errorf("expected id %q, got %q", want, id)
	}

	members, err := c.events.ListMembers(ctx, connect.NewRequest(&api.ListMembersRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members.Msg.Members) != len(testRoster) {
		t.Errorf("expected %d seeded members, got %d", len(testRoster), len(members.Msg.Members))
	}

	expenses, err := c.events.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if expenses.Msg.Expenses == nil || len(expenses.Msg.Expenses) != 0 {
		t.Errorf("expected empty ledger, got %v", expenses.Msg.Expenses)
	}
}

func TestCreateEventKeepsExistingData(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()

	id := createTestEvent(t, c)
	addExpense(t, c, id, &api.AddExpenseRequest{
		Payer: "Alice", Item: "Dinner", Amount: 30000,
		Participants: []string{"Alice", "Bob", "Carol"},
	})
	if _, err := c.events.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{EventID: id, Name: "Carol"})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	if again := createTestEvent(t, c); again != id {
		t.Fatalf("expected same id on re-creation, got %q", again)
	}

	expenses, err := c.events.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses.Msg.Expenses) != 1 {
		t.Errorf("expected expense to survive re-creation, got %d", len(expenses.Msg.Expenses))
	}
	members, err := c.events.ListMembers(ctx, connect.NewRequest(&api.ListMembersRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members.Msg.Members) != 2 {
		t.Errorf("expected edited roster to survive re-creation, got %v", members.Msg.Members)
	}
}

func TestListAndGetEvents(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()

	id := createTestEvent(t, c)

	list, err := c.events.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{}))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(list.Msg.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(list.Msg.Events))
	}
	if want := "2024-05-01~2024-05-03 | Jeju trip"; list.Msg.Events[0].Label != want {
		t.Errorf("expected label %q, got %q", want, list.Msg.Events[0].Label)
	}

	got, err := c.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: id}))
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Msg.Event.Title != "Jeju trip" {
		t.Errorf("expected title 'Jeju trip', got %q", got.Msg.Event.Title)
	}

	_, err = c.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = c.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: "../etc"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteEvent(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()

	id := createTestEvent(t, c)

	resp, err := c.events.DeleteEvent(ctx, connect.NewRequest(&api.DeleteEventRequest{EventID: id}))
	if err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if !resp.Msg.Deleted {
		t.Error("expected Deleted=true")
	}

	resp, err = c.events.DeleteEvent(ctx, connect.NewRequest(&api.DeleteEventRequest{EventID: id}))
	if err != nil {
		t.Fatalf("second DeleteEvent failed: %v", err)
	}
	if resp.Msg.Deleted {
		t.Error("expected Deleted=false for a missing event")
	}

	_, err = c.events.ListMembers(ctx, connect.NewRequest(&api.ListMembersRequest{EventID: id}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestMemberEdits(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()
	id := createTestEvent(t, c)

	saved, err := c.events.SaveMembers(ctx, connect.NewRequest(&api.SaveMembersRequest{
		EventID: id,
		Members: []models.Member{
			{Name: " Dave ", PayTo: "toss"},
			{Name: ""},
			{Name: "Dave", PayTo: "duplicate"},
			{Name: "Erin"},
		},
	}))
	if err != nil {
		t.Fatalf("SaveMembers failed: %v", err)
	}
	want := []models.Member{{Name: "Dave", PayTo: "toss"}, {Name: "Erin"}}
	if len(saved.Msg.Members) != len(want) {
		t.Fatalf("expected %v, got %v", want, saved.Msg.Members)
	}
	for i := range want {
		if saved.Msg.Members[i] != want[i] {
			t.Errorf("member %d: expected %v, got %v", i, want[i], saved.Msg.Members[i])
		}
	}

	tests := []struct {
		name string
		call func() error
		code connect.Code
	}{
		{
			name: "add duplicate",
			call: func() error {
				_, err := c.events.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{EventID: id, Member: models.Member{Name: "Erin"}}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "add blank",
			call: func() error {
				_, err := c.events.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{EventID: id, Member: models.Member{Name: "  "}}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "update missing",
			call: func() error {
				_, err := c.events.UpdateMember(ctx, connect.NewRequest(&api.UpdateMemberRequest{EventID: id, Name: "Zed", Member: models.Member{Name: "Zed"}}))
				return err
			},
			code: connect.CodeNotFound,
		},
		{
			name: "rename onto existing",
			call: func() error {
				_, err := c.events.UpdateMember(ctx, connect.NewRequest(&api.UpdateMemberRequest{EventID: id, Name: "Dave", Member: models.Member{Name: "Erin"}}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.call(), tt.code)
		})
	}

	updated, err := c.events.UpdateMember(ctx, connect.NewRequest(&api.UpdateMemberRequest{
		EventID: id,
		Name:    "Erin",
		Member:  models.Member{Name: "Erin", PayTo: "kakao"},
	}))
	if err != nil {
		t.Fatalf("UpdateMember failed: %v", err)
	}
	if updated.Msg.Member.PayTo != "kakao" {
		t.Errorf("expected pay_to 'kakao', got %q", updated.Msg.Member.PayTo)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()
	id := createTestEvent(t, c)

	tests := []struct {
		name string
		req  *api.AddExpenseRequest
		code connect.Code
	}{
		{
			name: "missing payer",
			req:  &api.AddExpenseRequest{Item: "Taxi", Amount: 100, Participants: []string{"Alice"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "zero amount",
			req:  &api.AddExpenseRequest{Payer: "Alice", Item: "Taxi", Participants: []string{"Alice"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "no participants",
			req:  &api.AddExpenseRequest{Payer: "Alice", Item: "Taxi", Amount: 100},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown split mode",
			req: &api.AddExpenseRequest{
				Payer: "Alice", Item: "Taxi", Amount: 100,
				Participants: []string{"Alice"}, SplitMode: "weighted",
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "receipt with bad extension",
			req: &api.AddExpenseRequest{
				Payer: "Alice", Item: "Taxi", Amount: 100, Participants: []string{"Alice"},
				Receipts: []api.ReceiptUpload{{Name: "receipt.exe", Data: []byte("MZ")}},
			},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.EventID = id
			_, err := c.events.AddExpense(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}

	_, err := c.events.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		EventID: "missing", Payer: "Alice", Item: "Taxi", Amount: 100, Participants: []string{"Alice"},
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestExpenseLifecycle(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	ctx := context.Background()
	id := createTestEvent(t, c)

	first := addExpense(t, c, id, &api.AddExpenseRequest{
		Payer: "Alice", Item: "Dinner", Amount: 30000,
		Participants: []string{"Alice", "Bob", "Carol"},
		Receipts:     []api.ReceiptUpload{{Name: "bill.png", Data: []byte("png-bytes")}},
	})
	if first.SplitMode != models.SplitEqual {
		t.Errorf("expected default split mode %q, got %q", models.SplitEqual, first.SplitMode)
	}
	if len(first.ReceiptPaths) != 1 {
		t.Fatalf("expected 1 receipt path, got %v", first.ReceiptPaths)
	}
	second := addExpense(t, c, id, &api.AddExpenseRequest{
		Payer: "Bob", Item: "Taxi", Amount: 9000,
		Participants: []string{"Alice", "Bob"},
	})

	receipts, err := c.events.ListReceipts(ctx, connect.NewRequest(&api.ListReceiptsRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	if len(receipts.Msg.Expenses) != 1 || receipts.Msg.Expenses[0].ID != first.ID {
		t.Errorf("expected only %q to have receipts, got %v", first.ID, receipts.Msg.Expenses)
	}

	removed, err := c.events.RemoveExpense(ctx, connect.NewRequest(&api.RemoveExpenseRequest{EventID: id, Index: 0}))
	if err != nil {
		t.Fatalf("RemoveExpense failed: %v", err)
	}
	if removed.Msg.Expense.ID != first.ID {
		t.Errorf("expected to remove %q, got %q", first.ID, removed.Msg.Expense.ID)
	}

	list, err := c.events.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{EventID: id}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 || list.Msg.Expenses[0].ID != second.ID {
		t.Errorf("expected only %q left, got %v", second.ID, list.Msg.Expenses)
	}

	_, err = c.events.RemoveExpense(ctx, connect.NewRequest(&api.RemoveExpenseRequest{EventID: id, Index: 5}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestPlainJSONRequest(t *testing.T) {
	c := setupTestServer(t, nil, nil)
	createTestEvent(t, c)

	req, err := http.NewRequest(http.MethodPost, c.url+api.EventServiceListEventsProcedure, bytes.NewBufferString("{}"))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}
