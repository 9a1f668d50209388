// Package storagetest holds the conformance tests every storage.Store
// backend must pass.
package storagetest

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

var testRoster = []models.Member{
	{Name: "Alice", PayTo: "KakaoPay: alice"},
	{Name: "Bob", PayTo: ""},
	{Name: "민우", PayTo: "국민 123-45-67890"},
}

func testEvent(title string) models.Event {
	return models.Event{
		ID:        models.EventID("2024-05-03", "2024-05-05", title),
		Title:     title,
		Start:     "2024-05-03",
		End:       "2024-05-05",
		CreatedAt: "2024-05-01",
	}
}

// Run executes the conformance suite against stores created by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("CreateEvent seeds roster and empty ledger", func(t *testing.T) {
		s := open(t)
		ev := testEvent("Jeju trip")
		if err := s.CreateEvent(ctx, ev, testRoster); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		got, err := s.GetEvent(ctx, ev.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got != ev {
			t.Errorf("GetEvent = %+v, want %+v", got, ev)
		}

		members, err := s.LoadMembers(ctx, ev.ID)
		if err != nil {
			t.Fatalf("LoadMembers failed: %v", err)
		}
		if !slices.Equal(members, testRoster) {
			t.Errorf("members = %+v, want %+v", members, testRoster)
		}

		expenses, err := s.LoadExpenses(ctx, ev.ID)
		if err != nil {
			t.Fatalf("LoadExpenses failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expected empty ledger, got %d expenses", len(expenses))
		}
	})

	t.Run("re-creating an event keeps members and expenses", func(t *testing.T) {
		s := open(t)
		ev := testEvent("MT")
		if err := s.CreateEvent(ctx, ev, testRoster); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		custom := []models.Member{{Name: "Only", PayTo: "cash"}}
		if err := s.SaveMembers(ctx, ev.ID, custom); err != nil {
			t.Fatalf("SaveMembers failed: %v", err)
		}
		exp := []models.Expense{sampleExpense("0001_dinner_30000")}
		if err := s.SaveExpenses(ctx, ev.ID, exp); err != nil {
			t.Fatalf("SaveExpenses failed: %v", err)
		}

		again := ev
		again.CreatedAt = "2024-06-01"
		if err := s.CreateEvent(ctx, again, testRoster); err != nil {
			t.Fatalf("second CreateEvent failed: %v", err)
		}

		got, err := s.GetEvent(ctx, ev.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.CreatedAt != "2024-06-01" {
			t.Errorf("metadata not overwritten: %+v", got)
		}
		members, _ := s.LoadMembers(ctx, ev.ID)
		if !slices.Equal(members, custom) {
			t.Errorf("members overwritten on re-creation: %+v", members)
		}
		expenses, _ := s.LoadExpenses(ctx, ev.ID)
		if len(expenses) != 1 || expenses[0].ID != "0001_dinner_30000" {
			t.Errorf("expenses overwritten on re-creation: %+v", expenses)
		}
	})

	t.Run("ListEvents returns created events", func(t *testing.T) {
		s := open(t)
		for _, title := range []string{"one", "two"} {
			if err := s.CreateEvent(ctx, testEvent(title), nil); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
		}
		events, err := s.ListEvents(ctx)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("ListEvents returned %d events, want 2", len(events))
		}
		ids := []string{events[0].ID, events[1].ID}
		slices.Sort(ids)
		if ids[0] != testEvent("one").ID || ids[1] != testEvent("two").ID {
			t.Errorf("unexpected ids %v", ids)
		}
	})

	t.Run("GetEvent on missing event", func(t *testing.T) {
		s := open(t)
		if _, err := s.GetEvent(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetEvent error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing lists load empty", func(t *testing.T) {
		s := open(t)
		members, err := s.LoadMembers(ctx, "nope")
		if err != nil || len(members) != 0 {
			t.Errorf("LoadMembers = %v, %v; want empty, nil", members, err)
		}
		expenses, err := s.LoadExpenses(ctx, "nope")
		if err != nil || len(expenses) != 0 {
			t.Errorf("LoadExpenses = %v, %v; want empty, nil", expenses, err)
		}
	})

	t.Run("DeleteEvent removes everything", func(t *testing.T) {
		s := open(t)
		ev := testEvent("gone")
		if err := s.CreateEvent(ctx, ev, testRoster); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		ref, err := s.SaveReceipt(ctx, ev.ID, "0001_x_1", "r.jpg", []byte("img"))
		if err != nil {
			t.Fatalf("SaveReceipt failed: %v", err)
		}

		removed, err := s.DeleteEvent(ctx, ev.ID)
		if err != nil || !removed {
			t.Fatalf("DeleteEvent = %v, %v; want true, nil", removed, err)
		}
		if _, err := s.GetEvent(ctx, ev.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("event still present after delete: %v", err)
		}
		if members, _ := s.LoadMembers(ctx, ev.ID); len(members) != 0 {
			t.Errorf("members survived delete: %+v", members)
		}
		if _, err := s.OpenReceipt(ctx, ev.ID, ref); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("receipt survived delete: %v", err)
		}

		removed, err = s.DeleteEvent(ctx, ev.ID)
		if err != nil || removed {
			t.Errorf("second DeleteEvent = %v, %v; want false, nil", removed, err)
		}
	})

	t.Run("DeleteEvent of unknown event reports nothing removed", func(t *testing.T) {
		s := open(t)
		removed, err := s.DeleteEvent(ctx, "2000-01-01_2000-01-02_never")
		if err != nil || removed {
			t.Errorf("DeleteEvent = %v, %v; want false, nil", removed, err)
		}
	})

	t.Run("members round-trip", func(t *testing.T) {
		s := open(t)
		ev := testEvent("members")
		if err := s.CreateEvent(ctx, ev, nil); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		for _, list := range [][]models.Member{
			testRoster,
			{{Name: "Zed"}, {Name: "Amy", PayTo: "Toss 1"}},
			{},
		} {
			if err := s.SaveMembers(ctx, ev.ID, list); err != nil {
				t.Fatalf("SaveMembers failed: %v", err)
			}
			got, err := s.LoadMembers(ctx, ev.ID)
			if err != nil {
				t.Fatalf("LoadMembers failed: %v", err)
			}
			if !slices.Equal(got, list) {
				t.Errorf("LoadMembers = %+v, want %+v", got, list)
			}
		}
	})

	t.Run("expenses round-trip and keep split mode verbatim", func(t *testing.T) {
		s := open(t)
		ev := testEvent("expenses")
		if err := s.CreateEvent(ctx, ev, nil); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		first := sampleExpense("0001_dinner_30000")
		second := sampleExpense("0002_hotel_90000")
		second.SplitMode = "weighted"
		second.Amount = 90000.5
		second.Participants = []string{"Bob", "Alice"}
		second.ReceiptPaths = nil
		second.Note = ""
		want := []models.Expense{first, second}

		if err := s.SaveExpenses(ctx, ev.ID, want); err != nil {
			t.Fatalf("SaveExpenses failed: %v", err)
		}
		got, err := s.LoadExpenses(ctx, ev.ID)
		if err != nil {
			t.Fatalf("LoadExpenses failed: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d expenses, want %d", len(got), len(want))
		}
		for i := range want {
			if !EqualExpense(got[i], want[i]) {
				t.Errorf("expense %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("last write wins between interleaved writers", func(t *testing.T) {
		s := open(t)
		ev := testEvent("race")
		if err := s.CreateEvent(ctx, ev, testRoster); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		// Both writers read the same snapshot before either writes.
		a, _ := s.LoadMembers(ctx, ev.ID)
		b, _ := s.LoadMembers(ctx, ev.ID)
		a = append(a, models.Member{Name: "FromA"})
		b = append(b, models.Member{Name: "FromB"})
		if err := s.SaveMembers(ctx, ev.ID, a); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveMembers(ctx, ev.ID, b); err != nil {
			t.Fatal(err)
		}

		got, _ := s.LoadMembers(ctx, ev.ID)
		if !slices.Equal(got, b) {
			t.Errorf("members = %+v, want the second writer's list %+v", got, b)
		}
		if slices.ContainsFunc(got, func(m models.Member) bool { return m.Name == "FromA" }) {
			t.Errorf("first writer's update should be lost")
		}
	})

	t.Run("receipts are stored verbatim", func(t *testing.T) {
		s := open(t)
		ev := testEvent("receipts")
		if err := s.CreateEvent(ctx, ev, nil); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		payload := []byte{0xff, 0xd8, 0xff, 0x00, 0x01, 'j', 'p', 'g'}
		ref, err := s.SaveReceipt(ctx, ev.ID, "0001_dinner_30000", "a1b2.jpg", payload)
		if err != nil {
			t.Fatalf("SaveReceipt failed: %v", err)
		}
		if ref != "receipts/0001_dinner_30000/a1b2.jpg" {
			t.Errorf("ref = %q", ref)
		}
		other, err := s.SaveReceipt(ctx, ev.ID, "0001_dinner_30000", "c3d4.png", []byte("png"))
		if err != nil {
			t.Fatalf("second SaveReceipt failed: %v", err)
		}

		for r, want := range map[string][]byte{ref: payload, other: []byte("png")} {
			rc, err := s.OpenReceipt(ctx, ev.ID, r)
			if err != nil {
				t.Fatalf("OpenReceipt(%s) failed: %v", r, err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read receipt: %v", err)
			}
			if !slices.Equal(data, want) {
				t.Errorf("receipt %s = %v, want %v", r, data, want)
			}
		}

		if _, err := s.OpenReceipt(ctx, ev.ID, "receipts/0001_dinner_30000/missing.jpg"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("OpenReceipt missing = %v, want ErrNotFound", err)
		}
		if _, err := s.OpenReceipt(ctx, ev.ID, "../../etc/passwd"); !errors.Is(err, storage.ErrInvalidID) {
			t.Errorf("OpenReceipt traversal = %v, want ErrInvalidID", err)
		}
	})
}

func sampleExpense(id string) models.Expense {
	return models.Expense{
		ID:           id,
		Payer:        "Alice",
		Item:         "dinner",
		Amount:       30000,
		Participants: []string{"Alice", "Bob", "민우"},
		SplitMode:    models.SplitEqual,
		Note:         "samgyeopsal",
		ReceiptPaths: []string{"receipts/" + id + "/a.jpg"},
		CreatedAt:    "2024-05-03",
	}
}

// EqualExpense compares expenses treating nil and empty slices as equal.
func EqualExpense(a, b models.Expense) bool {
	return a.ID == b.ID &&
		a.Payer == b.Payer &&
		a.Item == b.Item &&
		a.Amount == b.Amount &&
		slices.Equal(a.Participants, b.Participants) &&
		a.SplitMode == b.SplitMode &&
		a.Note == b.Note &&
		slices.Equal(a.ReceiptPaths, b.ReceiptPaths) &&
		a.CreatedAt == b.CreatedAt
}
