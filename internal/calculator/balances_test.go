package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/eventsplit/internal/models"
)

func TestCalculateBalances(t *testing.T) {
	roster := []models.Member{
		{Name: "Alice", PayTo: "KakaoPay: alice"},
		{Name: "Bob", PayTo: "KB 123"},
		{Name: "Charlie"},
	}

	tests := []struct {
		name          string
		expenses      []models.Expense
		wantNet       map[string]float64
		wantTransfers []Transfer
	}{
		{
			name: "one payer covers everyone",
			expenses: []models.Expense{
				{Payer: "Alice", Amount: 30000, Participants: []string{"Alice", "Bob", "Charlie"}},
			},
			wantNet: map[string]float64{"Alice": 20000, "Bob": -10000, "Charlie": -10000},
			wantTransfers: []Transfer{
				{From: "Bob", To: "Alice", Amount: 10000, PayTo: "KakaoPay: alice"},
				{From: "Charlie", To: "Alice", Amount: 10000, PayTo: "KakaoPay: alice"},
			},
		},
		{
			name: "two payers partially offset",
			expenses: []models.Expense{
				{Payer: "Alice", Amount: 60, Participants: []string{"Alice", "Bob", "Charlie"}},
				{Payer: "Bob", Amount: 30, Participants: []string{"Alice", "Bob", "Charlie"}},
			},
			wantNet: map[string]float64{"Alice": 30, "Bob": 0, "Charlie": -30},
			wantTransfers: []Transfer{
				{From: "Charlie", To: "Alice", Amount: 30, PayTo: "KakaoPay: alice"},
			},
		},
		{
			name: "guest payer appears after the roster",
			expenses: []models.Expense{
				{Payer: "Guest", Amount: 20, Participants: []string{"Alice", "Bob"}},
			},
			wantNet: map[string]float64{"Alice": -10, "Bob": -10, "Charlie": 0, "Guest": 20},
			wantTransfers: []Transfer{
				{From: "Alice", To: "Guest", Amount: 10},
				{From: "Bob", To: "Guest", Amount: 10},
			},
		},
		{
			name:          "no expenses",
			wantNet:       map[string]float64{"Alice": 0, "Bob": 0, "Charlie": 0},
			wantTransfers: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, transfers := CalculateBalances(tt.expenses, roster)
			if len(balances) != len(tt.wantNet) {
				t.Fatalf("got %d balances, want %d", len(balances), len(tt.wantNet))
			}
			for i, m := range roster {
				if balances[i].Name != m.Name {
					t.Errorf("balance %d = %s, want roster order %s", i, balances[i].Name, m.Name)
				}
			}
			for _, b := range balances {
				want, ok := tt.wantNet[b.Name]
				if !ok {
					t.Errorf("unexpected balance for %s", b.Name)
					continue
				}
				if math.Abs(b.NetBalance-want) > 0.01 {
					t.Errorf("%s net = %v, want %v", b.Name, b.NetBalance, want)
				}
			}
			if len(transfers) != len(tt.wantTransfers) {
				t.Fatalf("transfers = %+v, want %+v", transfers, tt.wantTransfers)
			}
			for i, want := range tt.wantTransfers {
				got := transfers[i]
				if got.From != want.From || got.To != want.To || got.PayTo != want.PayTo || math.Abs(got.Amount-want.Amount) > 0.01 {
					t.Errorf("transfer %d = %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestReconcile(t *testing.T) {
	roster := []string{"Minwoo", "Jinju", "Taehyung"}
	expenses := []models.Expense{
		{ID: "0001_a_1", Payer: "Minwoo", Participants: []string{"Minwoo", "Jinjuu"}},
		{ID: "0002_b_1", Payer: "Visitor", Participants: []string{"Jinju", "Jinjuu", "Someone Else Entirely"}},
	}

	got := Reconcile(expenses, roster)
	if len(got) != 3 {
		t.Fatalf("got %d dangling names, want 3: %+v", len(got), got)
	}

	byName := map[string]DanglingName{}
	for _, d := range got {
		byName[d.Name] = d
	}

	jinjuu := byName["Jinjuu"]
	if jinjuu.Suggestion != "Jinju" {
		t.Errorf("Jinjuu suggestion = %q, want Jinju", jinjuu.Suggestion)
	}
	if len(jinjuu.ExpenseIDs) != 2 || jinjuu.AsPayer {
		t.Errorf("Jinjuu = %+v", jinjuu)
	}

	visitor := byName["Visitor"]
	if !visitor.AsPayer || len(visitor.ExpenseIDs) != 0 {
		t.Errorf("Visitor = %+v, want payer-only", visitor)
	}

	if s := byName["Someone Else Entirely"].Suggestion; s != "" {
		t.Errorf("far-off name should have no suggestion, got %q", s)
	}

	// Reconcile never modifies expenses.
	if len(expenses[0].Participants) != 2 || expenses[0].Participants[1] != "Jinjuu" {
		t.Errorf("expenses were modified: %+v", expenses[0])
	}
}
