package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/eventsplit/internal/models"
)

func TestEqualSplitShares(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []string
	}{
		{"single", 500, []string{"A"}},
		{"three", 30000, []string{"A", "B", "C"}},
		{"seven odd", 10001, []string{"A", "B", "C", "D", "E", "F", "G"}},
		{"fractional", 0.1, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := EqualSplit{}.Shares(tt.amount, tt.participants)
			if len(shares) != len(tt.participants) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.participants))
			}
			var sum float64
			for _, s := range shares {
				if s != tt.amount/float64(len(tt.participants)) {
					t.Errorf("share = %v, want %v", s, tt.amount/float64(len(tt.participants)))
				}
				sum += s
			}
			if math.Abs(sum-tt.amount) > 1e-9 {
				t.Errorf("sum of shares = %v, want %v", sum, tt.amount)
			}
		})
	}
}

func TestEqualSplitNoParticipants(t *testing.T) {
	if shares := (EqualSplit{}).Shares(100, nil); len(shares) != 0 {
		t.Errorf("expected no shares, got %v", shares)
	}
}

func TestStrategyFor(t *testing.T) {
	for _, mode := range []models.SplitMode{models.SplitEqual, "", "weighted"} {
		if got := StrategyFor(mode).Mode(); got != models.SplitEqual {
			t.Errorf("StrategyFor(%q).Mode() = %q, want equal", mode, got)
		}
	}
	if !IsKnownMode(models.SplitEqual) {
		t.Error("equal should be a known mode")
	}
	if IsKnownMode("weighted") {
		t.Error("weighted should not be a known mode")
	}
}
