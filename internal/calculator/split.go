package calculator

import (
	"github.com/mmynk/eventsplit/internal/models"
)

// SplitStrategy divides an expense amount among its participants.
// Shares returns one share per participant, aligned with participants.
type SplitStrategy interface {
	Mode() models.SplitMode
	Shares(amount float64, participants []string) []float64
}

// EqualSplit gives every participant amount / max(1, len(participants)).
type EqualSplit struct{}

// Mode implements SplitStrategy.
func (EqualSplit) Mode() models.SplitMode { return models.SplitEqual }

// Shares implements SplitStrategy. No rounding is applied; the shares of a
// non-empty participant list sum to amount up to floating point error.
func (EqualSplit) Shares(amount float64, participants []string) []float64 {
	n := len(participants)
	if n < 1 {
		n = 1
	}
	per := amount / float64(n)
	shares := make([]float64, len(participants))
	for i := range shares {
		shares[i] = per
	}
	return shares
}

var strategies = map[models.SplitMode]SplitStrategy{
	models.SplitEqual: EqualSplit{},
}

// StrategyFor returns the strategy registered for mode. Unknown or empty
// modes fall back to EqualSplit; the stored mode value is left untouched.
func StrategyFor(mode models.SplitMode) SplitStrategy {
	if s, ok := strategies[mode]; ok {
		return s
	}
	return EqualSplit{}
}

// IsKnownMode reports whether mode has a registered strategy.
func IsKnownMode(mode models.SplitMode) bool {
	_, ok := strategies[mode]
	return ok
}
