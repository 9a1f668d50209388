package settle

import (
	"context"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/models"
)

// Settlement is everything needed to present one event's settlement.
type Settlement struct {
	Event     models.Event
	Members   []models.Member
	Expenses  []models.Expense
	Matrix    calculator.Matrix
	Balances  []calculator.MemberBalance
	Transfers []calculator.Transfer
	Dangling  []calculator.DanglingName
}

// Matrix computes the settlement matrix for the current roster.
func (s *Service) Matrix(ctx context.Context, eventID string) (calculator.Matrix, error) {
	st, err := s.Settle(ctx, eventID)
	if err != nil {
		return calculator.Matrix{}, err
	}
	return st.Matrix, nil
}

// Settle loads the event and runs every settlement computation over it.
func (s *Service) Settle(ctx context.Context, eventID string) (Settlement, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return Settlement{}, err
	}
	members, err := s.store.LoadMembers(ctx, eventID)
	if err != nil {
		return Settlement{}, err
	}
	expenses, err := s.store.LoadExpenses(ctx, eventID)
	if err != nil {
		return Settlement{}, err
	}

	names := models.MemberNames(members)
	balances, transfers := calculator.CalculateBalances(expenses, members)
	s.logger.Debug("Computed settlement",
		"event_id", eventID,
		"expenses", len(expenses),
		"members", len(members),
		"transfers", len(transfers),
	)
	return Settlement{
		Event:     event,
		Members:   members,
		Expenses:  expenses,
		Matrix:    calculator.ComputeMatrix(expenses, names),
		Balances:  balances,
		Transfers: transfers,
		Dangling:  calculator.Reconcile(expenses, names),
	}, nil
}
