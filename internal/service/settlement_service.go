package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/export"
	"github.com/mmynk/eventsplit/internal/settle"
)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	core *settle.Service
}

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService over the core service.
func NewSettlementService(core *settle.Service) *SettlementService {
	return &SettlementService{core: core}
}

// GetMatrix computes the settlement matrix.
func (s *SettlementService) GetMatrix(ctx context.Context, req *connect.Request[api.GetMatrixRequest]) (*connect.Response[api.GetMatrixResponse], error) {
	m, err := s.core.Matrix(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("GetMatrix failed", "event_id", req.Msg.EventID, "error", err)
		return nil, connectError(err)
	}

	display := export.DisplayRows(m)
	rows := make([]api.MatrixRow, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = api.MatrixRow{
			ExpenseID: r.ExpenseID,
			Payer:     r.Payer,
			Item:      r.Item,
			Amount:    r.Amount,
			Shares:    shares(r.Shares),
			Total:     r.Total,
			Display:   display[i+1],
		}
	}

	slog.Debug("GetMatrix successful", "event_id", req.Msg.EventID, "rows", len(rows))
	return connect.NewResponse(&api.GetMatrixResponse{
		Columns: m.Header(),
		Members: nonNil(m.Members),
		Rows:    rows,
	}), nil
}

func shares(cells []calculator.Cell) []*float64 {
	out := make([]*float64, len(cells))
	for i, c := range cells {
		if c.Assigned {
			v := c.Value
			out[i] = &v
		}
	}
	return out
}

// GetBalances returns per-member balances and a transfer plan.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	st, err := s.core.Settle(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("GetBalances failed", "event_id", req.Msg.EventID, "error", err)
		return nil, connectError(err)
	}

	balances := make([]api.Balance, len(st.Balances))
	for i, b := range st.Balances {
		balances[i] = api.Balance{
			Name:       b.Name,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
			NetBalance: b.NetBalance,
			PayTo:      b.PayTo,
			OnRoster:   b.OnRoster,
		}
	}
	transfers := make([]api.Transfer, len(st.Transfers))
	for i, t := range st.Transfers {
		transfers[i] = api.Transfer{From: t.From, To: t.To, Amount: t.Amount, PayTo: t.PayTo}
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:  balances,
		Transfers: transfers,
	}), nil
}

// Reconcile lists expense names that are not on the roster.
func (s *SettlementService) Reconcile(ctx context.Context, req *connect.Request[api.ReconcileRequest]) (*connect.Response[api.ReconcileResponse], error) {
	st, err := s.core.Settle(ctx, req.Msg.EventID)
	if err != nil {
		return nil, connectError(err)
	}

	dangling := make([]api.DanglingName, len(st.Dangling))
	for i, d := range st.Dangling {
		dangling[i] = api.DanglingName{
			Name:       d.Name,
			ExpenseIDs: d.ExpenseIDs,
			AsPayer:    d.AsPayer,
			Suggestion: d.Suggestion,
		}
	}
	return connect.NewResponse(&api.ReconcileResponse{Dangling: dangling}), nil
}
