package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/settle"
)

// EventService implements the Connect EventService
type EventService struct {
	core *settle.Service
}

var _ api.EventServiceHandler = (*EventService)(nil)

// NewEventService creates a new EventService over the core service.
func NewEventService(core *settle.Service) *EventService {
	return &EventService{core: core}
}

func summary(e models.Event) api.EventSummary {
	return api.EventSummary{Event: e, Label: e.Label()}
}

// CreateEvent creates (or re-creates) an event.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	slog.Info("CreateEvent request received",
		"title", req.Msg.Title,
		"start", req.Msg.Start,
		"end", req.Msg.End,
	)

	id, err := s.core.CreateEvent(ctx, req.Msg.Title, req.Msg.Start, req.Msg.End)
	if err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, connectError(err)
	}
	event, err := s.core.GetEvent(ctx, id)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.CreateEventResponse{Event: event}), nil
}

// ListEvents lists events, newest first.
func (s *EventService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	events, err := s.core.ListEvents(ctx)
	if err != nil {
		slog.Error("ListEvents failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]api.EventSummary, len(events))
	for i, e := range events {
		out[i] = summary(e)
	}
	slog.Debug("ListEvents successful", "count", len(out))
	return connect.NewResponse(&api.ListEventsResponse{Events: out}), nil
}

// GetEvent retrieves one event.
func (s *EventService) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	event, err := s.core.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetEventResponse{Event: summary(event)}), nil
}

// DeleteEvent removes an event with everything stored under it.
func (s *EventService) DeleteEvent(ctx context.Context, req *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error) {
	slog.Info("DeleteEvent request received", "event_id", req.Msg.EventID)

	deleted, err := s.core.DeleteEvent(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("DeleteEvent failed", "event_id", req.Msg.EventID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.DeleteEventResponse{Deleted: deleted}), nil
}

// ListMembers returns the roster.
func (s *EventService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	members, err := s.core.Members(ctx, req.Msg.EventID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: nonNil(members)}), nil
}

// SaveMembers replaces the roster.
func (s *EventService) SaveMembers(ctx context.Context, req *connect.Request[api.SaveMembersRequest]) (*connect.Response[api.SaveMembersResponse], error) {
	members, err := s.core.SaveMembers(ctx, req.Msg.EventID, req.Msg.Members)
	if err != nil {
		slog.Error("SaveMembers failed", "event_id", req.Msg.EventID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.SaveMembersResponse{Members: nonNil(members)}), nil
}

// AddMember appends one member.
func (s *EventService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	member, err := s.core.AddMember(ctx, req.Msg.EventID, req.Msg.Member)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Member: member}), nil
}

// UpdateMember renames a member or changes its payment destination.
func (s *EventService) UpdateMember(ctx context.Context, req *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.UpdateMemberResponse], error) {
	member, err := s.core.UpdateMember(ctx, req.Msg.EventID, req.Msg.Name, req.Msg.Member)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.UpdateMemberResponse{Member: member}), nil
}

// RemoveMember drops a member; expenses keep the name.
func (s *EventService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	if err := s.core.RemoveMember(ctx, req.Msg.EventID, req.Msg.Name); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// ListExpenses returns the ledger in insertion order.
func (s *EventService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	expenses, err := s.core.Expenses(ctx, req.Msg.EventID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: nonNil(expenses)}), nil
}

// AddExpense records a new expense with its receipts.
func (s *EventService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"event_id", req.Msg.EventID,
		"payer", req.Msg.Payer,
		"amount", req.Msg.Amount,
		"participants_count", len(req.Msg.Participants),
		"receipts_count", len(req.Msg.Receipts),
	)

	receipts := make([]settle.ReceiptUpload, len(req.Msg.Receipts))
	for i, r := range req.Msg.Receipts {
		receipts[i] = settle.ReceiptUpload{Name: r.Name, Data: r.Data}
	}

	expense, err := s.core.AddExpense(ctx, req.Msg.EventID, settle.ExpenseInput{
		Payer:        req.Msg.Payer,
		Item:         req.Msg.Item,
		Amount:       req.Msg.Amount,
		Participants: req.Msg.Participants,
		SplitMode:    req.Msg.SplitMode,
		Note:         req.Msg.Note,
		Receipts:     receipts,
	})
	if err != nil {
		slog.Warn("AddExpense rejected", "event_id", req.Msg.EventID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.AddExpenseResponse{Expense: expense}), nil
}

// RemoveExpense deletes the expense at a position.
func (s *EventService) RemoveExpense(ctx context.Context, req *connect.Request[api.RemoveExpenseRequest]) (*connect.Response[api.RemoveExpenseResponse], error) {
	expense, err := s.core.RemoveExpense(ctx, req.Msg.EventID, req.Msg.Index)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.RemoveExpenseResponse{Expense: expense}), nil
}

// ListReceipts lists the expenses that have receipts.
func (s *EventService) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	expenses, err := s.core.Receipts(ctx, req.Msg.EventID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListReceiptsResponse{Expenses: nonNil(expenses)}), nil
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
