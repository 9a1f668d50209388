package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// EventServiceHandler is implemented by the event service.
type EventServiceHandler interface {
	CreateEvent(context.Context, *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error)
	ListEvents(context.Context, *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error)
	GetEvent(context.Context, *connect.Request[GetEventRequest]) (*connect.Response[GetEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error)
	ListMembers(context.Context, *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error)
	SaveMembers(context.Context, *connect.Request[SaveMembersRequest]) (*connect.Response[SaveMembersResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	UpdateMember(context.Context, *connect.Request[UpdateMemberRequest]) (*connect.Response[UpdateMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	RemoveExpense(context.Context, *connect.Request[RemoveExpenseRequest]) (*connect.Response[RemoveExpenseResponse], error)
	ListReceipts(context.Context, *connect.Request[ListReceiptsRequest]) (*connect.Response[ListReceiptsResponse], error)
}

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	GetMatrix(context.Context, *connect.Request[GetMatrixRequest]) (*connect.Response[GetMatrixResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	Reconcile(context.Context, *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error)
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Status(context.Context, *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewEventServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, EventServiceCreateEventProcedure, svc.CreateEvent, opts)
	handle(mux, EventServiceListEventsProcedure, svc.ListEvents, opts)
	handle(mux, EventServiceGetEventProcedure, svc.GetEvent, opts)
	handle(mux, EventServiceDeleteEventProcedure, svc.DeleteEvent, opts)
	handle(mux, EventServiceListMembersProcedure, svc.ListMembers, opts)
	handle(mux, EventServiceSaveMembersProcedure, svc.SaveMembers, opts)
	handle(mux, EventServiceAddMemberProcedure, svc.AddMember, opts)
	handle(mux, EventServiceUpdateMemberProcedure, svc.UpdateMember, opts)
	handle(mux, EventServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	handle(mux, EventServiceListExpensesProcedure, svc.ListExpenses, opts)
	handle(mux, EventServiceAddExpenseProcedure, svc.AddExpense, opts)
	handle(mux, EventServiceRemoveExpenseProcedure, svc.RemoveExpense, opts)
	handle(mux, EventServiceListReceiptsProcedure, svc.ListReceipts, opts)
	return "/" + EventServiceName + "/", mux
}

// NewSettlementServiceHandler builds an HTTP handler from the service
// implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, SettlementServiceGetMatrixProcedure, svc.GetMatrix, opts)
	handle(mux, SettlementServiceGetBalancesProcedure, svc.GetBalances, opts)
	handle(mux, SettlementServiceReconcileProcedure, svc.Reconcile, opts)
	return "/" + SettlementServiceName + "/", mux
}

// NewAuthServiceHandler builds an HTTP handler from the service
// implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, AuthServiceLoginProcedure, svc.Login, opts)
	handle(mux, AuthServiceStatusProcedure, svc.Status, opts)
	return "/" + AuthServiceName + "/", mux
}
