package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// EventServiceClient calls the event service.
type EventServiceClient struct {
	createEvent   *connect.Client[CreateEventRequest, CreateEventResponse]
	listEvents    *connect.Client[ListEventsRequest, ListEventsResponse]
	getEvent      *connect.Client[GetEventRequest, GetEventResponse]
	deleteEvent   *connect.Client[DeleteEventRequest, DeleteEventResponse]
	listMembers   *connect.Client[ListMembersRequest, ListMembersResponse]
	saveMembers   *connect.Client[SaveMembersRequest, SaveMembersResponse]
	addMember     *connect.Client[AddMemberRequest, AddMemberResponse]
	updateMember  *connect.Client[UpdateMemberRequest, UpdateMemberResponse]
	removeMember  *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	listExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
	addExpense    *connect.Client[AddExpenseRequest, AddExpenseResponse]
	removeExpense *connect.Client[RemoveExpenseRequest, RemoveExpenseResponse]
	listReceipts  *connect.Client[ListReceiptsRequest, ListReceiptsResponse]
}

// NewEventServiceClient constructs a client for the event service. The
// baseURL is the server root, e.g. http://localhost:8080.
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventServiceClient {
	opts = clientOptions(opts)
	return &EventServiceClient{
		createEvent:   newClient[CreateEventRequest, CreateEventResponse](httpClient, baseURL, EventServiceCreateEventProcedure, opts),
		listEvents:    newClient[ListEventsRequest, ListEventsResponse](httpClient, baseURL, EventServiceListEventsProcedure, opts),
		getEvent:      newClient[GetEventRequest, GetEventResponse](httpClient, baseURL, EventServiceGetEventProcedure, opts),
		deleteEvent:   newClient[DeleteEventRequest, DeleteEventResponse](httpClient, baseURL, EventServiceDeleteEventProcedure, opts),
		listMembers:   newClient[ListMembersRequest, ListMembersResponse](httpClient, baseURL, EventServiceListMembersProcedure, opts),
		saveMembers:   newClient[SaveMembersRequest, SaveMembersResponse](httpClient, baseURL, EventServiceSaveMembersProcedure, opts),
		addMember:     newClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL, EventServiceAddMemberProcedure, opts),
		updateMember:  newClient[UpdateMemberRequest, UpdateMemberResponse](httpClient, baseURL, EventServiceUpdateMemberProcedure, opts),
		removeMember:  newClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL, EventServiceRemoveMemberProcedure, opts),
		listExpenses:  newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, EventServiceListExpensesProcedure, opts),
		addExpense:    newClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL, EventServiceAddExpenseProcedure, opts),
		removeExpense: newClient[RemoveExpenseRequest, RemoveExpenseResponse](httpClient, baseURL, EventServiceRemoveExpenseProcedure, opts),
		listReceipts:  newClient[ListReceiptsRequest, ListReceiptsResponse](httpClient, baseURL, EventServiceListReceiptsProcedure, opts),
	}
}

func (c *EventServiceClient) CreateEvent(ctx context.Context, req *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListEvents(ctx context.Context, req *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *EventServiceClient) GetEvent(ctx context.Context, req *connect.Request[GetEventRequest]) (*connect.Response[GetEventResponse], error) {
	return c.getEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) DeleteEvent(ctx context.Context, req *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error) {
	return c.deleteEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *EventServiceClient) SaveMembers(ctx context.Context, req *connect.Request[SaveMembersRequest]) (*connect.Response[SaveMembersResponse], error) {
	return c.saveMembers.CallUnary(ctx, req)
}

func (c *EventServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateMember(ctx context.Context, req *connect.Request[UpdateMemberRequest]) (*connect.Response[UpdateMemberResponse], error) {
	return c.updateMember.CallUnary(ctx, req)
}

func (c *EventServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *EventServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *EventServiceClient) RemoveExpense(ctx context.Context, req *connect.Request[RemoveExpenseRequest]) (*connect.Response[RemoveExpenseResponse], error) {
	return c.removeExpense.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListReceipts(ctx context.Context, req *connect.Request[ListReceiptsRequest]) (*connect.Response[ListReceiptsResponse], error) {
	return c.listReceipts.CallUnary(ctx, req)
}

// SettlementServiceClient calls the settlement service.
type SettlementServiceClient struct {
	getMatrix   *connect.Client[GetMatrixRequest, GetMatrixResponse]
	getBalances *connect.Client[GetBalancesRequest, GetBalancesResponse]
	reconcile   *connect.Client[ReconcileRequest, ReconcileResponse]
}

// NewSettlementServiceClient constructs a client for the settlement service.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	opts = clientOptions(opts)
	return &SettlementServiceClient{
		getMatrix:   newClient[GetMatrixRequest, GetMatrixResponse](httpClient, baseURL, SettlementServiceGetMatrixProcedure, opts),
		getBalances: newClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, SettlementServiceGetBalancesProcedure, opts),
		reconcile:   newClient[ReconcileRequest, ReconcileResponse](httpClient, baseURL, SettlementServiceReconcileProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetMatrix(ctx context.Context, req *connect.Request[GetMatrixRequest]) (*connect.Response[GetMatrixResponse], error) {
	return c.getMatrix.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) Reconcile(ctx context.Context, req *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error) {
	return c.reconcile.CallUnary(ctx, req)
}

// AuthServiceClient calls the auth service.
type AuthServiceClient struct {
	login  *connect.Client[LoginRequest, LoginResponse]
	status *connect.Client[StatusRequest, StatusResponse]
}

// NewAuthServiceClient constructs a client for the auth service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		login:  newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		status: newClient[StatusRequest, StatusResponse](httpClient, baseURL, AuthServiceStatusProcedure, opts),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Status(ctx context.Context, req *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error) {
	return c.status.CallUnary(ctx, req)
}

// BearerToken returns a client interceptor that sends token on every call.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
