package api

import (
	"github.com/mmynk/eventsplit/internal/models"
)

// EventServiceName is the fully-qualified name of the EventService service.
const EventServiceName = "eventsplit.v1.EventService"

// EventService procedure paths.
const (
	EventServiceCreateEventProcedure   = "/eventsplit.v1.EventService/CreateEvent"
	EventServiceListEventsProcedure    = "/eventsplit.v1.EventService/ListEvents"
	EventServiceGetEventProcedure      = "/eventsplit.v1.EventService/GetEvent"
	EventServiceDeleteEventProcedure   = "/eventsplit.v1.EventService/DeleteEvent"
	EventServiceListMembersProcedure   = "/eventsplit.v1.EventService/ListMembers"
	EventServiceSaveMembersProcedure   = "/eventsplit.v1.EventService/SaveMembers"
	EventServiceAddMemberProcedure     = "/eventsplit.v1.EventService/AddMember"
	EventServiceUpdateMemberProcedure  = "/eventsplit.v1.EventService/UpdateMember"
	EventServiceRemoveMemberProcedure  = "/eventsplit.v1.EventService/RemoveMember"
	EventServiceListExpensesProcedure  = "/eventsplit.v1.EventService/ListExpenses"
	EventServiceAddExpenseProcedure    = "/eventsplit.v1.EventService/AddExpense"
	EventServiceRemoveExpenseProcedure = "/eventsplit.v1.EventService/RemoveExpense"
	EventServiceListReceiptsProcedure  = "/eventsplit.v1.EventService/ListReceipts"
)

type CreateEventRequest struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type CreateEventResponse struct {
	Event models.Event `json:"event"`
}

type ListEventsRequest struct{}

type ListEventsResponse struct {
	// Events are newest first.
	Events []EventSummary `json:"events"`
}

// EventSummary is an event with its picker label.
type EventSummary struct {
	models.Event
	Label string `json:"label"`
}

type GetEventRequest struct {
	EventID string `json:"event_id"`
}

type GetEventResponse struct {
	Event EventSummary `json:"event"`
}

type DeleteEventRequest struct {
	EventID string `json:"event_id"`
}

type DeleteEventResponse struct {
	// Deleted is false when the event did not exist.
	Deleted bool `json:"deleted"`
}

type ListMembersRequest struct {
	EventID string `json:"event_id"`
}

type ListMembersResponse struct {
	Members []models.Member `json:"members"`
}

type SaveMembersRequest struct {
	EventID string          `json:"event_id"`
	Members []models.Member `json:"members"`
}

type SaveMembersResponse struct {
	// Members is the list as stored: trimmed, blanks and duplicates removed.
	Members []models.Member `json:"members"`
}

type AddMemberRequest struct {
	EventID string        `json:"event_id"`
	Member  models.Member `json:"member"`
}

type AddMemberResponse struct {
	Member models.Member `json:"member"`
}

type UpdateMemberRequest struct {
	EventID string `json:"event_id"`
	// Name is the current name of the member to edit.
	Name   string        `json:"name"`
	Member models.Member `json:"member"`
}

type UpdateMemberResponse struct {
	Member models.Member `json:"member"`
}

type RemoveMemberRequest struct {
	EventID string `json:"event_id"`
	Name    string `json:"name"`
}

type RemoveMemberResponse struct{}

type ListExpensesRequest struct {
	EventID string `json:"event_id"`
}

type ListExpensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// ReceiptUpload carries one receipt file. Data is base64 in JSON.
type ReceiptUpload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type AddExpenseRequest struct {
	EventID      string           `json:"event_id"`
	Payer        string           `json:"payer"`
	Item         string           `json:"item"`
	Amount       float64          `json:"amount"`
	Participants []string         `json:"participants"`
	SplitMode    models.SplitMode `json:"split_mode,omitempty"`
	Note         string           `json:"note,omitempty"`
	Receipts     []ReceiptUpload  `json:"receipts,omitempty"`
}

type AddExpenseResponse struct {
	Expense models.Expense `json:"expense"`
}

type RemoveExpenseRequest struct {
	EventID string `json:"event_id"`
	// Index is the 0-based position in the ledger.
	Index int `json:"index"`
}

type RemoveExpenseResponse struct {
	Expense models.Expense `json:"expense"`
}

type ListReceiptsRequest struct {
	EventID string `json:"event_id"`
	// ExpenseID optionally narrows the gallery to one expense.
	ExpenseID string `json:"expense_id,omitempty"`
}

type ListReceiptsResponse struct {
	// Expenses are the expenses that have at least one receipt.
	Expenses []models.Expense `json:"expenses"`
}
