package models

// SplitMode names the strategy used to divide an expense among its
// participants.
type SplitMode string

// SplitEqual divides the amount evenly across participants. It is the only
// mode defined today; the field exists so other modes can be added without a
// data migration.
const SplitEqual SplitMode = "equal"

// Expense is a single payment recorded against an event.
type Expense struct {
	// ID is derived by ExpenseID at creation time and never recomputed.
	ID string `json:"expense_id"`

	// Payer is a roster member name or an ad-hoc guest name.
	Payer string `json:"payer"`

	// Item is the description of what was paid for (e.g., "dinner", "taxi").
	Item string `json:"item"`

	// Amount is the total paid. Always strictly positive for stored expenses.
	Amount float64 `json:"amount"`

	// Participants are the member names sharing this expense, in the order
	// they were selected. Names may no longer be on the roster.
	Participants []string `json:"participants"`

	// SplitMode is stored verbatim, even if the settlement engine does not
	// know the value.
	SplitMode SplitMode `json:"split_mode"`

	// Note is an optional free-text memo.
	Note string `json:"note"`

	// ReceiptPaths are event-relative references to stored receipt images.
	ReceiptPaths []string `json:"receipt_paths"`

	// CreatedAt is the ISO date the expense was recorded.
	CreatedAt string `json:"created_at"`
}

// HasParticipant reports whether name is one of the expense participants.
func (e Expense) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}
