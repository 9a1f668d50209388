package api

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "eventsplit.v1.SettlementService"

// SettlementService procedure paths.
const (
	SettlementServiceGetMatrixProcedure   = "/eventsplit.v1.SettlementService/GetMatrix"
	SettlementServiceGetBalancesProcedure = "/eventsplit.v1.SettlementService/GetBalances"
	SettlementServiceReconcileProcedure   = "/eventsplit.v1.SettlementService/Reconcile"
)

type GetMatrixRequest struct {
	EventID string `json:"event_id"`
}

type GetMatrixResponse struct {
	// Columns are payer, item, amount, then one per member.
	Columns []string    `json:"columns"`
	Members []string    `json:"members"`
	Rows    []MatrixRow `json:"rows"`
}

// MatrixRow is one matrix line. Shares align with Members; a null share is
// a blank cell (not a participant), unlike 0.
type MatrixRow struct {
	ExpenseID string     `json:"expense_id,omitempty"`
	Payer     string     `json:"payer"`
	Item      string     `json:"item"`
	Amount    float64    `json:"amount"`
	Shares    []*float64 `json:"shares"`
	Total     bool       `json:"total,omitempty"`

	// Display is the row formatted for people: grouped whole numbers.
	Display []string `json:"display"`
}

type GetBalancesRequest struct {
	EventID string `json:"event_id"`
}

type GetBalancesResponse struct {
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}

type Balance struct {
	Name       string  `json:"name"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
	PayTo      string  `json:"pay_to,omitempty"`
	OnRoster   bool    `json:"on_roster"`
}

// Transfer is a suggested payment; nothing is moved.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	PayTo  string  `json:"pay_to,omitempty"`
}

type ReconcileRequest struct {
	EventID string `json:"event_id"`
}

type ReconcileResponse struct {
	Dangling []DanglingName `json:"dangling"`
}

type DanglingName struct {
	Name       string   `json:"name"`
	ExpenseIDs []string `json:"expense_ids,omitempty"`
	AsPayer    bool     `json:"as_payer"`
	Suggestion string   `json:"suggestion,omitempty"`
}
