package calculator

import (
	"github.com/mmynk/eventsplit/internal/models"
)

// TotalLabel is the payer label of the synthetic totals row.
const TotalLabel = "TOTAL"

// Cell is one member's share of one row. A cell that is not Assigned is
// blank: the member did not take part, which is different from a zero share.
type Cell struct {
	Value    float64
	Assigned bool
}

// Row is one line of the settlement matrix.
type Row struct {
	// ExpenseID is empty on the totals row.
	ExpenseID string
	Payer     string
	Item      string
	Amount    float64

	// Shares is aligned with Matrix.Members.
	Shares []Cell

	// Total marks the trailing totals row.
	Total bool
}

// Matrix is the expense-by-member table of shares. The last row is always
// the totals row.
type Matrix struct {
	// Members are the member columns, in the order the caller supplied.
	Members []string
	Rows    []Row
}

// Totals returns the trailing totals row.
func (m Matrix) Totals() Row {
	return m.Rows[len(m.Rows)-1]
}

// ExpenseRows returns every row except the totals row.
func (m Matrix) ExpenseRows() []Row {
	return m.Rows[:len(m.Rows)-1]
}

// Header returns the column labels: payer, item, amount, then members.
func (m Matrix) Header() []string {
	header := make([]string, 0, 3+len(m.Members))
	header = append(header, "payer", "item", "amount")
	return append(header, m.Members...)
}

// ComputeMatrix builds the settlement matrix for expenses with one column per
// name in memberNames.
//
// Rows follow expense order and end with a totals row whose amount is the sum
// of all amounts and whose member cells sum each member's shares (blank cells
// count as zero). Participants that are not in memberNames still divide the
// amount but get no column, so the member totals then add up to less than
// the amount total.
func ComputeMatrix(expenses []models.Expense, memberNames []string) Matrix {
	m := Matrix{
		Members: append([]string(nil), memberNames...),
		Rows:    make([]Row, 0, len(expenses)+1),
	}

	total := Row{
		Payer:  TotalLabel,
		Shares: make([]Cell, len(memberNames)),
		Total:  true,
	}
	for i := range total.Shares {
		total.Shares[i].Assigned = true
	}

	for _, e := range expenses {
		shares := StrategyFor(e.SplitMode).Shares(e.Amount, e.Participants)
		byName := make(map[string]float64, len(e.Participants))
		for i, p := range e.Participants {
			if _, seen := byName[p]; !seen {
				byName[p] = shares[i]
			}
		}

		row := Row{
			ExpenseID: e.ID,
			Payer:     e.Payer,
			Item:      e.Item,
			Amount:    e.Amount,
			Shares:    make([]Cell, len(memberNames)),
		}
		for i, name := range memberNames {
			share, ok := byName[name]
			if !ok {
				continue
			}
			row.Shares[i] = Cell{Value: share, Assigned: true}
			total.Shares[i].Value += share
		}
		total.Amount += e.Amount
		m.Rows = append(m.Rows, row)
	}

	m.Rows = append(m.Rows, total)
	return m
}
