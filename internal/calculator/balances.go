package calculator

import (
	"sort"

	"github.com/mmynk/eventsplit/internal/models"
)

// settleEpsilon hides floating point noise when matching debts.
const settleEpsilon = 0.01

// MemberBalance is the balance information for one person across an event.
type MemberBalance struct {
	Name       string
	TotalPaid  float64 // Sum of amounts this person paid
	TotalOwed  float64 // Sum of this person's shares
	NetBalance float64 // Positive = owed money, Negative = owes money
	PayTo      string  // Payment destination, empty for guests
	OnRoster   bool
}

// Transfer is one suggested payment from a debtor to a creditor. It is only
// a suggestion; nothing is ever paid by the system.
type Transfer struct {
	From   string
	To     string
	Amount float64
	PayTo  string // Creditor's payment destination
}

// CalculateBalances aggregates who paid what and who owes what across
// expenses, then proposes transfers that settle every net balance.
//
// Algorithm:
//   - For each expense: payer contributed +amount, each participant owes their share
//   - net_balance = total_paid - total_owed
//   - Transfers: greedy matching of the largest debtor with the largest creditor
//
// Balances are returned in roster order followed by off-roster names
// (guests, removed members) sorted by name.
func CalculateBalances(expenses []models.Expense, roster []models.Member) ([]MemberBalance, []Transfer) {
	balances := make(map[string]*MemberBalance)
	payTo := make(map[string]string, len(roster))
	for _, m := range roster {
		payTo[m.Name] = m.PayTo
		balances[m.Name] = &MemberBalance{Name: m.Name, PayTo: m.PayTo, OnRoster: true}
	}

	get := func(name string) *MemberBalance {
		b, ok := balances[name]
		if !ok {
			b = &MemberBalance{Name: name}
			balances[name] = b
		}
		return b
	}

	for _, e := range expenses {
		if e.Payer != "" {
			get(e.Payer).TotalPaid += e.Amount
		}
		shares := StrategyFor(e.SplitMode).Shares(e.Amount, e.Participants)
		seen := make(map[string]bool, len(e.Participants))
		for i, p := range e.Participants {
			if seen[p] {
				continue
			}
			seen[p] = true
			get(p).TotalOwed += shares[i]
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, m := range roster {
		if b, ok := balances[m.Name]; ok {
			b.NetBalance = b.TotalPaid - b.TotalOwed
			result = append(result, *b)
			delete(balances, m.Name)
		}
	}
	var extra []MemberBalance
	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
		extra = append(extra, *b)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	result = append(result, extra...)

	return result, simplify(result, payTo)
}

// simplify matches debtors with creditors to minimize the number of transfers.
func simplify(balances []MemberBalance, payTo map[string]string) []Transfer {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		if b.NetBalance > settleEpsilon {
			creditors = append(creditors, b)
		} else if b.NetBalance < -settleEpsilon {
			debtors = append(debtors, b)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].NetBalance > creditors[j].NetBalance })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].NetBalance < debtors[j].NetBalance })

	debtorBalance := make(map[string]float64, len(debtors))
	creditorBalance := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		debtorBalance[d.Name] = -d.NetBalance
	}
	for _, c := range creditors {
		creditorBalance[c.Name] = c.NetBalance
	}

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].Name
		creditor := creditors[j].Name

		amount := debtorBalance[debtor]
		if creditorBalance[creditor] < amount {
			amount = creditorBalance[creditor]
		}
		if amount > settleEpsilon {
			transfers = append(transfers, Transfer{
				From:   debtor,
				To:     creditor,
				Amount: amount,
				PayTo:  payTo[creditor],
			})
		}

		debtorBalance[debtor] -= amount
		creditorBalance[creditor] -= amount
		if debtorBalance[debtor] < settleEpsilon {
			i++
		}
		if creditorBalance[creditor] < settleEpsilon {
			j++
		}
	}
	return transfers
}
