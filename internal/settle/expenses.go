package settle

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/models"
)

// MaxAmount is the largest accepted expense amount. Sums of capped amounts
// stay finite and whole amounts stay exactly representable.
const MaxAmount = 1e15

// ReceiptUpload is one receipt file attached to a new expense.
type ReceiptUpload struct {
	// Name is the uploaded file name; only its extension is kept.
	Name string
	Data []byte
}

// ExpenseInput is an expense as entered by a user, before it has an id.
type ExpenseInput struct {
	// Payer is a roster name or an ad-hoc guest name.
	Payer        string
	Item         string
	Amount       float64
	Participants []string
	// SplitMode defaults to equal when empty.
	SplitMode models.SplitMode
	Note      string
	Receipts  []ReceiptUpload
}

// Normalize trims text fields and drops blank and repeated participants,
// keeping the first occurrence of each.
func (in ExpenseInput) Normalize() ExpenseInput {
	out := in
	out.Payer = strings.TrimSpace(in.Payer)
	out.Item = strings.TrimSpace(in.Item)
	out.Note = strings.TrimSpace(in.Note)
	out.SplitMode = models.SplitMode(strings.TrimSpace(string(in.SplitMode)))
	if out.SplitMode == "" {
		out.SplitMode = models.SplitEqual
	}

	out.Participants = make([]string, 0, len(in.Participants))
	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out.Participants = append(out.Participants, p)
	}
	return out
}

// Validate checks the required fields. Call it on a normalized input.
func (in ExpenseInput) Validate() error {
	switch {
	case in.Payer == "":
		return invalid("payer", "payer is required")
	case in.Item == "":
		return invalid("item", "item is required")
	case math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0):
		return invalid("amount", "amount must be a finite number")
	case in.Amount <= 0:
		return invalid("amount", "amount must be greater than zero")
	case in.Amount > MaxAmount:
		return invalid("amount", fmt.Sprintf("amount must be at most %.0f", MaxAmount))
	case len(in.Participants) == 0:
		return invalid("participants", "at least one participant is required")
	case !calculator.IsKnownMode(in.SplitMode):
		return invalid("split_mode", fmt.Sprintf("unsupported split mode %q", in.SplitMode))
	}
	return nil
}

// receiptExt returns the lower-cased extension of name, or the default.
func receiptExt(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))
	if ext == "" || ext == "." {
		return DefaultReceiptExt
	}
	return ext
}

func (s *Service) validateReceipts(receipts []ReceiptUpload) error {
	for _, r := range receipts {
		if ext := receiptExt(r.Name); !s.extensions[ext] {
			return invalid("receipts", fmt.Sprintf("file type %s is not accepted", ext))
		}
		if int64(len(r.Data)) > s.maxReceiptBytes {
			return invalid("receipts", fmt.Sprintf("%s exceeds %d bytes", r.Name, s.maxReceiptBytes))
		}
	}
	return nil
}

// ReadReceipt reads an upload stream, failing with a validation error once
// it grows past the size limit.
func (s *Service) ReadReceipt(name string, r io.Reader) (ReceiptUpload, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxReceiptBytes+1))
	if err != nil {
		return ReceiptUpload{}, fmt.Errorf("failed to read receipt %s: %w", name, err)
	}
	if int64(len(data)) > s.maxReceiptBytes {
		return ReceiptUpload{}, invalid("receipts", fmt.Sprintf("%s exceeds %d bytes", name, s.maxReceiptBytes))
	}
	return ReceiptUpload{Name: name, Data: data}, nil
}

// Expenses returns the ledger of an event in insertion order.
func (s *Service) Expenses(ctx context.Context, eventID string) ([]models.Expense, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.LoadExpenses(ctx, eventID)
}

// AddExpense validates the input, stores its receipts and appends the
// expense to the ledger.
func (s *Service) AddExpense(ctx context.Context, eventID string, input ExpenseInput) (models.Expense, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return models.Expense{}, err
	}
	if err := s.validateReceipts(input.Receipts); err != nil {
		return models.Expense{}, err
	}

	expenses, err := s.Expenses(ctx, eventID)
	if err != nil {
		return models.Expense{}, err
	}

	expense := models.Expense{
		ID:           models.ExpenseID(len(expenses), input.Item, input.Amount),
		Payer:        input.Payer,
		Item:         input.Item,
		Amount:       input.Amount,
		Participants: input.Participants,
		SplitMode:    input.SplitMode,
		Note:         input.Note,
		ReceiptPaths: []string{},
		CreatedAt:    s.today(),
	}

	for _, r := range input.Receipts {
		ref, err := s.store.SaveReceipt(ctx, eventID, expense.ID, s.newName()+receiptExt(r.Name), r.Data)
		if err != nil {
			return models.Expense{}, err
		}
		expense.ReceiptPaths = append(expense.ReceiptPaths, ref)
	}

	if err := s.store.SaveExpenses(ctx, eventID, append(expenses, expense)); err != nil {
		return models.Expense{}, err
	}
	s.logger.Info("Added expense",
		"event_id", eventID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"receipts", len(expense.ReceiptPaths),
	)
	return expense, nil
}

// RemoveExpense deletes the expense at a 0-based position and returns it.
// Its receipt files are kept.
func (s *Service) RemoveExpense(ctx context.Context, eventID string, index int) (models.Expense, error) {
	expenses, err := s.Expenses(ctx, eventID)
	if err != nil {
		return models.Expense{}, err
	}
	if index < 0 || index >= len(expenses) {
		return models.Expense{}, fmt.Errorf("expense #%d of %d: %w", index, len(expenses), ErrNotFound)
	}

	removed := expenses[index]
	expenses = append(expenses[:index], expenses[index+1:]...)
	if err := s.store.SaveExpenses(ctx, eventID, expenses); err != nil {
		return models.Expense{}, err
	}
	s.logger.Info("Removed expense", "event_id", eventID, "expense_id", removed.ID, "index", index)
	return removed, nil
}

// Receipts returns the expenses that carry receipts. A non-empty expenseID
// narrows the result to that expense.
func (s *Service) Receipts(ctx context.Context, eventID, expenseID string) ([]models.Expense, error) {
	expenses, err := s.Expenses(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var out []models.Expense
	for _, e := range expenses {
		if expenseID != "" && e.ID != expenseID {
			continue
		}
		if len(e.ReceiptPaths) > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

// OpenReceipt opens a stored receipt by reference.
func (s *Service) OpenReceipt(ctx context.Context, eventID, ref string) (io.ReadCloser, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.OpenReceipt(ctx, eventID, ref)
}
