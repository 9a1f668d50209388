// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/mmynk/eventsplit/internal/models"
)

var (
	// ErrNotFound is returned when an event or receipt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for identifiers that cannot address a record
	// (empty, or containing path separators or dot segments).
	ErrInvalidID = errors.New("invalid identifier")
)

// Store defines the interface for event storage operations.
// This abstraction allows swapping storage backends (JSON files, SQLite,
// Badger) without changing the service layer.
//
// Member and expense lists have whole-list semantics: Save* replaces the
// entire list and Load* returns it in stored order. A list that was never
// saved loads as empty. There is no locking between writers; the last Save
// wins.
type Store interface {
	// CreateEvent writes the event metadata, overwriting any existing
	// metadata with the same ID. The member list is seeded with roster and
	// the expense list with an empty list only when they do not exist yet.
	CreateEvent(ctx context.Context, event models.Event, roster []models.Member) error

	// GetEvent returns the event metadata or ErrNotFound.
	GetEvent(ctx context.Context, eventID string) (models.Event, error)

	// ListEvents returns every event with readable metadata, in no
	// particular order.
	ListEvents(ctx context.Context) ([]models.Event, error)

	// DeleteEvent removes the event and everything stored under it
	// (members, expenses, receipts). It reports whether anything existed.
	DeleteEvent(ctx context.Context, eventID string) (bool, error)

	// LoadMembers returns the member list of an event.
	LoadMembers(ctx context.Context, eventID string) ([]models.Member, error)

	// SaveMembers replaces the member list of an event.
	SaveMembers(ctx context.Context, eventID string, members []models.Member) error

	// LoadExpenses returns the expense list of an event.
	LoadExpenses(ctx context.Context, eventID string) ([]models.Expense, error)

	// SaveExpenses replaces the expense list of an event.
	SaveExpenses(ctx context.Context, eventID string, expenses []models.Expense) error

	// SaveReceipt stores a receipt file under the expense and returns its
	// event-relative reference ("receipts/<expense_id>/<name>"). Names are
	// expected to be unique; existing receipts are never rewritten.
	SaveReceipt(ctx context.Context, eventID, expenseID, name string, data []byte) (string, error)

	// OpenReceipt opens a receipt by the reference SaveReceipt returned.
	OpenReceipt(ctx context.Context, eventID, ref string) (io.ReadCloser, error)

	// Close releases any resources held by the store.
	Close() error
}
