// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so they go in the DSN
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEvent upserts the event row and seeds the member and expense lists
// when they do not exist yet.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event models.Event, roster []models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, title, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, start_date = excluded.start_date,
		 end_date = excluded.end_date, created_at = excluded.created_at`,
		event.ID, event.Title, event.Start, event.End, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO member_lists (event_id) VALUES (?)", event.ID)
	if err != nil {
		return fmt.Errorf("failed to create member list: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if err := insertMembers(ctx, tx, event.ID, roster); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO expense_lists (event_id) VALUES (?)", event.ID); err != nil {
		return fmt.Errorf("failed to create expense list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	var event models.Event
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, start_date, end_date, created_at FROM events WHERE id = ?",
		eventID,
	).Scan(&event.ID, &event.Title, &event.Start, &event.End, &event.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents retrieves all events.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, start_date, end_date, created_at FROM events")
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Title, &event.Start, &event.End, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes the event; members, expenses and receipts cascade.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return n > 0, nil
}

// LoadMembers returns the member list in stored order.
func (s *SQLiteStore) LoadMembers(ctx context.Context, eventID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, pay_to FROM members WHERE event_id = ? ORDER BY position",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.Name, &m.PayTo); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// SaveMembers replaces the member list.
func (s *SQLiteStore) SaveMembers(ctx context.Context, eventID string, members []models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO member_lists (event_id) VALUES (?)", eventID); err != nil {
		return fmt.Errorf("failed to create member list: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE event_id = ?", eventID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if err := insertMembers(ctx, tx, eventID, members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, eventID string, members []models.Member) error {
	for i, m := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO members (event_id, position, name, pay_to) VALUES (?, ?, ?, ?)",
			eventID, i, m.Name, m.PayTo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

// LoadExpenses returns the expense list with participants and receipt paths.
func (s *SQLiteStore) LoadExpenses(ctx context.Context, eventID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, expense_id, payer, item, amount, split_mode, note, created_at
		 FROM expenses WHERE event_id = ? ORDER BY position`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	var (
		expenses  []models.Expense
		positions []int
	)
	for rows.Next() {
		var (
			e   models.Expense
			pos int
		)
		if err := rows.Scan(&pos, &e.ID, &e.Payer, &e.Item, &e.Amount, &e.SplitMode, &e.Note, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		positions = append(positions, pos)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	index := make(map[int]int, len(positions))
	for i, pos := range positions {
		index[pos] = i
	}

	// Get participants for all expenses of the event
	err = s.eachChild(ctx,
		"SELECT expense_position, name FROM expense_participants WHERE event_id = ? ORDER BY expense_position, position",
		eventID,
		func(pos int, name string) {
			if i, ok := index[pos]; ok {
				expenses[i].Participants = append(expenses[i].Participants, name)
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	err = s.eachChild(ctx,
		"SELECT expense_position, path FROM expense_receipt_paths WHERE event_id = ? ORDER BY expense_position, position",
		eventID,
		func(pos int, path string) {
			if i, ok := index[pos]; ok {
				expenses[i].ReceiptPaths = append(expenses[i].ReceiptPaths, path)
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt paths: %w", err)
	}

	return expenses, nil
}

func (s *SQLiteStore) eachChild(ctx context.Context, query, eventID string, fn func(pos int, value string)) error {
	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pos   int
			value string
		)
		if err := rows.Scan(&pos, &value); err != nil {
			return err
		}
		fn(pos, value)
	}
	return rows.Err()
}

// SaveExpenses replaces the expense list.
func (s *SQLiteStore) SaveExpenses(ctx context.Context, eventID string, expenses []models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO expense_lists (event_id) VALUES (?)", eventID); err != nil {
		return fmt.Errorf("failed to create expense list: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE event_id = ?", eventID); err != nil {
		return fmt.Errorf("failed to clear expenses: %w", err)
	}

	for i, e := range expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (event_id, position, expense_id, payer, item, amount, split_mode, note, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eventID, i, e.ID, e.Payer, e.Item, e.Amount, string(e.SplitMode), e.Note, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for j, name := range e.Participants {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_participants (event_id, expense_position, position, name) VALUES (?, ?, ?, ?)",
				eventID, i, j, name,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}

		for j, path := range e.ReceiptPaths {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_receipt_paths (event_id, expense_position, position, path) VALUES (?, ?, ?, ?)",
				eventID, i, j, path,
			)
			if err != nil {
				return fmt.Errorf("failed to insert receipt path: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveReceipt stores the receipt bytes in the receipts table.
func (s *SQLiteStore) SaveReceipt(ctx context.Context, eventID, expenseID, name string, data []byte) (string, error) {
	if err := storage.CheckID(expenseID); err != nil {
		return "", err
	}
	if err := storage.CheckID(name); err != nil {
		return "", err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO receipts (event_id, expense_id, name, data) VALUES (?, ?, ?, ?)",
		eventID, expenseID, name, data,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert receipt: %w", err)
	}
	return storage.ReceiptRef(expenseID, name), nil
}

// OpenReceipt reads a receipt back into memory.
func (s *SQLiteStore) OpenReceipt(ctx context.Context, eventID, ref string) (io.ReadCloser, error) {
	expenseID, name, err := storage.ParseReceiptRef(ref)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT data FROM receipts WHERE event_id = ? AND expense_id = ? AND name = ?",
		eventID, expenseID, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", ref, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
