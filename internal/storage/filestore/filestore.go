// Package filestore implements storage.Store as a tree of JSON files, one
// directory per event:
//
//	<root>/events/<event_id>/event.json
//	<root>/events/<event_id>/members.json
//	<root>/events/<event_id>/expenses.json
//	<root>/events/<event_id>/receipts/<expense_id>/<file>
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

const (
	eventFile    = "event.json"
	membersFile  = "members.json"
	expensesFile = "expenses.json"
	receiptsDir  = "receipts"
)

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

// FileStore implements storage.Store on the local filesystem.
type FileStore struct {
	eventsDir string
	logger    *slog.Logger
}

// OptionFunc configures a FileStore.
type OptionFunc func(*FileStore)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(s *FileStore) {
		s.logger = logger
	}
}

type membersRecord struct {
	Members []models.Member `json:"members"`
}

type expensesRecord struct {
	Expenses []models.Expense `json:"expenses"`
}

// New creates a FileStore rooted at dataDir, creating <dataDir>/events if
// needed.
func New(dataDir string, opts ...OptionFunc) (*FileStore, error) {
	s := &FileStore{eventsDir: filepath.Join(dataDir, "events")}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := os.MkdirAll(s.eventsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create events directory: %w", err)
	}
	return s, nil
}

// Close implements storage.Store. The file store holds no resources.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) eventDir(eventID string) (string, error) {
	if err := storage.CheckID(eventID); err != nil {
		return "", err
	}
	return filepath.Join(s.eventsDir, eventID), nil
}

// CreateEvent writes event.json and seeds members.json / expenses.json when
// they are absent.
func (s *FileStore) CreateEvent(ctx context.Context, event models.Event, roster []models.Member) error {
	dir, err := s.eventDir(event.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, receiptsDir), 0o755); err != nil {
		return fmt.Errorf("failed to create event directory: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, eventFile), event); err != nil {
		return fmt.Errorf("failed to write event metadata: %w", err)
	}

	membersPath := filepath.Join(dir, membersFile)
	if !exists(membersPath) {
		if roster == nil {
			roster = []models.Member{}
		}
		if err := writeJSON(membersPath, membersRecord{Members: roster}); err != nil {
			return fmt.Errorf("failed to seed members: %w", err)
		}
	}
	expensesPath := filepath.Join(dir, expensesFile)
	if !exists(expensesPath) {
		if err := writeJSON(expensesPath, expensesRecord{Expenses: []models.Expense{}}); err != nil {
			return fmt.Errorf("failed to seed expenses: %w", err)
		}
	}
	return nil
}

// GetEvent reads event.json.
func (s *FileStore) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return models.Event{}, err
	}
	var event models.Event
	found, err := readJSON(filepath.Join(dir, eventFile), &event)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to read event %s: %w", eventID, err)
	}
	if !found {
		return models.Event{}, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	return event, nil
}

// ListEvents scans the events directory. Directories without event.json are
// skipped, as are unreadable metadata files (logged).
func (s *FileStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	entries, err := os.ReadDir(s.eventsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []models.Event
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var event models.Event
		found, err := readJSON(filepath.Join(s.eventsDir, entry.Name(), eventFile), &event)
		if err != nil {
			s.logger.Warn("Skipping unreadable event metadata", "dir", entry.Name(), "error", err)
			continue
		}
		if found {
			events = append(events, event)
		}
	}
	return events, nil
}

// DeleteEvent removes the event directory recursively.
func (s *FileStore) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat event %s: %w", eventID, err)
	}
	if !info.IsDir() {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return true, nil
}

// LoadMembers reads members.json; a missing file is an empty list.
func (s *FileStore) LoadMembers(ctx context.Context, eventID string) ([]models.Member, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return nil, err
	}
	var rec membersRecord
	if _, err := readJSON(filepath.Join(dir, membersFile), &rec); err != nil {
		return nil, fmt.Errorf("failed to read members of %s: %w", eventID, err)
	}
	return rec.Members, nil
}

// SaveMembers overwrites members.json.
func (s *FileStore) SaveMembers(ctx context.Context, eventID string, members []models.Member) error {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return err
	}
	if members == nil {
		members = []models.Member{}
	}
	if err := writeJSON(filepath.Join(dir, membersFile), membersRecord{Members: members}); err != nil {
		return fmt.Errorf("failed to write members of %s: %w", eventID, err)
	}
	return nil
}

// LoadExpenses reads expenses.json; a missing file is an empty list.
func (s *FileStore) LoadExpenses(ctx context.Context, eventID string) ([]models.Expense, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return nil, err
	}
	var rec expensesRecord
	if _, err := readJSON(filepath.Join(dir, expensesFile), &rec); err != nil {
		return nil, fmt.Errorf("failed to read expenses of %s: %w", eventID, err)
	}
	return rec.Expenses, nil
}

// SaveExpenses overwrites expenses.json.
func (s *FileStore) SaveExpenses(ctx context.Context, eventID string, expenses []models.Expense) error {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return err
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	if err := writeJSON(filepath.Join(dir, expensesFile), expensesRecord{Expenses: expenses}); err != nil {
		return fmt.Errorf("failed to write expenses of %s: %w", eventID, err)
	}
	return nil
}

// SaveReceipt writes the file under receipts/<expense_id>/. It refuses to
// overwrite an existing file.
func (s *FileStore) SaveReceipt(ctx context.Context, eventID, expenseID, name string, data []byte) (string, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return "", err
	}
	if err := storage.CheckID(expenseID); err != nil {
		return "", err
	}
	if err := storage.CheckID(name); err != nil {
		return "", err
	}

	base := filepath.Join(dir, receiptsDir, expenseID)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(base, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create receipt %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write receipt %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close receipt %s: %w", name, err)
	}
	return storage.ReceiptRef(expenseID, name), nil
}

// OpenReceipt opens a stored receipt file.
func (s *FileStore) OpenReceipt(ctx context.Context, eventID, ref string) (io.ReadCloser, error) {
	dir, err := s.eventDir(eventID)
	if err != nil {
		return nil, err
	}
	expenseID, name, err := storage.ParseReceiptRef(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, receiptsDir, expenseID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("receipt %s: %w", ref, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt %s: %w", ref, err)
	}
	return f, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readJSON decodes path into v. A missing file leaves v untouched and
// reports found=false.
func readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("corrupt record %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeJSON replaces path with the indented JSON encoding of v. The record
// is written to a temporary file first and renamed into place, so readers
// see either the old or the new content.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
