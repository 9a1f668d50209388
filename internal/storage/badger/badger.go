// Package badger implements storage.Store on a Badger key/value database.
//
// Every event lives under its own key prefix and keeps the JSON record
// shapes of the file backend:
//
//	events/<event_id>/meta                         event metadata
//	events/<event_id>/members                      {"members":[...]}
//	events/<event_id>/expenses                     {"expenses":[...]}
//	events/<event_id>/receipts/<expense_id>/<file> raw receipt bytes
package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

const (
	eventsPrefix = "events/"
	metaKey      = "meta"
	membersKey   = "members"
	expensesKey  = "expenses"

	// DefaultGcInterval is how often the value log is compacted.
	DefaultGcInterval = 5 * time.Minute
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using Badger.
type Store struct {
	db         *badger.DB
	logger     *slog.Logger
	dataDir    string
	gcInterval time.Duration
	gcStop     chan struct{}
	gcWg       sync.WaitGroup
}

type membersRecord struct {
	Members []models.Member `json:"members"`
}

type expensesRecord struct {
	Expenses []models.Expense `json:"expenses"`
}

// New opens the database. With no data dir it runs in memory.
func New(opts ...OptionFunc) (*Store, error) {
	s := &Store{gcInterval: DefaultGcInterval}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	var badgerOpts badger.Options
	if s.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
		// GC only applies to on-disk value logs
		s.gcInterval = 0
	} else {
		if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		badgerOpts = badger.DefaultOptions(s.dataDir)
	}
	badgerOpts = badgerOpts.
		WithLogger(newBadgerLogger(s.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	s.db = db

	if s.gcInterval > 0 {
		s.gcStop = make(chan struct{})
		s.gcWg.Add(1)
		go s.runGc()
	}
	return s, nil
}

func (s *Store) runGc() {
	defer s.gcWg.Done()
	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// Keep collecting while there is something to rewrite
			for {
				err := s.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					s.logger.Warn("Value log GC failed", "component", "badger", "error", err)
				}
				break
			}
		case <-s.gcStop:
			return
		}
	}
}

// Close stops GC and closes the database.
func (s *Store) Close() error {
	if s.gcStop != nil {
		close(s.gcStop)
		s.gcWg.Wait()
		s.gcStop = nil
	}
	return s.db.Close()
}

func eventPrefix(eventID string) []byte {
	return []byte(eventsPrefix + eventID + "/")
}

func eventKey(eventID string, parts ...string) ([]byte, error) {
	if err := storage.CheckID(eventID); err != nil {
		return nil, err
	}
	return []byte(eventsPrefix + eventID + "/" + strings.Join(parts, "/")), nil
}

// CreateEvent writes the metadata and seeds absent lists in one transaction.
func (s *Store) CreateEvent(ctx context.Context, event models.Event, roster []models.Member) error {
	meta, err := eventKey(event.ID, metaKey)
	if err != nil {
		return err
	}
	membersK, _ := eventKey(event.ID, membersKey)
	expensesK, _ := eventKey(event.ID, expensesKey)

	if roster == nil {
		roster = []models.Member{}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, meta, event); err != nil {
			return err
		}
		if ok, err := has(txn, membersK); err != nil {
			return err
		} else if !ok {
			if err := setJSON(txn, membersK, membersRecord{Members: roster}); err != nil {
				return err
			}
		}
		if ok, err := has(txn, expensesK); err != nil {
			return err
		} else if !ok {
			if err := setJSON(txn, expensesK, expensesRecord{Expenses: []models.Expense{}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create event %s: %w", event.ID, err)
	}
	return nil
}

// GetEvent reads the metadata record.
func (s *Store) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	key, err := eventKey(eventID, metaKey)
	if err != nil {
		return models.Event{}, err
	}
	var event models.Event
	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, key, &event)
		return err
	})
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to read event %s: %w", eventID, err)
	}
	if !found {
		return models.Event{}, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	return event, nil
}

// ListEvents scans the metadata keys. Unreadable records are skipped.
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(eventsPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		suffix := []byte("/" + metaKey)
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if !bytes.HasSuffix(key, suffix) || bytes.Count(key, []byte("/")) != 2 {
				continue
			}
			var event models.Event
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				s.logger.Warn("Skipping unreadable event metadata", "key", string(key), "error", err)
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// DeleteEvent drops every key under the event prefix.
func (s *Store) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	if err := storage.CheckID(eventID); err != nil {
		return false, err
	}
	prefix := eventPrefix(eventID)

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to scan event %s: %w", eventID, err)
	}
	if len(keys) == 0 {
		return false, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return false, fmt.Errorf("failed to delete event %s: %w", eventID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return false, fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return true, nil
}

// LoadMembers reads the member record; a missing record is an empty list.
func (s *Store) LoadMembers(ctx context.Context, eventID string) ([]models.Member, error) {
	key, err := eventKey(eventID, membersKey)
	if err != nil {
		return nil, err
	}
	var rec membersRecord
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, key, &rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read members of %s: %w", eventID, err)
	}
	return rec.Members, nil
}

// SaveMembers replaces the member record.
func (s *Store) SaveMembers(ctx context.Context, eventID string, members []models.Member) error {
	key, err := eventKey(eventID, membersKey)
	if err != nil {
		return err
	}
	if members == nil {
		members = []models.Member{}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key, membersRecord{Members: members})
	})
	if err != nil {
		return fmt.Errorf("failed to write members of %s: %w", eventID, err)
	}
	return nil
}

// LoadExpenses reads the expense record; a missing record is an empty list.
func (s *Store) LoadExpenses(ctx context.Context, eventID string) ([]models.Expense, error) {
	key, err := eventKey(eventID, expensesKey)
	if err != nil {
		return nil, err
	}
	var rec expensesRecord
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, key, &rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read expenses of %s: %w", eventID, err)
	}
	return rec.Expenses, nil
}

// SaveExpenses replaces the expense record.
func (s *Store) SaveExpenses(ctx context.Context, eventID string, expenses []models.Expense) error {
	key, err := eventKey(eventID, expensesKey)
	if err != nil {
		return err
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key, expensesRecord{Expenses: expenses})
	})
	if err != nil {
		return fmt.Errorf("failed to write expenses of %s: %w", eventID, err)
	}
	return nil
}

// SaveReceipt stores the bytes under the receipt key. Existing receipts are
// never rewritten.
func (s *Store) SaveReceipt(ctx context.Context, eventID, expenseID, name string, data []byte) (string, error) {
	if err := storage.CheckID(expenseID); err != nil {
		return "", err
	}
	if err := storage.CheckID(name); err != nil {
		return "", err
	}
	ref := storage.ReceiptRef(expenseID, name)
	key, err := eventKey(eventID, ref)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		ok, err := has(txn, key)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("receipt %s already exists", ref)
		}
		return txn.Set(key, append([]byte{}, data...))
	})
	if err != nil {
		return "", fmt.Errorf("failed to write receipt %s: %w", name, err)
	}
	return ref, nil
}

// OpenReceipt copies the receipt bytes out of the database.
func (s *Store) OpenReceipt(ctx context.Context, eventID, ref string) (io.ReadCloser, error) {
	expenseID, name, err := storage.ParseReceiptRef(ref)
	if err != nil {
		return nil, err
	}
	key, err := eventKey(eventID, storage.ReceiptRef(expenseID, name))
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("receipt %s: %w", ref, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt %s: %w", ref, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func has(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return true, fmt.Errorf("corrupt record %s: %w", key, err)
	}
	return true, nil
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return txn.Set(key, buf.Bytes())
}
