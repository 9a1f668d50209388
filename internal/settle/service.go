// Package settle implements the event registry, member directory and expense
// ledger on top of a storage.Store, and feeds the settlement engine.
package settle

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

const (
	// DefaultMaxReceiptBytes caps a single receipt upload.
	DefaultMaxReceiptBytes = 20 << 20

	// DefaultReceiptExt is used when an upload name has no extension.
	DefaultReceiptExt = ".jpg"
)

// DefaultReceiptExtensions are the image types accepted as receipts.
var DefaultReceiptExtensions = []string{".png", ".jpg", ".jpeg", ".heic"}

// Service runs the event operations against a store.
type Service struct {
	store           storage.Store
	roster          []models.Member
	maxReceiptBytes int64
	extensions      map[string]bool
	now             func() time.Time
	newName         func() string
	logger          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRoster sets the member list seeded into new events.
func WithRoster(roster []models.Member) Option {
	return func(s *Service) {
		s.roster = append([]models.Member(nil), roster...)
	}
}

// WithMaxReceiptBytes sets the receipt size limit. Zero or less keeps the
// default.
func WithMaxReceiptBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReceiptBytes = n
		}
	}
}

// WithReceiptExtensions replaces the accepted receipt extensions. Entries
// are lower-cased and given a leading dot if missing.
func WithReceiptExtensions(exts []string) Option {
	return func(s *Service) {
		if len(exts) == 0 {
			return
		}
		s.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			s.extensions[normalizeExt(ext)] = true
		}
	}
}

// WithClock overrides the time source used for creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service backed by store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		maxReceiptBytes: DefaultMaxReceiptBytes,
		now:             time.Now,
		newName: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	WithReceiptExtensions(DefaultReceiptExtensions)(s)
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() storage.Store {
	return s.store
}

func (s *Service) today() string {
	return s.now().Format(models.DateLayout)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
