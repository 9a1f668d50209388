package badger

import (
	"log/slog"
	"time"
)

// OptionFunc configures a Store.
type OptionFunc func(*Store)

// WithDataDir stores data on disk under dir. Without it the store is kept
// in memory and lost on Close.
func WithDataDir(dir string) OptionFunc {
	return func(s *Store) {
		s.dataDir = dir
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithGcInterval sets how often the value log is garbage collected. Zero
// disables GC.
func WithGcInterval(interval time.Duration) OptionFunc {
	return func(s *Store) {
		s.gcInterval = interval
	}
}
