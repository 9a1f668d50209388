// Package config loads eventsplit settings from defaults, an optional YAML
// file, a .env file and EVENTSPLIT_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/eventsplit/internal/models"
)

type ctxKey string

const configContextKey ctxKey = "eventsplit.config"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "eventsplit"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Backends lists the storage backends that can be configured.
var Backends = []string{BackendFile, BackendSQLite, BackendBadger}

var logLevels = []string{"debug", "info", "warn", "error"}

// WithContext stores cfg in ctx.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

// FromContext returns the config stored by WithContext, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	// Storage
	DataDir    string `yaml:"dataDir"    split_words:"true"`
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlitePath" envconfig:"SQLITE_PATH"`
	BadgerDir  string `yaml:"badgerDir"  split_words:"true"`

	// HTTP server
	BindAddr        string        `yaml:"bindAddr"        split_words:"true"`
	Port            uint          `yaml:"port"`
	MetricsPort     uint          `yaml:"metricsPort"     split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`

	// Access gate
	Password     string        `yaml:"password"`
	PasswordHash string        `yaml:"passwordHash" split_words:"true"`
	JWTSecret    string        `yaml:"jwtSecret"    split_words:"true"`
	TokenTTL     time.Duration `yaml:"tokenTTL"     split_words:"true"`

	// Events and receipts
	MaxReceiptBytes   int64           `yaml:"maxReceiptBytes"   split_words:"true"`
	ReceiptExtensions []string        `yaml:"receiptExtensions" split_words:"true"`
	DefaultRoster     []models.Member `yaml:"defaultRoster"     ignored:"true"`

	// Export
	PDFFont string `yaml:"pdfFont" split_words:"true"`

	LogLevel string `yaml:"logLevel" split_words:"true"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:           "data",
		Backend:           BackendFile,
		BindAddr:          "0.0.0.0",
		Port:              8080,
		MetricsPort:       9090,
		ShutdownTimeout:   30 * time.Second,
		TokenTTL:          7 * 24 * time.Hour,
		MaxReceiptBytes:   20 << 20,
		ReceiptExtensions: []string{".png", ".jpg", ".jpeg", ".heic"},
		DefaultRoster:     DefaultRoster(),
		LogLevel:          "info",
	}
}

// Load builds the config. An empty configFile falls back to
// ~/.eventsplit/eventsplit.yaml when it exists; an empty envFile falls back
// to ".env" in the working directory. Missing fallback files are skipped.
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".eventsplit", "eventsplit.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	explicitEnv := envFile != ""
	if !explicitEnv {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil {
		if explicitEnv || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	return cfg, nil
}

// StorePath is the location handed to the configured backend.
func (c *Config) StorePath() string {
	switch c.Backend {
	case BackendSQLite:
		if c.SQLitePath != "" {
			return c.SQLitePath
		}
		return filepath.Join(c.DataDir, "eventsplit.db")
	case BackendBadger:
		if c.BadgerDir != "" {
			return c.BadgerDir
		}
		return filepath.Join(c.DataDir, "badger")
	default:
		return c.DataDir
	}
}

// AuthEnabled reports whether the shared-password gate is on.
func (c *Config) AuthEnabled() bool {
	return c.Password != "" || c.PasswordHash != ""
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(Backends, c.Backend) {
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, Backends))
	}
	if c.StorePath() == "" {
		problems = append(problems, "storage path cannot be empty")
	}

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if c.MetricsPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid metrics port %d: must be at most 65535", c.MetricsPort))
	} else if c.MetricsPort != 0 && c.MetricsPort == c.Port {
		problems = append(problems, fmt.Sprintf("metrics port %d collides with the API port", c.MetricsPort))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if c.Password != "" && c.PasswordHash != "" {
		problems = append(problems, "password and passwordHash are mutually exclusive")
	}
	if c.AuthEnabled() {
		if c.JWTSecret == "" {
			problems = append(problems, "jwtSecret is required when a password is configured")
		}
		if c.TokenTTL <= 0 {
			problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
		}
	}

	if c.MaxReceiptBytes <= 0 {
		problems = append(problems, fmt.Sprintf("invalid max receipt size %d: must be positive", c.MaxReceiptBytes))
	}
	for _, ext := range c.ReceiptExtensions {
		if strings.Trim(ext, ". ") == "" {
			problems = append(problems, fmt.Sprintf("invalid receipt extension '%s'", ext))
		}
	}

	seen := make(map[string]bool, len(c.DefaultRoster))
	for _, m := range c.DefaultRoster {
		name := strings.TrimSpace(m.Name)
		switch {
		case name == "":
			problems = append(problems, "default roster contains a member without a name")
		case seen[name]:
			problems = append(problems, fmt.Sprintf("default roster lists '%s' twice", name))
		}
		seen[name] = true
	}

	if c.PDFFont != "" {
		if _, err := os.Stat(c.PDFFont); err != nil {
			problems = append(problems, fmt.Sprintf("PDF font '%s' is not readable: %v", c.PDFFont, err))
		}
	}

	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
