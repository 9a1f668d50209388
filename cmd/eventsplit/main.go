package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mmynk/eventsplit/internal/config"
	"github.com/mmynk/eventsplit/pkg/logging"
)

const (
	programName = "eventsplit"
)

var globalFlags = struct {
	debug      bool
	configFile string
	envFile    string
	backend    string
	dataDir    string
}{}

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

// loadConfig reads the config, applies command line overrides and sets up
// logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(globalFlags.configFile, globalFlags.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if globalFlags.backend != "" {
		cfg.Backend = globalFlags.backend
	}
	if globalFlags.dataDir != "" {
		cfg.DataDir = globalFlags.dataDir
	}
	if globalFlags.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Setup(os.Stderr, cfg.LogLevel)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func commonRun() {
	// Configure max processes with our logger wrapper, toss undo func
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		slog.Warn("failed to set GOMAXPROCS", "error", err)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               programName,
		Short:             "Split shared event expenses and settle who owes whom",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", "", "path to a .env file (default ./.env when present)")
	rootCmd.PersistentFlags().
		StringVarP(&globalFlags.backend, "backend", "b", "", "storage backend: file, sqlite or badger")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.dataDir, "data-dir", "", "data directory")

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(eventCommand())
	rootCmd.AddCommand(memberCommand())
	rootCmd.AddCommand(expenseCommand())
	rootCmd.AddCommand(matrixCommand())
	rootCmd.AddCommand(balancesCommand())
	rootCmd.AddCommand(reconcileCommand())
	rootCmd.AddCommand(exportCommand())
	rootCmd.AddCommand(hashPasswordCommand())

	return rootCmd
}

func main() {
	logging.SetupFromEnv(os.Stderr)
	if err := newRootCommand().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
