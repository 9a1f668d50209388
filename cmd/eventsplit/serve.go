package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/eventsplit/internal/auth"
	"github.com/mmynk/eventsplit/internal/config"
	"github.com/mmynk/eventsplit/internal/export"
	"github.com/mmynk/eventsplit/internal/server"
)

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			commonRun()
			return serveRun(cmd)
		},
	}
	return cmd
}

func serveRun(cmd *cobra.Command) error {
	core, store, cfg, err := openCore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	authenticator, err := auth.NewSharedPassword(cfg.Password, cfg.PasswordHash)
	if err != nil {
		return err
	}
	if !authenticator.Enabled() {
		slog.Warn("No password configured, the API is open to anyone who can reach it")
	}

	opts := []server.Option{
		server.WithAuth(authenticator, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)),
		server.WithExporter(export.New(export.WithPDFFont(cfg.PDFFont))),
		server.WithLogger(slog.Default()),
	}
	if cfg.MetricsPort == 0 {
		opts = append(opts, server.WithMetricsOnAPI())
	}
	srv := server.New(core, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{{
		Addr:    net.JoinHostPort(cfg.BindAddr, strconv.FormatUint(uint64(cfg.Port), 10)),
		Handler: srv.Handler(),
	}}
	if cfg.MetricsPort != 0 {
		servers = append(servers, &http.Server{
			Addr:    net.JoinHostPort(cfg.BindAddr, strconv.FormatUint(uint64(cfg.MetricsPort), 10)),
			Handler: srv.MetricsHandler(),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			slog.Info("Server starting", "address", s.Addr, "backend", cfg.Backend)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s failed: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(servers, cfg)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func shutdown(servers []*http.Server, cfg *config.Config) error {
	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
		}
	}
	return errors.Join(errs...)
}
