package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"artemiz/internal/platform/config"
	"artemiz/internal/platform/httpserver"
	"artemiz/internal/platform/logger"
	"artemiz/internal/platform/postgres"
)

const shutdownTimeout = 10 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the database schema before serving")
}

// runServe runs the HTTP server and the audit worker until SIGINT or SIGTERM,
// then shuts both down.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	if migrateOnStart && a.db != nil {
		if err := postgres.Migrate(ctx, a.db); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	return a.run(ctx, httpserver.New(cfg.Addr, a.router, cfg.HTTP), log)
}

// server is the part of *http.Server that run drives.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is done or the server fails. Shutdown goes in order:
// finish in-flight requests, stop navigate-home timers, then drain the audit
// worker, so events emitted by the first two steps are still persisted.
func (a *app) run(ctx context.Context, srv server, log *slog.Logger) error {
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	defer stopAudit()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.auditWorker.Run(auditCtx)
	})
	g.Go(func() error {
		log.Info("starting artemiz")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopAudit()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.service.Close()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
