package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dqx0.com/go/web/browzer"
	"dqx0.com/go/web/internal/config"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bind the address and serve requests until interrupted",
	Long: `Bind the configured address, register the manifest's routes and serve
until SIGINT or SIGTERM. On a signal the listener is closed, queued
connections are finished and the process exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("addr", ":8080", "address to listen on")
	f.Int("workers", 4, "number of connection workers")
	f.Int("queue-size", 0, "max connections waiting for a worker, beyond which clients get 503 (0 = unbounded)")
	f.Bool("hide-banner", false, "do not log the startup banner")
	f.Bool("gzip", false, "gzip larger responses for clients that accept it")
	mustBind("addr", f.Lookup("addr"))
	mustBind("workers", f.Lookup("workers"))
	mustBind("queue_size", f.Lookup("queue-size"))
	mustBind("hide_banner", f.Lookup("hide-banner"))
	mustBind("gzip", f.Lookup("gzip"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Error("cannot start server", "addr", cfg.Addr, "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serveUntilDone(ctx, srv, logger)
}

// newServer binds cfg.Addr and registers the configured routes.
func newServer(cfg *config.Config, logger *slog.Logger) (*browzer.WebServer, error) {
	srv, err := browzer.New(cfg.Addr, cfg.Workers)
	if err != nil {
		return nil, err
	}
	srv.Logger = logger
	srv.HideBanner = cfg.HideBanner
	srv.QueueSize = cfg.QueueSize
	srv.ReadHeaderTimeout = cfg.ReadHeaderTimeout
	srv.WriteTimeout = cfg.WriteTimeout
	srv.MaxHeaderBytes = cfg.MaxHeaderBytes
	srv.EnableGzip = cfg.Gzip

	if err := registerRoutes(cfg, srv); err != nil {
		_ = srv.Shutdown(context.Background())
		return nil, err
	}
	return srv, nil
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down within
// shutdownTimeout.
func serveUntilDone(ctx context.Context, srv *browzer.WebServer, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Listen() }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown requested")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, browzer.ErrServerClosed) {
		return err
	}
	return nil
}
