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

	"golang.org/x/sync/errgroup"

	"raceday/internal/platform/config"
	"raceday/internal/platform/httpserver"
	"raceday/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main loads configuration, wires the application and runs the HTTP server
// until SIGINT or SIGTERM. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := httpserver.New(cfg.Addr, app.Router, app.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting raceday", "addr", cfg.Addr, "storage", app.StorageKind, "email", cfg.EmailEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	g.Go(func() error {
		reloadOnSignal(gctx, hup, app.Program, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return app.Tracing.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type invalidator interface {
	Invalidate()
}

// reloadOnSignal drops the cached program schedule on every signal so edits
// to program_events show up before the cache TTL runs out.
func reloadOnSignal(ctx context.Context, signals <-chan os.Signal, program invalidator, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			program.Invalidate()
			log.Info("program schedule cache cleared", "signal", sig.String())
		}
	}
}
