package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"household-ledger/internal/app"
	"household-ledger/internal/buildinfo"
	"household-ledger/internal/handlers"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to household.yaml (defaults to $HOUSEHOLD_CONFIG)")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath, os.Getenv)
	if err != nil {
		return err
	}
	deps, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	defer deps.Close()

	if cfg.Reminders.Enabled {
		deps.Scheduler.Start()
		defer deps.Scheduler.Stop()
	} else {
		log.Println("Reminders are disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.LoggingMiddleware(setupRouter(deps.Handlers, deps.Outbox)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server %s (%s) starting on %s", buildinfo.Version, buildinfo.Commit, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	log.Println("Server stopped")
	return nil
}

func setupRouter(h *handlers.Handlers, outbox handlers.Drainer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /api/turn", h.Turn)
	mux.HandleFunc("GET /api/notifications/{userID}", h.Notifications(outbox))
	return mux
}
