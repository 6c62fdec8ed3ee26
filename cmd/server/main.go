package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doclinks/internal/api"
	"github.com/dgallion1/doclinks/internal/config"
	"github.com/dgallion1/doclinks/internal/discovery"
	"github.com/dgallion1/doclinks/internal/fetch"
	"github.com/dgallion1/doclinks/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize fetchers and discoverers.
	stats := fetch.NewStats(cfg.StatsWindow)
	httpFetcher := fetch.NewHTTPFetcher(fetch.HTTPOptions{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		MaxBytes:  cfg.MaxFetchBytes,
		Stats:     stats,
	})
	remote := discovery.NewRemote(httpFetcher, log)

	var local *discovery.Local
	if cfg.AllowLocal {
		local = discovery.NewLocal(fetch.FileFetcher{}, log)
		local.Confine = cfg.LocalRoot
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, local, remote, log)
	orch.Start(context.Background())

	// Initialize HTTP server.
	srv := api.NewServer(orch, local, stats, log, cfg)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Error("listen failed", "port", cfg.Port, "error", err)
		os.Exit(1)
	}

	log.Info("starting doclinks",
		"port", cfg.Port,
		"local_enabled", cfg.AllowLocal,
		"local_root", cfg.LocalRoot,
		"auth", cfg.APIKey != "",
	)
	err = serve(ctx, httpServer, ln, log, func() {
		orch.Stop()
		httpFetcher.Close()
	})
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serve runs httpServer on ln until ctx is done, then shuts it down and runs
// release. release runs after the listener is closed so no handler can submit
// to a stopped pipeline, and serve returns only once release has finished.
func serve(ctx context.Context, httpServer *http.Server, ln net.Listener, log *slog.Logger, release func()) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		release()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	<-serveErr
	release()
	return err
}
