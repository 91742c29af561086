package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"quilbridge/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		listen     = flag.String("listen", "", "listen address (overrides config)")
		dataDir    = flag.String("data", "", "job store directory (overrides config; empty keeps jobs in memory)")
		workers    = flag.Int("workers", 0, "simulation workers (overrides config)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "qvmd: build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("qvmd", zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg server.Config, logger *zap.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := server.NewManager(cfg, store, logger)
	if err := manager.Start(ctx); err != nil {
		return err
	}
	defer manager.Stop()

	srv, err := server.NewServer(cfg, manager, logger)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("qvmd listening",
			zap.String("addr", cfg.Listen),
			zap.String("data_dir", cfg.DataDir),
			zap.Int("workers", cfg.Workers))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Stop intake first; the deferred manager.Stop drains the workers.
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(cfg server.Config) (*server.JobStore, error) {
	if cfg.DataDir == "" {
		return server.OpenMemoryJobStore()
	}
	return server.OpenJobStore(cfg.DataDir)
}
