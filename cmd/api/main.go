package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearbooks/reconcile-backend/internal/api"
	"github.com/clearbooks/reconcile-backend/internal/application/service"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/config"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/logging"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configPath)
	logger := logging.NewLoggerWithSystem(cfg.Logging, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to open storage", "path", cfg.Storage.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	reconcileSvc := service.NewReconcileService(store, logger)

	serverCfg := api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIToken:       cfg.Server.APIToken,
	}
	server := api.NewServer(serverCfg, reconcileSvc, service.OptionsFromConfig(cfg.Matching), logger)

	// Run the server and wait for a shutdown signal
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
