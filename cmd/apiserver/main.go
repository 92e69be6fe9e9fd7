// Command apiserver serves the phimark HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/phimark/internal/config"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/phimark/internal/interfaces/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	level := logging.NewLevel(cfg.Log.Level)
	logger, err := logging.NewLoggerWithLevel(cfg.Log, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	if *configPath != "" {
		err := config.Watch(*configPath, func(next *config.Config) {
			level.Set(next.Log.Level)
			logger.Info("configuration reloaded", logging.String("log_level", level.String()))
		}, func(err error) {
			logger.Warn("ignoring invalid configuration", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration watch disabled", logging.Err(err))
		}
	}

	srv, err := httpserver.NewAPIServer(cfg, logger, version)
	if err != nil {
		logger.Fatal("failed to assemble API server", logging.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting phimark API server",
		logging.String("version", version),
		logging.String("addr", srv.Addr()),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("API server stopped with error", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("API server stopped")
}
