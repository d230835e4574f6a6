// Command relayd runs the cross-chain swap relay daemon: it registers the
// configured chains, restores the order store, and serves the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomicport/relay-lib/api"
	"github.com/atomicport/relay-lib/config"
	"github.com/atomicport/relay-lib/orchestrator"
	"github.com/atomicport/relay-lib/relayer"
	"github.com/atomicport/relay-lib/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "relayd",
		Short: "Cross-chain HTLC swap relay daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Optional: local development overrides.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	timelocks, err := cfg.HTLCTimeLocks()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var orders store.OrderStore
	if cfg.DatabaseURL != "" {
		orders, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.Info("Using Postgres order store")
	} else {
		orders = store.NewMemoryStore()
		logger.Warn("Using in-memory order store, orders will not survive restarts")
	}

	relay := relayer.New(orders, orchestrator.Config{
		TimeLocks:     timelocks,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    time.Duration(cfg.RetryDelaySec) * time.Second,
		MaxWindowWait: time.Duration(cfg.MaxWindowWait) * time.Second,
	}, logger)

	chainConfigs, err := cfg.ChainConfigs()
	if err != nil {
		return err
	}
	for _, chainConfig := range chainConfigs {
		if err := relay.RegisterChain(ctx, chainConfig); err != nil {
			return err
		}
	}

	server := api.NewServer(relay, cfg.ListenAddr, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.WithField("error", err).Error("Server shutdown failed")
	}
	relay.Close()

	return nil
}
