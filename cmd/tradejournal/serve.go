package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/tradejournal/internal/api"
	"github.com/newthinker/tradejournal/internal/app"
	"github.com/newthinker/tradejournal/internal/logger"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analytics API and risk monitor",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	deps := api.Dependencies{Config: cfg, Store: store}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewRegistry()
	}

	if cfg.Archive.Enabled {
		archiver, err := openArchiver(cfg, log)
		if err != nil {
			return err
		}
		deps.Archiver = archiver
	}

	var monitor *app.App
	if cfg.Alerts.Enabled {
		notifiers, err := buildNotifiers(cfg)
		if err != nil {
			return err
		}

		monitor = app.New(cfg, store, logger.Named(log, "monitor"))
		for _, n := range notifiers {
			if err := monitor.RegisterNotifier(n); err != nil {
				return fmt.Errorf("registering notifier %s: %w", n.Name(), err)
			}
		}
		if deps.Metrics != nil {
			monitor.SetMetrics(deps.Metrics)
		}
		deps.Monitor = monitor
	}

	log.Info("starting tradejournal server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("account", cfg.Account.ID),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("alerts", cfg.Alerts.Enabled),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MetricsPath: cfg.Metrics.Path,
	}, deps, logger.Named(log, "api"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if monitor != nil {
		go func() {
			if err := monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("risk monitor stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down tradejournal server")
	if monitor != nil {
		monitor.Stop()
	}

	// Graceful shutdown
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
