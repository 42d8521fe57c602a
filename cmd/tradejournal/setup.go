package main

import (
	"context"
	"fmt"
	"io"

	"github.com/newthinker/tradejournal/internal/config"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/notifier"
	"github.com/newthinker/tradejournal/internal/notifier/telegram"
	"github.com/newthinker/tradejournal/internal/notifier/webhook"
	"github.com/newthinker/tradejournal/internal/report"
	"github.com/newthinker/tradejournal/internal/storage/archive"
	"github.com/newthinker/tradejournal/internal/storage/trade"
	"go.uber.org/zap"
)

// loadConfig reads --config, falling back to defaults, and validates it.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured trade store and loads storage.import_path
// into it. The returned closer is never nil.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (trade.Store, io.Closer, error) {
	var store trade.Store
	var closer io.Closer = nopCloser{}

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := trade.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening trade store: %w", err)
		}
		store, closer = s, s
	default:
		store = trade.NewMemoryStore(cfg.Storage.MaxTrades)
	}

	if cfg.Storage.ImportPath != "" {
		trades, err := loadTrades(cfg.Storage.ImportPath, cfg.Account.ID)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		if err := trade.SaveAll(ctx, store, trades); err != nil {
			closer.Close()
			return nil, nil, fmt.Errorf("importing trades: %w", err)
		}
		log.Info("trades imported",
			zap.String("path", cfg.Storage.ImportPath),
			zap.Int("count", len(trades)),
		)
	}

	return store, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// loadTrades reads a CSV or JSON trade file and assigns trades without an
// account to account.
func loadTrades(path, account string) ([]core.Trade, error) {
	trades, err := trade.ImportFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading trades from %s: %w", path, err)
	}
	for i := range trades {
		if trades[i].AccountID == "" {
			trades[i].AccountID = account
		}
	}
	return trades, nil
}

// buildNotifiers initializes every enabled notifier.
func buildNotifiers(cfg *config.Config) ([]notifier.Notifier, error) {
	var out []notifier.Notifier
	for _, nc := range cfg.NotifierConfigs() {
		var n notifier.Notifier
		switch nc.Type {
		case "telegram":
			n = telegram.New("", "")
		case "webhook":
			n = webhook.New("", nil)
		default:
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notifier %q", nc.Type))
		}
		if err := n.Init(nc); err != nil {
			return nil, core.WrapError(core.ErrNotifierFailed, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// openArchiver opens the configured report archive.
func openArchiver(cfg *config.Config, log *zap.Logger) (*report.Archiver, error) {
	storage, err := archive.New(cfg.ArchiveStorage())
	if err != nil {
		return nil, fmt.Errorf("opening report archive: %w", err)
	}
	return report.NewArchiver(storage, log.Named("archive")), nil
}
