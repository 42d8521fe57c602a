package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tradejournal/internal/config"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/logger"
	"github.com/newthinker/tradejournal/internal/report"
	"github.com/newthinker/tradejournal/internal/storage/trade"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportTrades  string
	reportBalance float64
	reportFormat  string
	reportArchive bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a performance, score and risk report",
	Long: `Build a report over a CSV or JSON trade file, or over the configured
trade store when --trades is omitted.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportTrades, "trades", "", "CSV or JSON trade file")
	reportCmd.Flags().Float64Var(&reportBalance, "balance", 0, "starting balance (default from config)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", report.FormatText, "output format: text, json or yaml")
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "store the report in the configured archive")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var trades []core.Trade
	if reportTrades != "" {
		trades, err = loadTrades(reportTrades, cfg.Account.ID)
	} else {
		trades, err = storedTrades(ctx, cfg, log)
	}
	if err != nil {
		return err
	}

	balance := cfg.Account.StartingBalance
	if cmd.Flags().Changed("balance") {
		if reportBalance < 0 {
			return fmt.Errorf("balance must not be negative")
		}
		balance = reportBalance
	}

	rep := report.Build(trades, report.Options{
		Account:         cfg.Account.ID,
		StartingBalance: balance,
		Settings:        cfg.RiskSettings(),
		KellyMinSample:  cfg.Kelly.MinSample,
		Now:             time.Now().UTC(),
	})

	if err := report.Render(cmd.OutOrStdout(), rep, reportFormat); err != nil {
		return err
	}

	if reportArchive {
		archiver, err := openArchiver(cfg, log)
		if err != nil {
			return err
		}
		p, err := archiver.Save(ctx, rep)
		if err != nil {
			return fmt.Errorf("archiving report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "archived %s\n", p)
	}

	log.Debug("report built", zap.String("id", rep.ID), zap.Int("trades", len(trades)))
	return nil
}

// storedTrades reads the account's trades from the configured store.
func storedTrades(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]core.Trade, error) {
	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return store.List(ctx, trade.ListFilter{AccountID: cfg.Account.ID})
}
