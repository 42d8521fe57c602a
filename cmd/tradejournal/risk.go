package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/logger"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	riskTrades  string
	riskBalance float64
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Check the account against its risk limits",
	RunE:  runRisk,
}

func init() {
	riskCmd.Flags().StringVar(&riskTrades, "trades", "", "CSV or JSON trade file (default: configured store)")
	riskCmd.Flags().Float64Var(&riskBalance, "balance", 0, "starting balance (default from config)")

	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	var trades []core.Trade
	if riskTrades != "" {
		trades, err = loadTrades(riskTrades, cfg.Account.ID)
	} else {
		trades, err = storedTrades(context.Background(), cfg, log)
	}
	if err != nil {
		return err
	}

	balance := cfg.Account.StartingBalance
	if cmd.Flags().Changed("balance") {
		balance = riskBalance
	}

	settings := cfg.RiskSettings()
	m := risk.ComputeMetrics(trades, balance, time.Now())
	rules := risk.Evaluate(settings, m)
	kelly := risk.Kelly(trades, cfg.Kelly.MinSample)

	writeRisk(cmd.OutOrStdout(), m, rules, kelly, kelly.SuggestedRiskPct(settings))

	log.Debug("risk checked",
		zap.Int("trades", len(trades)),
		zap.String("status", string(risk.Worst(rules))),
	)
	return nil
}

func writeRisk(out io.Writer, m risk.Metrics, rules []risk.Rule, kelly risk.KellyResult, suggested float64) {
	fmt.Fprintf(out, "Equity:      %.2f (peak %.2f, drawdown %.2f%%)\n", m.Equity, m.PeakEquity, m.CurrentDrawdownPct)
	fmt.Fprintf(out, "Open:        %d positions, %.2f at risk (%.2f%%)\n", m.OpenPositions, m.OpenRisk, m.OpenRiskPct)
	fmt.Fprintf(out, "Loss streak: %d\n", m.ConsecutiveLosses)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tCURRENT\tLIMIT\tUSED\tSTATUS\t")
	fmt.Fprintln(w, "----\t-------\t-----\t----\t------\t")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f%%\t%s\t\n",
			r.Name, r.Current, r.Limit, r.Utilization*100, strings.ToUpper(string(r.Status)))
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Overall:     %s\n", strings.ToUpper(string(risk.Worst(rules))))
	if kelly.Sufficient {
		fmt.Fprintf(out, "Kelly:       %.2f%% (half %.2f%%), suggested risk %.2f%% per trade\n",
			kelly.Kelly*100, kelly.HalfKelly*100, suggested)
	} else {
		fmt.Fprintf(out, "Kelly:       n/a (%d closed trades)\n", kelly.SampleSize)
	}
}
