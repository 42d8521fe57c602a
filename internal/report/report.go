// Package report assembles performance, score and risk results for one
// account into a single snapshot that can be rendered or archived.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/performance"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/newthinker/tradejournal/internal/score"
)

// Options configure Build.
type Options struct {
	Account         string
	StartingBalance float64
	Settings        risk.Settings
	KellyMinSample  int
	// Now stamps the report and anchors risk windows. Zero uses the
	// current time.
	Now time.Time
}

// Report is one analytics snapshot.
type Report struct {
	ID              string    `json:"id"`
	GeneratedAt     time.Time `json:"generated_at"`
	Account         string    `json:"account,omitempty"`
	StartingBalance float64   `json:"starting_balance"`

	Performance performance.PerformanceMetrics `json:"performance"`
	Score       score.Result                   `json:"score"`

	Risk             risk.Metrics     `json:"risk"`
	Rules            []risk.Rule      `json:"rules"`
	RiskStatus       risk.Status      `json:"risk_status"`
	Kelly            risk.KellyResult `json:"kelly"`
	SuggestedRiskPct float64          `json:"suggested_risk_pct"`

	Daily []performance.DailyAggregate `json:"daily"`
}

// Build computes every section of a report from trades.
func Build(trades []core.Trade, opts Options) Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	metrics := risk.ComputeMetrics(trades, opts.StartingBalance, now)
	rules := risk.Evaluate(opts.Settings, metrics)
	kelly := risk.Kelly(trades, opts.KellyMinSample)

	return Report{
		ID:               uuid.NewString(),
		GeneratedAt:      now,
		Account:          opts.Account,
		StartingBalance:  opts.StartingBalance,
		Performance:      performance.Calculate(trades, performance.Options{StartingBalance: opts.StartingBalance}),
		Score:            score.FromTrades(trades, opts.StartingBalance),
		Risk:             metrics,
		Rules:            rules,
		RiskStatus:       risk.Worst(rules),
		Kelly:            kelly,
		SuggestedRiskPct: kelly.SuggestedRiskPct(opts.Settings),
		Daily:            performance.DailyAggregates(trades),
	}
}
