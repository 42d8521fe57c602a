package score

import (
	"math"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/performance"
)

// MaxScore is the upper bound of the composite score.
const MaxScore = 100

// Inputs are the statistics the composite score is built from.
type Inputs struct {
	TotalTrades  int
	WinRate      float64 // percent
	ProfitFactor float64
	WinLossRatio float64
	BestDay      float64
	WorstDay     float64
	NetProfit    float64
	MaxDrawdown  float64 // currency amount
}

// Breakdown shows how each sub-score was reached.
type Breakdown struct {
	WinRatePoints      float64 `json:"win_rate_points"`
	ProfitFactorPoints float64 `json:"profit_factor_points"`
	WinLossPoints      float64 `json:"win_loss_points"`
	ConsistencyPoints  float64 `json:"consistency_points"`
	DrawdownPoints     float64 `json:"drawdown_points"`
	RecoveryPoints     float64 `json:"recovery_points"`

	ConsistencyRatio float64 `json:"consistency_ratio"`
	DrawdownRatio    float64 `json:"drawdown_ratio"`
	RecoveryFactor   float64 `json:"recovery_factor"`
	// NoDrawdown is set when a profitable history never declined, which
	// earns full recovery points without a finite RecoveryFactor.
	NoDrawdown bool `json:"no_drawdown"`

	DrawdownPctOfBalance float64 `json:"drawdown_pct_of_balance"`
}

// Result is the composite score with its breakdown.
type Result struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// InputsFrom extracts score inputs from a trade set.
func InputsFrom(trades []core.Trade) Inputs {
	stats := performance.CalculateStats(trades)
	return Inputs{
		TotalTrades:  stats.TotalTrades,
		WinRate:      stats.WinRate,
		ProfitFactor: stats.ProfitFactor,
		WinLossRatio: stats.WinLossRatio,
		BestDay:      stats.BestDay,
		WorstDay:     stats.WorstDay,
		NetProfit:    stats.NetProfit,
		MaxDrawdown:  performance.CurrencyDrawdown(trades).Amount,
	}
}

// FromTrades scores a trade set.
func FromTrades(trades []core.Trade, totalBalance float64) Result {
	return Compute(InputsFrom(trades), totalBalance)
}

// Compute sums the six sub-scores into a value in [0, 100] rounded to two
// decimals. totalBalance only feeds Breakdown.DrawdownPctOfBalance.
func Compute(in Inputs, totalBalance float64) Result {
	if in.TotalTrades == 0 {
		return Result{}
	}

	var b Breakdown

	b.WinRatePoints = WinRateCurve.Eval(in.WinRate)
	b.ProfitFactorPoints = ProfitFactorCurve.Eval(in.ProfitFactor)
	b.WinLossPoints = WinLossRatioCurve.Eval(in.WinLossRatio)

	b.ConsistencyRatio = performance.ConsistencyRatio(in.BestDay, in.WorstDay)
	b.ConsistencyPoints = ConsistencyCurve.Eval(b.ConsistencyRatio)

	maxDD := math.Abs(in.MaxDrawdown)

	b.DrawdownRatio = 100
	if in.NetProfit > 0 {
		b.DrawdownRatio = maxDD / in.NetProfit * 100
	}
	b.DrawdownPoints = DrawdownCurve.Eval(b.DrawdownRatio)

	switch {
	case maxDD > 0:
		b.RecoveryFactor = in.NetProfit / maxDD
		b.RecoveryPoints = RecoveryCurve.Eval(b.RecoveryFactor)
	case in.NetProfit > 0:
		b.NoDrawdown = true
		b.RecoveryPoints = RecoveryCurve.Eval(math.Inf(1))
	}

	if totalBalance > 0 {
		b.DrawdownPctOfBalance = maxDD / totalBalance * 100
	}

	total := b.WinRatePoints + b.ProfitFactorPoints + b.WinLossPoints +
		b.ConsistencyPoints + b.DrawdownPoints + b.RecoveryPoints
	total = math.Max(0, math.Min(MaxScore, total))

	return Result{Score: core.Round2(total), Breakdown: b}
}
