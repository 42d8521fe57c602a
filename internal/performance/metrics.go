package performance

import (
	"sort"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

// Options tune Calculate.
type Options struct {
	// StartingBalance anchors percentage drawdown and annualized return.
	// Zero leaves both percentages at 0.
	StartingBalance float64
}

// HoldTimeStats summarizes hold durations in hours.
type HoldTimeStats struct {
	Samples     int     `json:"samples"`
	AvgHours    float64 `json:"avg_hours"`
	MedianHours float64 `json:"median_hours"`
	MinHours    float64 `json:"min_hours"`
	MaxHours    float64 `json:"max_hours"`
}

// PerformanceMetrics is the full result of one Calculate call.
type PerformanceMetrics struct {
	TotalTrades   int     `json:"total_trades"`
	ClosedTrades  int     `json:"closed_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	ProfitFactor  float64 `json:"profit_factor"`
	WinLossRatio  float64 `json:"win_loss_ratio"`

	// R-based. Expectancy, Sharpe and Sortino are nil when undefined.
	Expectancy     *float64 `json:"expectancy"`
	NetR           float64  `json:"net_r"`
	RSamples       int      `json:"r_samples"`
	ExcludedFromR  int      `json:"excluded_from_r"`
	Sharpe         *float64 `json:"sharpe"`
	Sortino        *float64 `json:"sortino"`
	RecoveryFactor float64  `json:"recovery_factor"`
	MaxDrawdownR   float64  `json:"max_drawdown_r"`
	RDrawdown      Drawdown `json:"r_drawdown"`

	// Currency-based.
	GrossWins           float64  `json:"gross_wins"`
	GrossLosses         float64  `json:"gross_losses"`
	NetProfit           float64  `json:"net_profit"`
	TotalFees           float64  `json:"total_fees"`
	MaxDrawdown         float64  `json:"max_drawdown"`
	MaxDrawdownPct      float64  `json:"max_drawdown_pct"`
	CurrencyDrawdown    Drawdown `json:"currency_drawdown"`
	AnnualizedReturnPct float64  `json:"annualized_return_pct"`
	Calmar              float64  `json:"calmar"`
	AvgWin              float64  `json:"avg_win"`
	AvgLoss             float64  `json:"avg_loss"`
	LargestWin          float64  `json:"largest_win"`
	LargestLoss         float64  `json:"largest_loss"`
	BestDay             float64  `json:"best_day"`
	WorstDay            float64  `json:"worst_day"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	Monthly  []MonthlyAggregate `json:"monthly"`
	HoldTime HoldTimeStats      `json:"hold_time"`
}

// Calculate computes PerformanceMetrics for trades.
func Calculate(trades []core.Trade, opts Options) PerformanceMetrics {
	stats := CalculateStats(trades)

	m := PerformanceMetrics{
		TotalTrades:   stats.TotalTrades,
		ClosedTrades:  stats.ClosedTrades,
		WinningTrades: stats.WinningTrades,
		LosingTrades:  stats.LosingTrades,
		WinRate:       stats.WinRate,
		ProfitFactor:  stats.ProfitFactor,
		WinLossRatio:  stats.WinLossRatio,
		GrossWins:     stats.GrossWins,
		GrossLosses:   stats.GrossLosses,
		NetProfit:     stats.NetProfit,
		TotalFees:     stats.TotalFees,
		AvgWin:        stats.AvgWin,
		AvgLoss:       stats.AvgLoss,
		LargestWin:    stats.LargestWin,
		LargestLoss:   stats.LargestLoss,
		BestDay:       stats.BestDay,
		WorstDay:      stats.WorstDay,
		Monthly:       MonthlyAggregates(trades),
		HoldTime:      holdTimeStats(trades),
	}

	rs := RSeries(trades)
	m.RSamples = len(rs)
	m.ExcludedFromR = stats.ClosedTrades - countClosedWithR(trades)
	m.NetR = sum(rs)
	if len(rs) > 0 {
		e := mean(rs)
		m.Expectancy = &e
	}
	if v, ok := Sharpe(rs); ok {
		m.Sharpe = &v
	}
	if v, ok := Sortino(rs); ok {
		m.Sortino = &v
	}

	m.RDrawdown = RDrawdown(trades)
	m.MaxDrawdownR = m.RDrawdown.Amount
	m.RecoveryFactor = RecoveryFactor(m.NetR, m.MaxDrawdownR)

	m.CurrencyDrawdown = CurrencyDrawdown(trades)
	m.MaxDrawdown = m.CurrencyDrawdown.Amount
	m.MaxDrawdownPct = DrawdownPct(m.CurrencyDrawdown, opts.StartingBalance)
	m.AnnualizedReturnPct = AnnualizedReturnPct(stats.NetProfit, opts.StartingBalance, tradingSpan(trades))
	m.Calmar = Calmar(m.AnnualizedReturnPct, m.MaxDrawdownPct)

	m.MaxConsecutiveWins, m.MaxConsecutiveLosses = streaks(trades)

	return m
}

func countClosedWithR(trades []core.Trade) int {
	var n int
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		if _, ok := ComputeR(t); ok {
			n++
		}
	}
	return n
}

// SortedClosed returns the closed trades ordered by close time. Ties keep
// input order.
func SortedClosed(trades []core.Trade) []core.Trade {
	closed := make([]core.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].ClosedAt().Before(closed[j].ClosedAt())
	})
	return closed
}

// streaks returns the longest runs of consecutive wins and losses. A
// breakeven trade ends both runs.
func streaks(trades []core.Trade) (maxWins, maxLosses int) {
	var wins, losses int
	for _, t := range SortedClosed(trades) {
		switch {
		case t.PnL > 0:
			wins++
			losses = 0
		case t.PnL < 0:
			losses++
			wins = 0
		default:
			wins, losses = 0, 0
		}
		maxWins = max(maxWins, wins)
		maxLosses = max(maxLosses, losses)
	}
	return maxWins, maxLosses
}

func holdTimeStats(trades []core.Trade) HoldTimeStats {
	var hours []float64
	for _, t := range trades {
		if d, ok := t.HoldDuration(); ok {
			hours = append(hours, d.Hours())
		}
	}
	if len(hours) == 0 {
		return HoldTimeStats{}
	}

	sort.Float64s(hours)
	n := len(hours)
	median := hours[n/2]
	if n%2 == 0 {
		median = (hours[n/2-1] + hours[n/2]) / 2
	}

	return HoldTimeStats{
		Samples:     n,
		AvgHours:    mean(hours),
		MedianHours: median,
		MinHours:    hours[0],
		MaxHours:    hours[n-1],
	}
}

// tradingSpan runs from the earliest entry to the latest close among closed
// trades.
func tradingSpan(trades []core.Trade) time.Duration {
	var first, last time.Time
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		if first.IsZero() || t.EntryTime.Before(first) {
			first = t.EntryTime
		}
		if closed := t.ClosedAt(); closed.After(last) {
			last = closed
		}
	}
	if first.IsZero() || !last.After(first) {
		return 0
	}
	return last.Sub(first)
}
