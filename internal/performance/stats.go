package performance

import (
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TradeStats holds currency-based aggregate statistics.
type TradeStats struct {
	TotalTrades     int     `json:"total_trades"`
	ClosedTrades    int     `json:"closed_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakevenTrades int     `json:"breakeven_trades"`
	WinRate         float64 `json:"win_rate"` // Percentage of closed trades that won
	GrossWins       float64 `json:"gross_wins"`
	GrossLosses     float64 `json:"gross_losses"` // Positive magnitude
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"` // Positive magnitude
	WinLossRatio    float64 `json:"win_loss_ratio"`
	BestDay         float64 `json:"best_day"`
	WorstDay        float64 `json:"worst_day"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"` // Signed, <= 0
	GrossPnL        float64 `json:"gross_pnl"`
	TotalFees       float64 `json:"total_fees"`
	NetProfit       float64 `json:"net_profit"`
	AvgHoldHours    float64 `json:"avg_hold_hours"`
}

// CalculateStats computes aggregate statistics from trades. Open trades count
// toward TotalTrades only; every ratio is taken over closed trades.
func CalculateStats(trades []core.Trade) TradeStats {
	stats := TradeStats{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	grossWins := decimal.Zero
	grossLosses := decimal.Zero
	grossPnL := decimal.Zero
	fees := decimal.Zero
	byEntryDay := make(map[string]decimal.Decimal)

	var holdHours float64
	var holdSamples int

	for _, t := range trades {
		if d, ok := t.HoldDuration(); ok {
			holdHours += d.Hours()
			holdSamples++
		}

		if !t.IsClosed() {
			continue
		}
		stats.ClosedTrades++

		pnl := decimal.NewFromFloat(t.PnL)
		grossPnL = grossPnL.Add(pnl)
		fees = fees.Add(decimal.NewFromFloat(t.Fees))

		day := t.EntryTime.Format(dateLayout)
		byEntryDay[day] = byEntryDay[day].Add(pnl)

		switch {
		case t.PnL > 0:
			stats.WinningTrades++
			grossWins = grossWins.Add(pnl)
			if t.PnL > stats.LargestWin {
				stats.LargestWin = t.PnL
			}
		case t.PnL < 0:
			stats.LosingTrades++
			grossLosses = grossLosses.Add(pnl.Abs())
			if t.PnL < stats.LargestLoss {
				stats.LargestLoss = t.PnL
			}
		default:
			stats.BreakevenTrades++
		}
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades) * 100
	}

	stats.GrossWins = grossWins.InexactFloat64()
	stats.GrossLosses = grossLosses.InexactFloat64()
	stats.ProfitFactor = profitFactor(stats.GrossWins, stats.GrossLosses)

	if stats.WinningTrades > 0 {
		stats.AvgWin = grossWins.Div(decimal.NewFromInt(int64(stats.WinningTrades))).InexactFloat64()
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = grossLosses.Div(decimal.NewFromInt(int64(stats.LosingTrades))).InexactFloat64()
	}
	if stats.AvgLoss > 0 {
		stats.WinLossRatio = stats.AvgWin / stats.AvgLoss
	}

	first := true
	for _, v := range byEntryDay {
		f := v.InexactFloat64()
		if first || f > stats.BestDay {
			stats.BestDay = f
		}
		if first || f < stats.WorstDay {
			stats.WorstDay = f
		}
		first = false
	}

	stats.GrossPnL = grossPnL.InexactFloat64()
	stats.TotalFees = fees.InexactFloat64()
	stats.NetProfit = grossPnL.Sub(fees).InexactFloat64()

	if holdSamples > 0 {
		stats.AvgHoldHours = holdHours / float64(holdSamples)
	}

	return stats
}

// profitFactor divides gross wins by gross losses. Without losses it falls
// back to the gross wins themselves so the result stays finite.
func profitFactor(grossWins, grossLosses float64) float64 {
	if grossLosses == 0 {
		if grossWins > 0 {
			return grossWins
		}
		return 0
	}
	return grossWins / grossLosses
}
