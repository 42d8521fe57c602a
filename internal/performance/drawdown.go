package performance

import (
	"sort"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

// Point is one step of a cumulative series.
type Point struct {
	Time  time.Time
	Value float64
}

// Drawdown describes the largest peak-to-trough decline of a cumulative
// series. Peak and Trough are cumulative values; Amount is Peak - Trough and
// never negative. A zero PeakTime means the decline started from the
// opening baseline.
type Drawdown struct {
	Amount     float64   `json:"amount"`
	Peak       float64   `json:"peak"`
	Trough     float64   `json:"trough"`
	PeakTime   time.Time `json:"peak_time"`
	TroughTime time.Time `json:"trough_time"`
}

// MaxDrawdown accumulates points in time order from a zero baseline and
// returns the largest decline from a running peak. Ties in time keep input
// order.
func MaxDrawdown(points []Point) Drawdown {
	if len(points) == 0 {
		return Drawdown{}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var dd Drawdown
	var cumulative, peak float64
	var peakTime time.Time

	for _, p := range sorted {
		cumulative += p.Value
		if cumulative > peak {
			peak = cumulative
			peakTime = p.Time
		}
		if decline := peak - cumulative; decline > dd.Amount {
			dd = Drawdown{
				Amount:     decline,
				Peak:       peak,
				Trough:     cumulative,
				PeakTime:   peakTime,
				TroughTime: p.Time,
			}
		}
	}

	return dd
}

// RDrawdown is the maximum drawdown of the cumulative R curve. Trades
// without a defined R-multiple are skipped.
func RDrawdown(trades []core.Trade) Drawdown {
	points := make([]Point, 0, len(trades))
	for _, t := range trades {
		if r, ok := ComputeR(t); ok {
			points = append(points, Point{Time: t.ClosedAt(), Value: r})
		}
	}
	return MaxDrawdown(points)
}

// CurrencyDrawdown is the maximum drawdown of cumulative net P&L over
// closed trades.
func CurrencyDrawdown(trades []core.Trade) Drawdown {
	points := make([]Point, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			points = append(points, Point{Time: t.ClosedAt(), Value: t.NetPnL()})
		}
	}
	return MaxDrawdown(points)
}

// DrawdownPct expresses dd as a percentage of the equity at its peak, where
// equity is startingBalance plus the cumulative value. Returns 0 when the
// peak equity is not positive.
func DrawdownPct(dd Drawdown, startingBalance float64) float64 {
	equity := startingBalance + dd.Peak
	if equity <= 0 {
		return 0
	}
	return dd.Amount / equity * 100
}
