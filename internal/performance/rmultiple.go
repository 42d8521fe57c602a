// Package performance turns a trade collection into risk-adjusted
// performance statistics. Every function is pure: it reads the trades it is
// given and returns a fresh value.
//
// R-based statistics only see trades with a defined R-multiple. Trades
// without a stop, with a zero-width stop or without an exit are excluded
// from them but still count in currency statistics.
package performance

import (
	"math"

	"github.com/newthinker/tradejournal/internal/core"
)

// ComputeR returns the trade outcome in units of initial risk, rounded to two
// decimals. ok is false when the R-multiple is undefined: missing entry, exit
// or stop price, or zero distance between entry and stop. A breakeven trade
// returns (0, true).
func ComputeR(t core.Trade) (float64, bool) {
	if t.ExitPrice == nil || t.StopPrice == nil || t.EntryPrice <= 0 {
		return 0, false
	}

	risk := math.Abs(t.EntryPrice - *t.StopPrice)
	if risk == 0 {
		return 0, false
	}

	r := ((*t.ExitPrice - t.EntryPrice) * t.Direction.Multiplier()) / risk
	return core.Round2(r), true
}

// RSeries returns the defined R-multiples in input order.
func RSeries(trades []core.Trade) []float64 {
	rs := make([]float64, 0, len(trades))
	for _, t := range trades {
		if r, ok := ComputeR(t); ok {
			rs = append(rs, r)
		}
	}
	return rs
}

// NetR sums all defined R-multiples.
func NetR(trades []core.Trade) float64 {
	return sum(RSeries(trades))
}

// ExpectancyR is the mean R-multiple. ok is false when no trade has a
// defined R.
func ExpectancyR(trades []core.Trade) (float64, bool) {
	rs := RSeries(trades)
	if len(rs) == 0 {
		return 0, false
	}
	return mean(rs), true
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}
