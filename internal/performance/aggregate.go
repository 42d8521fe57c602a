package performance

import (
	"sort"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

// DailyAggregate sums the trades closing on one calendar date.
type DailyAggregate struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	PnL    float64 `json:"pnl"`
	R      float64 `json:"r"`
	Trades int     `json:"trades"`
}

// MonthlyAggregate sums the trades closing in one calendar month.
type MonthlyAggregate struct {
	Month  string  `json:"month"` // YYYY-MM
	PnL    float64 `json:"pnl"`
	R      float64 `json:"r"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

type bucket struct {
	pnl    decimal.Decimal
	r      decimal.Decimal
	trades int
	wins   int
	losses int
}

func groupClosed(trades []core.Trade, layout string) ([]string, map[string]*bucket) {
	buckets := make(map[string]*bucket)
	var keys []string

	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		key := t.ClosedAt().Format(layout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.trades++
		b.pnl = b.pnl.Add(decimal.NewFromFloat(t.PnL))
		if r, ok := ComputeR(t); ok {
			b.r = b.r.Add(decimal.NewFromFloat(r))
		}
		switch {
		case t.PnL > 0:
			b.wins++
		case t.PnL < 0:
			b.losses++
		}
	}

	sort.Strings(keys)
	return keys, buckets
}

// DailyAggregates groups closed trades by close date, ascending.
func DailyAggregates(trades []core.Trade) []DailyAggregate {
	keys, buckets := groupClosed(trades, dateLayout)
	out := make([]DailyAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, DailyAggregate{
			Date:   k,
			PnL:    b.pnl.InexactFloat64(),
			R:      b.r.InexactFloat64(),
			Trades: b.trades,
		})
	}
	return out
}

// MonthlyAggregates groups closed trades by close month, ascending.
func MonthlyAggregates(trades []core.Trade) []MonthlyAggregate {
	keys, buckets := groupClosed(trades, monthLayout)
	out := make([]MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, MonthlyAggregate{
			Month:  k,
			PnL:    b.pnl.InexactFloat64(),
			R:      b.r.InexactFloat64(),
			Trades: b.trades,
			Wins:   b.wins,
			Losses: b.losses,
		})
	}
	return out
}
