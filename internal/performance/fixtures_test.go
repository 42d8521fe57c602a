package performance

import (
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

var day0 = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

// closedTrade builds a closed trade entered at day0 plus offset and held for
// hold. A zero stop leaves the stop unset.
func closedTrade(id string, dir core.Direction, entry, stop, exit, pnl float64, offset, hold time.Duration) core.Trade {
	t := core.Trade{
		ID:         id,
		Symbol:     "ES",
		Direction:  dir,
		EntryPrice: entry,
		ExitPrice:  core.Float(exit),
		Size:       1,
		PnL:        pnl,
		EntryTime:  day0.Add(offset),
		ExitTime:   core.Time(day0.Add(offset + hold)),
		Status:     core.StatusClosed,
	}
	if stop != 0 {
		t.StopPrice = core.Float(stop)
	}
	return t
}

func openTrade(id string, entry, stop float64, offset time.Duration) core.Trade {
	return core.Trade{
		ID:         id,
		Symbol:     "NQ",
		Direction:  core.DirectionLong,
		EntryPrice: entry,
		StopPrice:  core.Float(stop),
		Size:       1,
		EntryTime:  day0.Add(offset),
		Status:     core.StatusOpen,
	}
}

// pnlTrade is a closed long trade that only carries a P&L.
func pnlTrade(id string, pnl float64, offset time.Duration) core.Trade {
	return closedTrade(id, core.DirectionLong, 100, 0, 100, pnl, offset, time.Hour)
}
