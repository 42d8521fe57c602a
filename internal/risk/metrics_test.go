package risk_test

import (
	"testing"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(id, symbol, group string, entry, stop, size float64) core.Trade {
	t := core.Trade{
		ID:         id,
		Symbol:     symbol,
		Group:      group,
		Direction:  core.DirectionLong,
		EntryPrice: entry,
		Size:       size,
		EntryTime:  now.Add(-30 * time.Minute),
		Status:     core.StatusOpen,
	}
	if stop != 0 {
		t.StopPrice = core.Float(stop)
	}
	return t
}

func accountTrades() []core.Trade {
	day := 24 * time.Hour
	return []core.Trade{
		closed("a", -100, 2*time.Hour),
		closed("b", 500, 3*time.Hour),
		closed("c", -200, 3*day),
		closed("d", -40, day), // exactly on the daily boundary
		closed("e", -300, 20*day),
		closed("f", -50, 40*day),
		open("g", "AAPL", "tech", 100, 95, 10),
		open("h", "MSFT", "tech", 200, 190, 5),
		open("i", "ES", "", 5000, 0, 1),
	}
}

func TestComputeMetrics(t *testing.T) {
	m := risk.ComputeMetrics(accountTrades(), 10000, now)

	assert.InDelta(t, 100.0, m.DailyRiskUsed, 1e-9)
	assert.InDelta(t, 340.0, m.WeeklyRiskUsed, 1e-9)
	assert.InDelta(t, 640.0, m.MonthlyRiskUsed, 1e-9)
	assert.InDelta(t, 1.0, m.DailyRiskUsedPct, 1e-9)
	assert.InDelta(t, 3.4, m.WeeklyRiskUsedPct, 1e-9)
	assert.InDelta(t, 6.4, m.MonthlyRiskUsedPct, 1e-9)

	assert.InDelta(t, 9810.0, m.Equity, 1e-9)
	assert.InDelta(t, 10000.0, m.PeakEquity, 1e-9)
	assert.InDelta(t, 1.9, m.CurrentDrawdownPct, 1e-9)

	assert.Equal(t, 1, m.ConsecutiveLosses)
	assert.Equal(t, 300.0, m.LargestLoss)

	assert.Equal(t, 3, m.OpenPositions)
	assert.Equal(t, 2, m.OpenByGroup["tech"])
	assert.Equal(t, 1, m.OpenByGroup["ES"])
	assert.Equal(t, 2, m.CorrelatedPositions)
	assert.InDelta(t, 100.0, m.OpenRisk, 1e-9)
	assert.InDelta(t, 1.0, m.OpenRiskPct, 1e-9)
	assert.InDelta(t, 0.5, m.AvgRiskPerTradePct, 1e-9)
}

func TestComputeMetrics_WinDoesNotMaskLosses(t *testing.T) {
	trades := []core.Trade{
		closed("loss", -300, time.Hour),
		closed("win", 1000, 2*time.Hour),
	}

	m := risk.ComputeMetrics(trades, 10000, now)
	assert.InDelta(t, 300.0, m.DailyRiskUsed, 1e-9)
}

func TestComputeMetrics_ConsecutiveLosses(t *testing.T) {
	trades := []core.Trade{
		closed("1", 50, 5*time.Hour),
		closed("2", -10, 4*time.Hour),
		closed("3", -10, 3*time.Hour),
		closed("4", -10, time.Hour),
	}

	m := risk.ComputeMetrics(trades, 1000, now)
	assert.Equal(t, 3, m.ConsecutiveLosses)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := risk.ComputeMetrics(nil, 5000, now)

	assert.Equal(t, 5000.0, m.Equity)
	assert.Zero(t, m.CurrentDrawdownPct)
	require.NotNil(t, m.OpenByGroup)
	assert.Empty(t, risk.Evaluate(risk.Settings{}, m))
}
