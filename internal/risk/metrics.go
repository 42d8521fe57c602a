package risk

import (
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/performance"
)

// Trailing windows for risk budgets.
const (
	DailyWindow   = 24 * time.Hour
	WeeklyWindow  = 7 * 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour
)

// Metrics is the live risk picture of an account at one instant.
type Metrics struct {
	At                 time.Time `json:"at"`
	AccountBalance     float64   `json:"account_balance"`
	Equity             float64   `json:"equity"`
	PeakEquity         float64   `json:"peak_equity"`
	CurrentDrawdownPct float64   `json:"current_drawdown_pct"`

	DailyRiskUsed      float64 `json:"daily_risk_used"`
	WeeklyRiskUsed     float64 `json:"weekly_risk_used"`
	MonthlyRiskUsed    float64 `json:"monthly_risk_used"`
	DailyRiskUsedPct   float64 `json:"daily_risk_used_pct"`
	WeeklyRiskUsedPct  float64 `json:"weekly_risk_used_pct"`
	MonthlyRiskUsedPct float64 `json:"monthly_risk_used_pct"`

	ConsecutiveLosses  int     `json:"consecutive_losses"`
	AvgRiskPerTradePct float64 `json:"avg_risk_per_trade_pct"`
	LargestLoss        float64 `json:"largest_loss"` // positive magnitude

	OpenPositions       int            `json:"open_positions"`
	OpenByGroup         map[string]int `json:"open_by_group"`
	CorrelatedPositions int            `json:"correlated_positions"`
	OpenRisk            float64        `json:"open_risk"`
	OpenRiskPct         float64        `json:"open_risk_pct"`
}

// ComputeMetrics derives risk metrics from trades as of now. balance is the
// account's starting balance; equity adds net realized P&L to it. Risk used
// in a window is the sum of absolute losses of trades closing in
// (now - window, now].
func ComputeMetrics(trades []core.Trade, balance float64, now time.Time) Metrics {
	m := Metrics{
		At:             now,
		AccountBalance: balance,
		Equity:         balance,
		PeakEquity:     balance,
		OpenByGroup:    make(map[string]int),
	}

	closed := performance.SortedClosed(trades)

	for _, t := range closed {
		m.Equity += t.NetPnL()
		if m.Equity > m.PeakEquity {
			m.PeakEquity = m.Equity
		}

		if t.PnL >= 0 {
			continue
		}
		loss := -t.PnL
		if loss > m.LargestLoss {
			m.LargestLoss = loss
		}

		at := t.ClosedAt()
		if at.After(now) {
			continue
		}
		age := now.Sub(at)
		if age < DailyWindow {
			m.DailyRiskUsed += loss
		}
		if age < WeeklyWindow {
			m.WeeklyRiskUsed += loss
		}
		if age < MonthlyWindow {
			m.MonthlyRiskUsed += loss
		}
	}

	if m.PeakEquity > 0 {
		m.CurrentDrawdownPct = (m.PeakEquity - m.Equity) / m.PeakEquity * 100
	}

	for i := len(closed) - 1; i >= 0; i-- {
		if !closed[i].IsLoss() {
			break
		}
		m.ConsecutiveLosses++
	}

	var plannedSum float64
	var plannedN int
	for _, t := range trades {
		risk, ok := t.PlannedRisk()
		if ok {
			plannedSum += risk
			plannedN++
		}

		if t.IsClosed() {
			continue
		}
		m.OpenPositions++
		key := t.CorrelationKey()
		m.OpenByGroup[key]++
		if m.OpenByGroup[key] > m.CorrelatedPositions {
			m.CorrelatedPositions = m.OpenByGroup[key]
		}
		if ok {
			m.OpenRisk += risk
		}
	}

	if balance > 0 {
		m.DailyRiskUsedPct = m.DailyRiskUsed / balance * 100
		m.WeeklyRiskUsedPct = m.WeeklyRiskUsed / balance * 100
		m.MonthlyRiskUsedPct = m.MonthlyRiskUsed / balance * 100
		m.OpenRiskPct = m.OpenRisk / balance * 100
		if plannedN > 0 {
			m.AvgRiskPerTradePct = plannedSum / float64(plannedN) / balance * 100
		}
	}

	return m
}
