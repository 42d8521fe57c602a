package risk_test

import (
	"testing"

	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardRisk(t *testing.T) {
	rr, ok := risk.RewardRisk(100, 95, 110)
	require.True(t, ok)
	assert.Equal(t, 2.0, rr)

	_, ok = risk.RewardRisk(100, 100, 110)
	assert.False(t, ok)

	_, ok = risk.RewardRisk(100, 95, 0)
	assert.False(t, ok)
}

func TestPositionSize(t *testing.T) {
	p := risk.PositionSize(10000, 1, 100, 95)
	assert.Equal(t, 20.0, p.Units)
	assert.Equal(t, 100.0, p.RiskAmount)
	assert.Equal(t, 5.0, p.StopDistance)

	assert.Equal(t, 33.0, risk.PositionSize(10000, 1, 100, 97).Units)
	assert.Zero(t, risk.PositionSize(10000, 1, 100, 100).Units)
	assert.Zero(t, risk.PositionSize(0, 1, 100, 95).Units)
}

func TestCheckIntent(t *testing.T) {
	m := risk.ComputeMetrics(accountTrades(), 10000, now)
	in := risk.Intent{Symbol: "NVDA", Group: "tech", Entry: 100, Stop: 98, Target: 104, Size: 40}

	rules := risk.CheckIntent(risk.DefaultSettings(), m, in)
	require.Len(t, rules, 5)

	byName := make(map[string]risk.Rule)
	for _, r := range rules {
		byName[r.Name] = r
	}

	assert.Equal(t, risk.StatusWarning, byName[risk.RulePerTradeRisk].Status)
	assert.InDelta(t, 0.8, byName[risk.RulePerTradeRisk].Current, 1e-9)
	assert.Equal(t, risk.StatusOK, byName[risk.RuleDailyRisk].Status)
	assert.Equal(t, risk.StatusWarning, byName[risk.RuleOpenPositions].Status)
	assert.Equal(t, risk.StatusViolated, byName[risk.RuleCorrelatedPositions].Status)
	assert.Equal(t, risk.StatusOK, byName[risk.RuleRewardRisk].Status)
}

func TestCheckIntent_RewardRiskBands(t *testing.T) {
	s := risk.Settings{MinRewardRisk: 2}
	m := risk.Metrics{AccountBalance: 10000}

	tests := []struct {
		target float64
		want   risk.Status
	}{
		{110, risk.StatusWarning},  // 2.0, within 20% of the minimum
		{130, risk.StatusOK},       // 6.0
		{106, risk.StatusViolated}, // 1.2
		{100, risk.StatusViolated}, // no reward
	}

	for _, tt := range tests {
		rules := risk.CheckIntent(s, m, risk.Intent{Symbol: "X", Entry: 100, Stop: 95, Target: tt.target, Size: 1})
		require.Len(t, rules, 1)
		assert.Equal(t, tt.want, rules[0].Status, "target %v", tt.target)
	}
}
