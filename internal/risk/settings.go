// Package risk evaluates an account's trade history against configured risk
// limits and sizes positions with the Kelly criterion.
package risk

// Settings are the configured risk limits. Percentages are in percent of
// account balance. A limit of zero disables its rule.
type Settings struct {
	MaxRiskPerTradePct     float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`
	MaxDailyRiskPct        float64 `json:"max_daily_risk_pct" yaml:"max_daily_risk_pct"`
	MaxWeeklyRiskPct       float64 `json:"max_weekly_risk_pct" yaml:"max_weekly_risk_pct"`
	MaxMonthlyRiskPct      float64 `json:"max_monthly_risk_pct" yaml:"max_monthly_risk_pct"`
	MaxDrawdownPct         float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxConsecutiveLosses   int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	MaxOpenPositions       int     `json:"max_open_positions" yaml:"max_open_positions"`
	MaxCorrelatedPositions int     `json:"max_correlated_positions" yaml:"max_correlated_positions"`
	MinRewardRisk          float64 `json:"min_reward_risk" yaml:"min_reward_risk"`
}

// DefaultSettings returns conservative limits for a discretionary account.
func DefaultSettings() Settings {
	return Settings{
		MaxRiskPerTradePct:     1,
		MaxDailyRiskPct:        3,
		MaxWeeklyRiskPct:       6,
		MaxMonthlyRiskPct:      10,
		MaxDrawdownPct:         15,
		MaxConsecutiveLosses:   4,
		MaxOpenPositions:       5,
		MaxCorrelatedPositions: 2,
		MinRewardRisk:          1.5,
	}
}
