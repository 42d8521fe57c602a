package risk

import "fmt"

// Status is the outcome of a risk rule.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusViolated Status = "violated"
)

// Level orders statuses: 0 ok, 1 warning, 2 violated.
func (s Status) Level() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusViolated:
		return 2
	}
	return 0
}

// WarningThreshold is the utilization at which a rule starts warning.
const WarningThreshold = 0.8

// Rule names.
const (
	RulePerTradeRisk        = "per_trade_risk"
	RuleDailyRisk           = "daily_risk"
	RuleWeeklyRisk          = "weekly_risk"
	RuleMonthlyRisk         = "monthly_risk"
	RuleMaxDrawdown         = "max_drawdown"
	RuleConsecutiveLosses   = "consecutive_losses"
	RuleOpenPositions       = "open_positions"
	RuleCorrelatedPositions = "correlated_positions"
	RuleRewardRisk          = "reward_risk"
)

// Rule is one evaluated risk limit.
type Rule struct {
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	Current     float64 `json:"current"`
	Limit       float64 `json:"limit"`
	Utilization float64 `json:"utilization"`
	Message     string  `json:"message"`
}

// Classify grades current against limit: below 80% ok, below 100% warning,
// otherwise violated.
func Classify(current, limit float64) (Status, float64) {
	if limit <= 0 {
		return StatusOK, 0
	}
	u := current / limit
	switch {
	case u >= 1:
		return StatusViolated, u
	case u >= WarningThreshold:
		return StatusWarning, u
	}
	return StatusOK, u
}

func newRule(name, unit string, current, limit float64) Rule {
	status, u := Classify(current, limit)
	return Rule{
		Name:        name,
		Status:      status,
		Current:     current,
		Limit:       limit,
		Utilization: u,
		Message:     fmt.Sprintf("%s at %.2f%s of %.2f%s limit (%s)", name, current, unit, limit, unit, status),
	}
}

// Evaluate checks every configured limit independently. Limits <= 0 are
// skipped.
func Evaluate(s Settings, m Metrics) []Rule {
	checks := []struct {
		name    string
		unit    string
		current float64
		limit   float64
	}{
		{RulePerTradeRisk, "%", m.AvgRiskPerTradePct, s.MaxRiskPerTradePct},
		{RuleDailyRisk, "%", m.DailyRiskUsedPct, s.MaxDailyRiskPct},
		{RuleWeeklyRisk, "%", m.WeeklyRiskUsedPct, s.MaxWeeklyRiskPct},
		{RuleMonthlyRisk, "%", m.MonthlyRiskUsedPct, s.MaxMonthlyRiskPct},
		{RuleMaxDrawdown, "%", m.CurrentDrawdownPct, s.MaxDrawdownPct},
		{RuleConsecutiveLosses, "", float64(m.ConsecutiveLosses), float64(s.MaxConsecutiveLosses)},
		{RuleOpenPositions, "", float64(m.OpenPositions), float64(s.MaxOpenPositions)},
		{RuleCorrelatedPositions, "", float64(m.CorrelatedPositions), float64(s.MaxCorrelatedPositions)},
	}

	rules := make([]Rule, 0, len(checks))
	for _, c := range checks {
		if c.limit <= 0 {
			continue
		}
		rules = append(rules, newRule(c.name, c.unit, c.current, c.limit))
	}
	return rules
}

// Worst returns the most severe status among rules.
func Worst(rules []Rule) Status {
	worst := StatusOK
	for _, r := range rules {
		if r.Status.Level() > worst.Level() {
			worst = r.Status
		}
	}
	return worst
}
