package risk

import (
	"fmt"
	"math"
)

// RewardRisk is the planned reward:risk ratio of a setup. ok is false when
// the stop equals the entry or no target is given.
func RewardRisk(entry, stop, target float64) (float64, bool) {
	risk := math.Abs(entry - stop)
	if risk == 0 || target == 0 {
		return 0, false
	}
	return math.Abs(target-entry) / risk, true
}

// Position is a fixed-fractional position size.
type Position struct {
	Units        float64 `json:"units"`
	RiskAmount   float64 `json:"risk_amount"`
	StopDistance float64 `json:"stop_distance"`
}

// PositionSize risks riskPct percent of balance between entry and stop.
// Units are rounded down to whole units. A zero stop distance yields a zero
// position.
func PositionSize(balance, riskPct, entry, stop float64) Position {
	dist := math.Abs(entry - stop)
	amount := balance * riskPct / 100
	if dist == 0 || amount <= 0 {
		return Position{StopDistance: dist}
	}
	return Position{
		Units:        math.Floor(amount / dist),
		RiskAmount:   amount,
		StopDistance: dist,
	}
}

// Intent is a candidate trade checked before entry.
type Intent struct {
	Symbol string  `json:"symbol"`
	Group  string  `json:"group,omitempty"`
	Entry  float64 `json:"entry"`
	Stop   float64 `json:"stop"`
	Target float64 `json:"target,omitempty"`
	Size   float64 `json:"size"`
}

func (in Intent) correlationKey() string {
	if in.Group != "" {
		return in.Group
	}
	return in.Symbol
}

// CheckIntent evaluates the limits a new trade would touch as if it were
// opened on top of m: its own risk, the daily budget, open and correlated
// positions, and the minimum reward:risk.
func CheckIntent(s Settings, m Metrics, in Intent) []Rule {
	planned := math.Abs(in.Entry-in.Stop) * math.Abs(in.Size)

	var plannedPct float64
	if m.AccountBalance > 0 {
		plannedPct = planned / m.AccountBalance * 100
	}

	var rules []Rule
	if s.MaxRiskPerTradePct > 0 {
		rules = append(rules, newRule(RulePerTradeRisk, "%", plannedPct, s.MaxRiskPerTradePct))
	}
	if s.MaxDailyRiskPct > 0 {
		rules = append(rules, newRule(RuleDailyRisk, "%", m.DailyRiskUsedPct+plannedPct, s.MaxDailyRiskPct))
	}
	if s.MaxOpenPositions > 0 {
		rules = append(rules, newRule(RuleOpenPositions, "", float64(m.OpenPositions+1), float64(s.MaxOpenPositions)))
	}
	if s.MaxCorrelatedPositions > 0 {
		n := m.OpenByGroup[in.correlationKey()] + 1
		rules = append(rules, newRule(RuleCorrelatedPositions, "", float64(n), float64(s.MaxCorrelatedPositions)))
	}
	if s.MinRewardRisk > 0 {
		rules = append(rules, rewardRiskRule(in, s.MinRewardRisk))
	}
	return rules
}

// rewardRiskRule warns when the ratio is within 20% above the minimum.
func rewardRiskRule(in Intent, minRR float64) Rule {
	rr, _ := RewardRisk(in.Entry, in.Stop, in.Target)
	r := Rule{Name: RuleRewardRisk, Current: rr, Limit: minRR, Utilization: 1}
	if rr > 0 {
		r.Utilization = minRR / rr
	}

	switch {
	case rr < minRR:
		r.Status = StatusViolated
	case rr < minRR*(2-WarningThreshold):
		r.Status = StatusWarning
	default:
		r.Status = StatusOK
	}
	r.Message = fmt.Sprintf("reward:risk %.2f against minimum %.2f (%s)", rr, minRR, r.Status)
	return r
}
