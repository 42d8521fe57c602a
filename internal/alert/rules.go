// Package alert turns risk metrics and evaluated risk rules into
// notifications, with a pending window and a per-rule cooldown.
package alert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/risk"
)

// Rule is a threshold alert over a named risk value, for example
// "current_drawdown_pct > 10".
type Rule struct {
	Name     string        `mapstructure:"name"`
	Expr     string        `mapstructure:"expr"`
	For      time.Duration `mapstructure:"for"`
	Severity string        `mapstructure:"severity"`
	Message  string        `mapstructure:"message"`
}

var exprPattern = regexp.MustCompile(`^(\w+)\s*(>=|<=|==|!=|>|<)\s*(-?[\d.]+)$`)

type condition struct {
	metric    string
	op        string
	threshold float64
}

func (r *Rule) parse() (condition, error) {
	m := exprPattern.FindStringSubmatch(strings.TrimSpace(r.Expr))
	if len(m) != 4 {
		return condition{}, fmt.Errorf("alert %s: cannot parse %q", r.Name, r.Expr)
	}
	threshold, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return condition{}, fmt.Errorf("alert %s: bad threshold: %w", r.Name, err)
	}
	return condition{metric: m[1], op: m[2], threshold: threshold}, nil
}

// Validate checks the rule's name and expression.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("alert rule name is required"))
	}
	c, err := r.parse()
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if _, ok := valueNames[c.metric]; !ok {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("alert %s: unknown value %q", r.Name, c.metric))
	}
	return nil
}

// Evaluate reports whether the expression holds for values. Unparseable
// expressions and missing values never trigger.
func (r *Rule) Evaluate(values map[string]float64) bool {
	c, err := r.parse()
	if err != nil {
		return false
	}

	value, exists := values[c.metric]
	if !exists {
		return false
	}

	switch c.op {
	case ">":
		return value > c.threshold
	case "<":
		return value < c.threshold
	case ">=":
		return value >= c.threshold
	case "<=":
		return value <= c.threshold
	case "==":
		return value == c.threshold
	case "!=":
		return value != c.threshold
	}
	return false
}

// FormatMessage formats the alert message, adding the observed value when
// it is known.
func (r *Rule) FormatMessage(values map[string]float64) string {
	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(r.Severity), r.Name, r.Message)
	if c, err := r.parse(); err == nil {
		if v, ok := values[c.metric]; ok {
			msg += fmt.Sprintf(" (%s %.2f, threshold %.2f)", c.metric, v, c.threshold)
		}
	}
	return msg
}

// Value names available to rule expressions.
const (
	ValueEquity             = "equity"
	ValueCurrentDrawdownPct = "current_drawdown_pct"
	ValueDailyRiskPct       = "daily_risk_used_pct"
	ValueWeeklyRiskPct      = "weekly_risk_used_pct"
	ValueMonthlyRiskPct     = "monthly_risk_used_pct"
	ValueConsecutiveLosses  = "consecutive_losses"
	ValueOpenPositions      = "open_positions"
	ValueCorrelated         = "correlated_positions"
	ValueOpenRiskPct        = "open_risk_pct"
	ValueLargestLoss        = "largest_loss"
)

var valueNames = map[string]struct{}{
	ValueEquity: {}, ValueCurrentDrawdownPct: {}, ValueDailyRiskPct: {},
	ValueWeeklyRiskPct: {}, ValueMonthlyRiskPct: {}, ValueConsecutiveLosses: {},
	ValueOpenPositions: {}, ValueCorrelated: {}, ValueOpenRiskPct: {},
	ValueLargestLoss: {},
}

// Values flattens risk metrics into the names rule expressions use.
func Values(m risk.Metrics) map[string]float64 {
	return map[string]float64{
		ValueEquity:             m.Equity,
		ValueCurrentDrawdownPct: m.CurrentDrawdownPct,
		ValueDailyRiskPct:       m.DailyRiskUsedPct,
		ValueWeeklyRiskPct:      m.WeeklyRiskUsedPct,
		ValueMonthlyRiskPct:     m.MonthlyRiskUsedPct,
		ValueConsecutiveLosses:  float64(m.ConsecutiveLosses),
		ValueOpenPositions:      float64(m.OpenPositions),
		ValueCorrelated:         float64(m.CorrelatedPositions),
		ValueOpenRiskPct:        m.OpenRiskPct,
		ValueLargestLoss:        m.LargestLoss,
	}
}

func severityFor(s risk.Status) string {
	if s == risk.StatusViolated {
		return core.SeverityCritical
	}
	return core.SeverityWarning
}
