package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/risk"
)

type mockNotifier struct {
	sent []core.Alert
	err  error
}

func (m *mockNotifier) Name() string { return "mock" }
func (m *mockNotifier) Send(a core.Alert) error {
	m.sent = append(m.sent, a)
	return m.err
}

type countingRecorder struct {
	counts map[string]int
}

func (c *countingRecorder) RecordAlert(rule, status string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[rule+"/"+status]++
}

var drawdownRule = Rule{
	Name:     "deep_drawdown",
	Expr:     "current_drawdown_pct > 10",
	For:      time.Minute,
	Severity: "warning",
	Message:  "Account drawdown is deep",
}

func TestEvaluator_PendingWindow(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)
	eval.SetValues(map[string]float64{ValueCurrentDrawdownPct: 12.5})

	if _, fired := eval.Evaluate(drawdownRule); fired {
		t.Error("expected first evaluation to start pending")
	}

	eval.advanceTime(2 * time.Minute)
	a, fired := eval.Evaluate(drawdownRule)
	if !fired {
		t.Fatal("expected alert after pending window")
	}
	if a.Current != 12.5 || a.Limit != 10 {
		t.Errorf("unexpected alert values %+v", a)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.sent))
	}
}

func TestEvaluator_Cooldown(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)
	eval.SetCooldown(5 * time.Minute)

	rule := Rule{Name: "losing_streak", Expr: "consecutive_losses >= 4", Severity: "critical", Message: "Stop trading"}
	eval.SetValues(map[string]float64{ValueConsecutiveLosses: 5})

	eval.Evaluate(rule)
	eval.Evaluate(rule)
	eval.Evaluate(rule)

	if len(notifier.sent) != 1 {
		t.Errorf("expected 1 notification due to cooldown, got %d", len(notifier.sent))
	}

	eval.advanceTime(6 * time.Minute)
	eval.Evaluate(rule)
	if len(notifier.sent) != 2 {
		t.Errorf("expected a second notification after cooldown, got %d", len(notifier.sent))
	}
}

func TestEvaluator_PendingClearsWhenRuleNoLongerTriggers(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)

	eval.SetValues(map[string]float64{ValueCurrentDrawdownPct: 12})
	eval.Evaluate(drawdownRule)

	eval.SetValues(map[string]float64{ValueCurrentDrawdownPct: 4})
	eval.Evaluate(drawdownRule)

	eval.advanceTime(2 * time.Minute)
	eval.SetValues(map[string]float64{ValueCurrentDrawdownPct: 12})
	eval.Evaluate(drawdownRule)

	if len(notifier.sent) != 0 {
		t.Errorf("expected no notification (pending cleared), got %d", len(notifier.sent))
	}
}

func TestEvaluator_EvaluateAll(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)

	rules := []Rule{
		{Name: "streak", Expr: "consecutive_losses >= 3", Severity: "critical", Message: "Streak"},
		{Name: "exposure", Expr: "open_positions > 5", Severity: "warning", Message: "Exposure"},
	}
	eval.SetValues(map[string]float64{ValueConsecutiveLosses: 3, ValueOpenPositions: 2})

	fired := eval.EvaluateAll(rules)

	if len(fired) != 1 || fired[0].Rule != "streak" {
		t.Errorf("expected only streak to fire, got %v", fired)
	}
}

func TestEvaluator_NotifierErrorDoesNotStopOthers(t *testing.T) {
	failing := &mockNotifier{err: errors.New("down")}
	ok := &mockNotifier{}
	eval := NewEvaluator([]Notifier{failing, ok}, nil)

	eval.SetValues(map[string]float64{ValueOpenPositions: 9})
	eval.Evaluate(Rule{Name: "exposure", Expr: "open_positions > 5", Severity: "warning"})

	if len(ok.sent) != 1 {
		t.Errorf("expected second notifier to receive alert, got %d", len(ok.sent))
	}
}

func riskRule(name string, status risk.Status) risk.Rule {
	return risk.Rule{Name: name, Status: status, Current: 2.7, Limit: 3, Message: name + " " + string(status)}
}

func TestEvaluator_EvaluateRisk(t *testing.T) {
	notifier := &mockNotifier{}
	rec := &countingRecorder{}
	eval := NewEvaluator([]Notifier{notifier}, nil)
	eval.SetAccount("acct-1")
	eval.SetRecorder(rec)

	fired := eval.EvaluateRisk([]risk.Rule{
		riskRule(risk.RuleDailyRisk, risk.StatusWarning),
		riskRule(risk.RuleOpenPositions, risk.StatusOK),
	})

	if len(fired) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(fired))
	}
	a := fired[0]
	if a.Rule != risk.RuleDailyRisk || a.Severity != core.SeverityWarning || a.Account != "acct-1" {
		t.Errorf("unexpected alert %+v", a)
	}
	if rec.counts["daily_risk/warning"] != 1 {
		t.Errorf("expected recorded alert, got %v", rec.counts)
	}

	// Same status again stays quiet.
	if again := eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusWarning)}); len(again) != 0 {
		t.Errorf("expected no repeat alert, got %v", again)
	}
}

func TestEvaluator_EvaluateRisk_EscalationBypassesCooldown(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)
	eval.SetCooldown(time.Hour)

	eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusWarning)})
	fired := eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusViolated)})

	if len(fired) != 1 || fired[0].Severity != core.SeverityCritical {
		t.Errorf("expected escalation alert, got %v", fired)
	}
}

func TestEvaluator_EvaluateRisk_RecoveryRearms(t *testing.T) {
	notifier := &mockNotifier{}
	eval := NewEvaluator([]Notifier{notifier}, nil)
	eval.SetCooldown(5 * time.Minute)

	eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusViolated)})
	eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusOK)})

	// Back inside the cooldown: suppressed.
	eval.advanceTime(time.Minute)
	if fired := eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusViolated)}); len(fired) != 0 {
		t.Errorf("expected cooldown to suppress, got %v", fired)
	}

	eval.advanceTime(10 * time.Minute)
	if fired := eval.EvaluateRisk([]risk.Rule{riskRule(risk.RuleDailyRisk, risk.StatusViolated)}); len(fired) != 1 {
		t.Errorf("expected alert after cooldown, got %v", fired)
	}
}

func TestEvaluator_EvaluateRisk_MinStatus(t *testing.T) {
	eval := NewEvaluator(nil, nil)
	eval.SetMinStatus(risk.StatusViolated)

	fired := eval.EvaluateRisk([]risk.Rule{
		riskRule(risk.RuleDailyRisk, risk.StatusWarning),
		riskRule(risk.RuleWeeklyRisk, risk.StatusViolated),
	})

	if len(fired) != 1 || fired[0].Rule != risk.RuleWeeklyRisk {
		t.Errorf("expected only the violated rule, got %v", fired)
	}
}
