package alert

import (
	"sync"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/risk"
	"go.uber.org/zap"
)

// Notifier delivers a fired alert.
type Notifier interface {
	Name() string
	Send(alert core.Alert) error
}

// Recorder counts fired alerts.
type Recorder interface {
	RecordAlert(rule, status string)
}

// Evaluator evaluates alert rules and sends notifications.
type Evaluator struct {
	notifiers []Notifier
	values    map[string]float64
	cooldown  time.Duration
	minStatus risk.Status
	account   string
	logger    *zap.Logger
	recorder  Recorder

	// Track pending alerts (waiting for "for" duration)
	pending map[string]time.Time
	// Track last fired time for cooldown
	lastFired map[string]time.Time
	// Status level each risk rule last fired at
	lastLevel map[string]int

	now func() time.Time

	mu sync.RWMutex
}

// NewEvaluator creates a new alert evaluator. Risk rules alert from
// warning upward unless SetMinStatus says otherwise.
func NewEvaluator(notifiers []Notifier, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		notifiers: notifiers,
		values:    make(map[string]float64),
		cooldown:  5 * time.Minute,
		minStatus: risk.StatusWarning,
		logger:    logger,
		pending:   make(map[string]time.Time),
		lastFired: make(map[string]time.Time),
		lastLevel: make(map[string]int),
		now:       time.Now,
	}
}

// SetValues updates the values threshold rules are evaluated against.
func (e *Evaluator) SetValues(values map[string]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = values
}

// SetCooldown sets the cooldown duration between alerts.
func (e *Evaluator) SetCooldown(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldown = d
}

// SetMinStatus sets the lowest risk rule status that alerts.
func (e *Evaluator) SetMinStatus(s risk.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minStatus = s
}

// SetAccount labels fired alerts with an account.
func (e *Evaluator) SetAccount(account string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.account = account
}

// SetRecorder installs a fired-alert counter.
func (e *Evaluator) SetRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// Evaluate evaluates a threshold rule and notifies if it fires.
func (e *Evaluator) Evaluate(rule Rule) (core.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	if !rule.Evaluate(e.values) {
		delete(e.pending, rule.Name)
		return core.Alert{}, false
	}

	if rule.For > 0 {
		pendingSince, isPending := e.pending[rule.Name]
		if !isPending {
			e.pending[rule.Name] = now
			return core.Alert{}, false
		}
		if now.Sub(pendingSince) < rule.For {
			return core.Alert{}, false
		}
	}

	if e.inCooldown(rule.Name, now) {
		return core.Alert{}, false
	}

	a := core.Alert{
		Rule:     rule.Name,
		Severity: rule.Severity,
		Message:  rule.FormatMessage(e.values),
		Account:  e.account,
		FiredAt:  now,
	}
	if c, err := rule.parse(); err == nil {
		a.Current = e.values[c.metric]
		a.Limit = c.threshold
	}

	e.fire(a)
	delete(e.pending, rule.Name)
	return a, true
}

// EvaluateAll evaluates all threshold rules and returns the alerts fired.
func (e *Evaluator) EvaluateAll(rules []Rule) []core.Alert {
	var fired []core.Alert
	for _, rule := range rules {
		if a, ok := e.Evaluate(rule); ok {
			fired = append(fired, a)
		}
	}
	return fired
}

// EvaluateRisk alerts on evaluated risk rules at or above the minimum
// status. A rule that escalates, from warning to violated, fires even
// inside its cooldown. A rule that recovers is re-armed.
func (e *Evaluator) EvaluateRisk(rules []risk.Rule) []core.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	minLevel := e.minStatus.Level()
	if minLevel == 0 {
		minLevel = 1
	}

	var fired []core.Alert
	for _, r := range rules {
		level := r.Status.Level()
		if level < minLevel {
			delete(e.lastLevel, r.Name)
			continue
		}

		last, active := e.lastLevel[r.Name]
		escalated := active && level > last
		if active && !escalated {
			continue
		}
		if !escalated && e.inCooldown(r.Name, now) {
			continue
		}

		a := core.Alert{
			Rule:     r.Name,
			Status:   string(r.Status),
			Severity: severityFor(r.Status),
			Message:  r.Message,
			Current:  r.Current,
			Limit:    r.Limit,
			Account:  e.account,
			FiredAt:  now,
		}
		e.fire(a)
		e.lastLevel[r.Name] = level
		fired = append(fired, a)
	}
	return fired
}

func (e *Evaluator) inCooldown(name string, now time.Time) bool {
	lastFired, hasFired := e.lastFired[name]
	return hasFired && now.Sub(lastFired) < e.cooldown
}

// fire must be called with e.mu held.
func (e *Evaluator) fire(a core.Alert) {
	e.lastFired[a.Rule] = a.FiredAt
	if e.recorder != nil {
		status := a.Status
		if status == "" {
			status = a.Severity
		}
		e.recorder.RecordAlert(a.Rule, status)
	}

	e.logger.Warn("risk alert",
		zap.String("rule", a.Rule),
		zap.String("status", a.Status),
		zap.String("severity", a.Severity),
		zap.Float64("current", a.Current),
		zap.Float64("limit", a.Limit),
	)

	for _, n := range e.notifiers {
		if err := n.Send(a); err != nil {
			e.logger.Error("alert notification failed",
				zap.String("notifier", n.Name()),
				zap.String("rule", a.Rule),
				zap.Error(err),
			)
		}
	}
}

// advanceTime is for testing - advances the internal clock.
func (e *Evaluator) advanceTime(d time.Duration) {
	oldNow := e.now
	e.now = func() time.Time {
		return oldNow().Add(d)
	}
}
