// Package app runs the risk monitor: on every tick it loads the account's
// trades, recomputes risk metrics, evaluates the configured limits and
// alert rules, and publishes the results as gauges and notifications.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/tradejournal/internal/alert"
	"github.com/newthinker/tradejournal/internal/config"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/notifier"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/newthinker/tradejournal/internal/score"
	"github.com/newthinker/tradejournal/internal/storage/trade"
	"go.uber.org/zap"
)

// Snapshot is the outcome of one monitor cycle.
type Snapshot struct {
	At     time.Time    `json:"at"`
	Trades int          `json:"trades"`
	Risk   risk.Metrics `json:"risk"`
	Rules  []risk.Rule  `json:"rules"`
	Status risk.Status  `json:"status"`
	Score  float64      `json:"score"`
	Fired  []core.Alert `json:"fired"`
}

// App is the risk monitor orchestrator
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     trade.Store
	notifiers *notifier.Registry
	evaluator *alert.Evaluator
	metrics   *metrics.Registry

	settings risk.Settings
	rules    []alert.Rule
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	cycles  int
	last    *Snapshot
}

// New creates a new App instance
func New(cfg *config.Config, store trade.Store, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	notifiers := notifier.NewRegistry()

	evaluator := alert.NewEvaluator([]alert.Notifier{registryNotifier{notifiers}}, logger.Named("alert"))
	evaluator.SetAccount(cfg.Account.ID)
	if cfg.Alerts.Cooldown > 0 {
		evaluator.SetCooldown(cfg.Alerts.Cooldown)
	}
	if cfg.Alerts.MinStatus != "" {
		evaluator.SetMinStatus(risk.Status(cfg.Alerts.MinStatus))
	}

	interval := cfg.Alerts.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		notifiers: notifiers,
		evaluator: evaluator,
		settings:  cfg.RiskSettings(),
		rules:     cfg.Alerts.Rules,
		interval:  interval,
		now:       time.Now,
	}
}

// RegisterNotifier adds a notifier to the app
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

// SetMetrics publishes cycle results to reg.
func (a *App) SetMetrics(reg *metrics.Registry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics = reg
	if reg != nil {
		a.evaluator.SetRecorder(reg)
	}
}

// SetInterval sets the monitor interval
func (a *App) SetInterval(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// Start begins the monitoring loop
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	interval := a.interval
	a.mu.Unlock()

	a.logger.Info("risk monitor starting",
		zap.String("account", a.cfg.Account.ID),
		zap.Duration("interval", interval),
		zap.Int("alert_rules", len(a.rules)),
		zap.Int("notifiers", a.notifiers.Len()),
	)

	a.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("risk monitor shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			a.runCycle(ctx)
		}
	}
}

// Stop stops the monitoring loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) runCycle(ctx context.Context) {
	if _, err := a.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("risk cycle failed", zap.Error(err))
	}
}

// RunOnce performs a single monitor cycle.
func (a *App) RunOnce(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	start := time.Now()
	now := a.now()

	trades, err := a.store.List(ctx, trade.ListFilter{AccountID: a.cfg.Account.ID})
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading trades: %w", err)
	}

	balance := a.cfg.Account.StartingBalance
	m := risk.ComputeMetrics(trades, balance, now)
	rules := risk.Evaluate(a.settings, m)

	a.evaluator.SetValues(alert.Values(m))
	fired := a.evaluator.EvaluateRisk(rules)
	fired = append(fired, a.evaluator.EvaluateAll(a.rules)...)

	snap := Snapshot{
		At:     now,
		Trades: len(trades),
		Risk:   m,
		Rules:  rules,
		Status: risk.Worst(rules),
		Score:  score.FromTrades(trades, balance).Score,
		Fired:  fired,
	}

	a.mu.Lock()
	a.cycles++
	a.last = &snap
	reg := a.metrics
	a.mu.Unlock()

	if reg != nil {
		for _, r := range rules {
			reg.SetRiskRuleStatus(r.Name, r.Status.Level())
		}
		reg.SetTradesStored(len(trades))
		reg.SetTraderScore(snap.Score)
		reg.RecordCalculation(metrics.KindRisk, time.Since(start).Seconds())
	}

	a.logger.Debug("risk cycle complete",
		zap.Int("trades", snap.Trades),
		zap.String("status", string(snap.Status)),
		zap.Float64("equity", m.Equity),
		zap.Int("alerts", len(fired)),
	)

	return snap, nil
}

// Last returns the most recent snapshot, or nil before the first cycle.
func (a *App) Last() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return nil
	}
	s := *a.last
	return &s
}

// GetStats returns application statistics
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"running":     a.running,
		"cycles":      a.cycles,
		"interval":    a.interval.String(),
		"alert_rules": len(a.rules),
		"notifiers":   a.notifiers.Len(),
	}
	if a.last != nil {
		stats["status"] = string(a.last.Status)
		stats["last_cycle"] = a.last.At
	}
	return stats
}

// registryNotifier fans an alert out to every registered notifier.
type registryNotifier struct {
	reg *notifier.Registry
}

func (r registryNotifier) Name() string { return "registry" }

func (r registryNotifier) Send(a core.Alert) error {
	errs := r.reg.NotifyAll(a)
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, 0, len(errs))
	for name, err := range errs {
		joined = append(joined, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(joined...)
}
