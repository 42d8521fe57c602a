package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradejournal/internal/api/response"
	"github.com/newthinker/tradejournal/internal/app"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/newthinker/tradejournal/internal/storage/trade"
)

// Monitor defines the interface needed from app.App.
type Monitor interface {
	Last() *app.Snapshot
	GetStats() map[string]any
}

// RiskHandler handles risk metrics, Kelly sizing and intent checks.
type RiskHandler struct {
	journal
	settings  risk.Settings
	minSample int
	monitor   Monitor
	now       func() time.Time
}

// NewRiskHandler creates a new risk handler. reg and monitor may be nil.
func NewRiskHandler(store trade.Store, account Account, settings risk.Settings, kellyMinSample int, monitor Monitor, reg *metrics.Registry) *RiskHandler {
	return &RiskHandler{
		journal:   journal{store: store, account: account, metrics: reg},
		settings:  settings,
		minSample: kellyMinSample,
		monitor:   monitor,
		now:       time.Now,
	}
}

// Get returns live risk metrics and the evaluated limits.
func (h *RiskHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.metricsFor(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	rules := risk.Evaluate(h.settings, m)
	response.JSON(w, http.StatusOK, map[string]any{
		"metrics": m,
		"rules":   rules,
		"status":  risk.Worst(rules),
	})
}

// Kelly returns the Kelly fraction and the suggested risk per trade.
func (h *RiskHandler) Kelly(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades(r.Context(), r.URL.Query())
	if err != nil {
		response.Fail(w, err)
		return
	}

	start := time.Now()
	k := risk.Kelly(trades, h.minSample)
	h.observe(metrics.KindKelly, start)

	response.JSON(w, http.StatusOK, map[string]any{
		"kelly":              k,
		"suggested_risk_pct": k.SuggestedRiskPct(h.settings),
	})
}

// CheckRequest is a candidate trade checked before entry. RiskPct
// overrides the per-trade risk used for sizing; a zero Size is taken from
// the sized position.
type CheckRequest struct {
	risk.Intent
	RiskPct float64 `json:"risk_pct,omitempty"`
}

// Check evaluates the limits a candidate trade would touch and sizes it.
func (h *RiskHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, err))
		return
	}
	if req.Entry <= 0 || req.Stop <= 0 {
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("entry and stop must be positive")))
		return
	}

	m, err := h.metricsFor(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	riskPct := req.RiskPct
	if riskPct <= 0 {
		riskPct = h.settings.MaxRiskPerTradePct
	}
	position := risk.PositionSize(m.Equity, riskPct, req.Entry, req.Stop)
	if req.Size <= 0 {
		req.Size = position.Units
	}

	rules := risk.CheckIntent(h.settings, m, req.Intent)
	rr, _ := risk.RewardRisk(req.Entry, req.Stop, req.Target)

	response.JSON(w, http.StatusOK, map[string]any{
		"rules":       rules,
		"status":      risk.Worst(rules),
		"reward_risk": rr,
		"position":    position,
	})
}

// Monitor returns the last risk monitor snapshot.
func (h *RiskHandler) Monitor(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		response.Error(w, http.StatusServiceUnavailable,
			&core.Error{Code: "MONITOR_DISABLED", Message: "risk monitor is not running"})
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"snapshot": h.monitor.Last(),
		"stats":    h.monitor.GetStats(),
	})
}

func (h *RiskHandler) metricsFor(r *http.Request) (risk.Metrics, error) {
	q := r.URL.Query()

	balance, err := h.balance(q)
	if err != nil {
		return risk.Metrics{}, err
	}
	trades, err := h.trades(r.Context(), q)
	if err != nil {
		return risk.Metrics{}, err
	}

	defer h.observe(metrics.KindRisk, time.Now())
	return risk.ComputeMetrics(trades, balance, h.now()), nil
}
