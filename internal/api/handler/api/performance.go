package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradejournal/internal/api/response"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/performance"
	"github.com/newthinker/tradejournal/internal/score"
	"github.com/newthinker/tradejournal/internal/storage/trade"
)

// PerformanceRequest is the request body for ad-hoc performance analysis.
type PerformanceRequest struct {
	Trades          []core.Trade `json:"trades"`
	StartingBalance *float64     `json:"starting_balance,omitempty"`
}

// PerformanceHandler handles performance and trader score requests.
type PerformanceHandler struct {
	journal
}

// NewPerformanceHandler creates a new performance handler. reg may be nil.
func NewPerformanceHandler(store trade.Store, account Account, reg *metrics.Registry) *PerformanceHandler {
	return &PerformanceHandler{journal{store: store, account: account, metrics: reg}}
}

// Get returns performance metrics over the account's stored trades.
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	balance, err := h.balance(q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	trades, err := h.trades(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.calculate(trades, balance))
}

// Calculate returns performance metrics over trades supplied in the body.
func (h *PerformanceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req PerformanceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, err))
		return
	}

	balance := h.account.StartingBalance
	if req.StartingBalance != nil {
		if *req.StartingBalance < 0 {
			response.Fail(w, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("starting_balance must not be negative")))
			return
		}
		balance = *req.StartingBalance
	}

	for i := range req.Trades {
		trade.InferStatus(&req.Trades[i])
	}

	response.JSON(w, http.StatusOK, h.calculate(req.Trades, balance))
}

func (h *PerformanceHandler) calculate(trades []core.Trade, balance float64) performance.PerformanceMetrics {
	defer h.observe(metrics.KindPerformance, time.Now())
	return performance.Calculate(trades, performance.Options{StartingBalance: balance})
}

// Score returns the composite trader score over the account's trades.
func (h *PerformanceHandler) Score(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	balance, err := h.balance(q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	trades, err := h.trades(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}

	start := time.Now()
	res := score.FromTrades(trades, balance)
	h.observe(metrics.KindScore, start)
	if h.metrics != nil {
		h.metrics.SetTraderScore(res.Score)
	}

	response.JSON(w, http.StatusOK, res)
}
