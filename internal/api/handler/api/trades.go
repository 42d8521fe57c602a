package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/newthinker/tradejournal/internal/api/response"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/storage/trade"
)

const (
	defaultListLimit = 100
	maxBodyBytes     = 10 << 20
)

// TradesHandler handles trade journal API requests.
type TradesHandler struct {
	journal
}

// NewTradesHandler creates a new trades handler. reg may be nil.
func NewTradesHandler(store trade.Store, account Account, reg *metrics.Registry) *TradesHandler {
	return &TradesHandler{journal{store: store, account: account, metrics: reg}}
}

// List returns the account's trades matching query parameters. With
// format=csv the trades are written as CSV instead of the JSON envelope.
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	if q.Get("limit") == "" {
		filter.Limit = defaultListLimit
	}
	filter = h.scoped(filter)

	trades, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
		if err := trade.ExportCSV(w, trades); err != nil {
			response.Fail(w, core.WrapError(core.ErrStorageFailed, err))
		}
		return
	}

	total, err := h.store.Count(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetByID returns a single trade by ID.
func (h *TradesHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.Fail(w, err)
		return
	}
	if t.AccountID != h.account.ID {
		response.Fail(w, core.ErrTradeNotFound)
		return
	}

	response.JSON(w, http.StatusOK, t)
}

// Create stores one trade or a JSON array of trades. Trades without an ID
// get a generated one and trades without an account are assigned to the
// configured one; a missing status is inferred from the exit price. Nothing
// is stored unless every trade is valid.
func (h *TradesHandler) Create(w http.ResponseWriter, r *http.Request) {
	trades, err := decodeTrades(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.Fail(w, err)
		return
	}

	for i := range trades {
		t := &trades[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.AccountID == "" {
			t.AccountID = h.account.ID
		}
		trade.InferStatus(t)
		if err := core.ValidateTrade(*t); err != nil {
			response.Fail(w, fmt.Errorf("trade %d: %w", i, err))
			return
		}
	}

	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		id, err := h.store.Save(r.Context(), t)
		if err != nil {
			response.Fail(w, err)
			return
		}
		ids = append(ids, id)
	}

	if h.metrics != nil {
		if n, err := h.store.Count(r.Context(), trade.ListFilter{}); err == nil {
			h.metrics.SetTradesStored(n)
		}
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"ids":   ids,
		"count": len(ids),
	})
}

// decodeTrades accepts either a single trade object or an array.
func decodeTrades(r io.Reader) ([]core.Trade, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("empty body"))
	}

	if body[0] == '[' {
		var trades []core.Trade
		if err := json.Unmarshal(body, &trades); err != nil {
			return nil, core.WrapError(core.ErrInvalidTrade, err)
		}
		if len(trades) == 0 {
			return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("no trades in body"))
		}
		return trades, nil
	}

	var t core.Trade
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, core.WrapError(core.ErrInvalidTrade, err)
	}
	return []core.Trade{t}, nil
}
