// Package api holds the JSON handlers of the analytics API.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/storage/trade"
)

const dateLayout = "2006-01-02"

// Account identifies whose trades the handlers read.
type Account struct {
	ID              string
	StartingBalance float64
}

// journal is shared by every handler that reads the account's trades.
type journal struct {
	store   trade.Store
	account Account
	metrics *metrics.Registry
}

// trades lists the account's trades narrowed by the request's query.
func (j journal) trades(ctx context.Context, q url.Values) ([]core.Trade, error) {
	filter, err := parseFilter(q)
	if err != nil {
		return nil, err
	}
	filter.Limit = 0
	filter.Offset = 0
	return j.store.List(ctx, j.scoped(filter))
}

func (j journal) scoped(f trade.ListFilter) trade.ListFilter {
	f.AccountID = j.account.ID
	return f
}

// balance returns the balance query parameter, or the account's starting
// balance when absent.
func (j journal) balance(q url.Values) (float64, error) {
	v := q.Get("balance")
	if v == "" {
		return j.account.StartingBalance, nil
	}
	b, err := strconv.ParseFloat(v, 64)
	if err != nil || b < 0 {
		return 0, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("invalid balance %q", v))
	}
	return b, nil
}

// observe records how long a calculation took.
func (j journal) observe(kind string, start time.Time) {
	if j.metrics != nil {
		j.metrics.RecordCalculation(kind, time.Since(start).Seconds())
	}
}

// parseFilter reads symbol, playbook, status, from, to, limit and offset.
// Dates are RFC 3339 or YYYY-MM-DD; a bare "to" date covers the whole day.
func parseFilter(q url.Values) (trade.ListFilter, error) {
	filter := trade.ListFilter{
		Symbol:     q.Get("symbol"),
		PlaybookID: q.Get("playbook"),
	}

	if status := q.Get("status"); status != "" {
		s := core.TradeStatus(status)
		if s != core.StatusOpen && s != core.StatusClosed {
			return filter, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown status %q", status))
		}
		filter.Status = s
	}

	if from := q.Get("from"); from != "" {
		t, _, err := parseTime(from)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}

	if to := q.Get("to"); to != "" {
		t, dateOnly, err := parseTime(to)
		if err != nil {
			return filter, err
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = t
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("invalid %s %q", name, v))
		}
		*dst = n
	}

	return filter, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("invalid time %q", v))
}
