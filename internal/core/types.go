package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Multiplier returns +1 for long and -1 for short trades
func (d Direction) Multiplier() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// IsValid reports whether d is a known direction
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// TradeStatus represents the lifecycle state of a trade
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// Trade is a journaled trade record. Optional prices and times are pointers;
// nil means the value was never recorded.
type Trade struct {
	ID          string      `json:"id"`
	AccountID   string      `json:"account_id,omitempty"`
	Symbol      string      `json:"symbol"`
	Group       string      `json:"group,omitempty"` // correlation bucket, e.g. "USD" or "tech"
	PlaybookID  string      `json:"playbook_id,omitempty"`
	Direction   Direction   `json:"direction"`
	EntryPrice  float64     `json:"entry_price"`
	ExitPrice   *float64    `json:"exit_price,omitempty"`
	StopPrice   *float64    `json:"stop_price,omitempty"`
	TargetPrice *float64    `json:"target_price,omitempty"`
	Size        float64     `json:"size"`
	PnL         float64     `json:"pnl"`
	Fees        float64     `json:"fees"`
	EntryTime   time.Time   `json:"entry_time"`
	ExitTime    *time.Time  `json:"exit_time,omitempty"`
	Status      TradeStatus `json:"status"`
}

// IsClosed returns true if the trade has been closed
func (t Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// IsWin returns true for a closed trade with positive P&L
func (t Trade) IsWin() bool {
	return t.IsClosed() && t.PnL > 0
}

// IsLoss returns true for a closed trade with negative P&L
func (t Trade) IsLoss() bool {
	return t.IsClosed() && t.PnL < 0
}

// NetPnL is realized P&L minus fees
func (t Trade) NetPnL() float64 {
	return t.PnL - t.Fees
}

// ClosedAt returns the exit time, falling back to the entry time.
func (t Trade) ClosedAt() time.Time {
	if t.ExitTime != nil && !t.ExitTime.IsZero() {
		return *t.ExitTime
	}
	return t.EntryTime
}

// HoldDuration returns the time between entry and exit. ok is false when
// either timestamp is missing or the duration is not positive.
func (t Trade) HoldDuration() (time.Duration, bool) {
	if t.EntryTime.IsZero() || t.ExitTime == nil || t.ExitTime.IsZero() {
		return 0, false
	}
	d := t.ExitTime.Sub(t.EntryTime)
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// PlannedRisk is the currency amount lost if the stop is hit.
func (t Trade) PlannedRisk() (float64, bool) {
	if t.StopPrice == nil || t.EntryPrice <= 0 {
		return 0, false
	}
	risk := t.EntryPrice - *t.StopPrice
	if risk < 0 {
		risk = -risk
	}
	size := t.Size
	if size < 0 {
		size = -size
	}
	return risk * size, true
}

// CorrelationKey returns the bucket used to group correlated positions.
func (t Trade) CorrelationKey() string {
	if t.Group != "" {
		return t.Group
	}
	return t.Symbol
}

// Float returns a pointer to v, for optional trade fields
func Float(v float64) *float64 {
	return &v
}

// Time returns a pointer to v, for optional trade fields
func Time(v time.Time) *time.Time {
	return &v
}

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return Round(x, 2)
}
