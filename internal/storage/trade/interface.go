// internal/storage/trade/interface.go
package trade

import (
	"context"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

// Store defines the interface for trade persistence.
type Store interface {
	// Save inserts or replaces a trade. An empty ID is assigned; the
	// stored ID is returned.
	Save(ctx context.Context, t core.Trade) (string, error)

	// GetByID retrieves a trade by its ID.
	GetByID(ctx context.Context, id string) (*core.Trade, error)

	// List retrieves trades matching the filter ordered by entry time.
	List(ctx context.Context, filter ListFilter) ([]core.Trade, error)

	// Count returns the number of trades matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing trades. From and To bound the
// entry time, inclusive.
type ListFilter struct {
	AccountID  string
	Symbol     string
	PlaybookID string
	Status     core.TradeStatus
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Matches reports whether t satisfies the filter, ignoring paging.
func (f ListFilter) Matches(t core.Trade) bool {
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.PlaybookID != "" && t.PlaybookID != f.PlaybookID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && t.EntryTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.EntryTime.After(f.To) {
		return false
	}
	return true
}

// SaveAll stores every trade, stopping at the first error.
func SaveAll(ctx context.Context, s Store, trades []core.Trade) error {
	for _, t := range trades {
		if _, err := s.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
