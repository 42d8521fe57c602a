// internal/storage/trade/memory.go
package trade

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/newthinker/tradejournal/internal/core"
)

// MemoryStore is an in-memory trade store.
type MemoryStore struct {
	trades  []core.Trade
	index   map[string]int
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store. maxSize <= 0 means no cap;
// otherwise the oldest inserted trades are dropped.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		index:   make(map[string]int),
		maxSize: maxSize,
	}
}

// Save adds or replaces a trade.
func (m *MemoryStore) Save(ctx context.Context, t core.Trade) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := core.ValidateTrade(t); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[t.ID]; ok {
		m.trades[i] = t
		return t.ID, nil
	}

	m.trades = append(m.trades, t)
	m.index[t.ID] = len(m.trades) - 1

	// Trim if over capacity (remove oldest)
	if m.maxSize > 0 && len(m.trades) > m.maxSize {
		m.trades = m.trades[len(m.trades)-m.maxSize:]
		m.reindex()
	}

	return t.ID, nil
}

func (m *MemoryStore) reindex() {
	m.index = make(map[string]int, len(m.trades))
	for i, t := range m.trades {
		m.index[t.ID] = i
	}
}

// GetByID retrieves a trade by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, core.ErrTradeNotFound
	}
	t := m.trades[i]
	return &t, nil
}

// List returns trades matching the filter.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Trade, error) {
	m.mu.RLock()
	result := make([]core.Trade, 0, len(m.trades))
	for _, t := range m.trades {
		if filter.Matches(t) {
			result = append(result, t)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EntryTime.Before(result[j].EntryTime)
	})

	// Apply offset and limit
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []core.Trade{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching trades.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, t := range m.trades {
		if filter.Matches(t) {
			count++
		}
	}
	return count, nil
}
