// internal/storage/trade/memory_test.go
package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

var base = time.Date(2024, 2, 5, 14, 30, 0, 0, time.UTC)

func sample(id, symbol string, offset time.Duration) core.Trade {
	return core.Trade{
		ID:         id,
		AccountID:  "acct-1",
		Symbol:     symbol,
		Direction:  core.DirectionLong,
		EntryPrice: 100,
		StopPrice:  core.Float(95),
		ExitPrice:  core.Float(110),
		Size:       10,
		PnL:        100,
		EntryTime:  base.Add(offset),
		ExitTime:   core.Time(base.Add(offset + time.Hour)),
		Status:     core.StatusClosed,
	}
}

func TestMemoryStore_SaveAndList(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	if _, err := store.Save(ctx, sample("T1", "AAPL", 0)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	trades, err := store.List(ctx, ListFilter{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("expected 1 trade, got %d", len(trades))
	}
}

func TestMemoryStore_AssignsID(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	tr := sample("", "AAPL", 0)
	id, err := store.Save(ctx, tr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, err := store.GetByID(ctx, id); err != nil {
		t.Errorf("GetByID(%s) failed: %v", id, err)
	}
}

func TestMemoryStore_Upsert(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	tr := sample("T1", "AAPL", 0)
	store.Save(ctx, tr)
	tr.PnL = -20
	store.Save(ctx, tr)

	n, _ := store.Count(ctx, ListFilter{})
	if n != 1 {
		t.Fatalf("expected 1 trade after upsert, got %d", n)
	}
	got, _ := store.GetByID(ctx, "T1")
	if got.PnL != -20 {
		t.Errorf("PnL = %v, want -20", got.PnL)
	}
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := NewMemoryStore(0)

	bad := sample("T1", "AAPL", 0)
	bad.Direction = "sideways"

	_, err := store.Save(context.Background(), bad)
	if !errors.Is(err, core.ErrInvalidTrade) {
		t.Errorf("expected ErrInvalidTrade, got %v", err)
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	open := sample("T3", "MSFT", 2*time.Hour)
	open.Status = core.StatusOpen
	open.ExitPrice, open.ExitTime = nil, nil

	store.Save(ctx, sample("T2", "GOOG", time.Hour))
	store.Save(ctx, sample("T1", "AAPL", 0))
	store.Save(ctx, open)

	all, _ := store.List(ctx, ListFilter{})
	if len(all) != 3 || all[0].ID != "T1" || all[2].ID != "T3" {
		t.Fatalf("expected entry-time order T1,T2,T3, got %v", ids(all))
	}

	closed, _ := store.List(ctx, ListFilter{Status: core.StatusClosed})
	if len(closed) != 2 {
		t.Errorf("expected 2 closed, got %d", len(closed))
	}

	ranged, _ := store.List(ctx, ListFilter{From: base.Add(30 * time.Minute)})
	if len(ranged) != 2 {
		t.Errorf("expected 2 in range, got %d", len(ranged))
	}

	paged, _ := store.List(ctx, ListFilter{Offset: 1, Limit: 1})
	if len(paged) != 1 || paged[0].ID != "T2" {
		t.Errorf("expected page [T2], got %v", ids(paged))
	}

	past, _ := store.List(ctx, ListFilter{Offset: 5})
	if len(past) != 0 {
		t.Errorf("expected empty page, got %d", len(past))
	}
}

func TestMemoryStore_MaxSize(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	store.Save(ctx, sample("A", "A", 0))
	store.Save(ctx, sample("B", "B", time.Hour))
	store.Save(ctx, sample("C", "C", 2*time.Hour))

	trades, _ := store.List(ctx, ListFilter{})
	if len(trades) != 2 {
		t.Errorf("expected 2 (max size), got %d", len(trades))
	}
	if _, err := store.GetByID(ctx, "A"); !errors.Is(err, core.ErrTradeNotFound) {
		t.Errorf("expected oldest trade evicted, got %v", err)
	}
	if _, err := store.GetByID(ctx, "C"); err != nil {
		t.Errorf("expected C to be found: %v", err)
	}
}

func ids(trades []core.Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.ID
	}
	return out
}
