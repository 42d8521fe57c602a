package core

import (
	"testing"
	"time"
)

func TestDirection_Multiplier(t *testing.T) {
	if DirectionLong.Multiplier() != 1 {
		t.Errorf("long multiplier = %v, want 1", DirectionLong.Multiplier())
	}
	if DirectionShort.Multiplier() != -1 {
		t.Errorf("short multiplier = %v, want -1", DirectionShort.Multiplier())
	}
}

func TestDirection_Constants(t *testing.T) {
	dirs := []Direction{DirectionLong, DirectionShort}
	expected := []string{"long", "short"}

	for i, d := range dirs {
		if string(d) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], d)
		}
		if !d.IsValid() {
			t.Errorf("expected %s to be valid", d)
		}
	}
	if Direction("sideways").IsValid() {
		t.Error("expected unknown direction to be invalid")
	}
}

func TestTrade_WinLoss(t *testing.T) {
	tests := []struct {
		name     string
		trade    Trade
		wantWin  bool
		wantLoss bool
	}{
		{"closed win", Trade{Status: StatusClosed, PnL: 10}, true, false},
		{"closed loss", Trade{Status: StatusClosed, PnL: -10}, false, true},
		{"breakeven", Trade{Status: StatusClosed, PnL: 0}, false, false},
		{"open with pnl", Trade{Status: StatusOpen, PnL: 10}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trade.IsWin(); got != tt.wantWin {
				t.Errorf("IsWin() = %v, want %v", got, tt.wantWin)
			}
			if got := tt.trade.IsLoss(); got != tt.wantLoss {
				t.Errorf("IsLoss() = %v, want %v", got, tt.wantLoss)
			}
		})
	}
}

func TestTrade_HoldDuration(t *testing.T) {
	entry := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	tr := Trade{EntryTime: entry, ExitTime: Time(entry.Add(90 * time.Minute))}
	d, ok := tr.HoldDuration()
	if !ok || d != 90*time.Minute {
		t.Errorf("HoldDuration() = %v, %v; want 90m, true", d, ok)
	}

	if _, ok := (Trade{EntryTime: entry}).HoldDuration(); ok {
		t.Error("expected no duration without exit time")
	}

	backwards := Trade{EntryTime: entry, ExitTime: Time(entry.Add(-time.Hour))}
	if _, ok := backwards.HoldDuration(); ok {
		t.Error("expected no duration when exit precedes entry")
	}
}

func TestTrade_ClosedAt(t *testing.T) {
	entry := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)

	if got := (Trade{EntryTime: entry}).ClosedAt(); !got.Equal(entry) {
		t.Errorf("ClosedAt() without exit = %v, want entry %v", got, entry)
	}
	if got := (Trade{EntryTime: entry, ExitTime: &exit}).ClosedAt(); !got.Equal(exit) {
		t.Errorf("ClosedAt() = %v, want %v", got, exit)
	}
}

func TestTrade_PlannedRisk(t *testing.T) {
	tr := Trade{EntryPrice: 100, StopPrice: Float(95), Size: 10}
	risk, ok := tr.PlannedRisk()
	if !ok || risk != 50 {
		t.Errorf("PlannedRisk() = %v, %v; want 50, true", risk, ok)
	}

	if _, ok := (Trade{EntryPrice: 100, Size: 10}).PlannedRisk(); ok {
		t.Error("expected no planned risk without a stop")
	}
}

func TestTrade_CorrelationKey(t *testing.T) {
	if got := (Trade{Symbol: "AAPL"}).CorrelationKey(); got != "AAPL" {
		t.Errorf("CorrelationKey() = %s, want AAPL", got)
	}
	if got := (Trade{Symbol: "AAPL", Group: "tech"}).CorrelationKey(); got != "tech" {
		t.Errorf("CorrelationKey() = %s, want tech", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.0, 2.0},
		{1.005, 1.01},
		{-1.005, -1.01},
		{0.3333333, 0.33},
		{2.675, 2.68},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
