package trade

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	_, path := newTestSQLite(t)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	tr := sample("T1", "AAPL", 0)
	tr.Group = "tech"
	tr.PlaybookID = "orb"
	tr.TargetPrice = core.Float(120)
	tr.Fees = 1.5

	id, err := s.Save(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, "T1", id)

	got, err := s.GetByID(ctx, "T1")
	require.NoError(t, err)

	assert.Equal(t, tr.Symbol, got.Symbol)
	assert.Equal(t, tr.Group, got.Group)
	assert.Equal(t, tr.PlaybookID, got.PlaybookID)
	assert.Equal(t, tr.Direction, got.Direction)
	assert.Equal(t, tr.Status, got.Status)
	assert.Equal(t, 1.5, got.Fees)
	require.NotNil(t, got.StopPrice)
	assert.Equal(t, 95.0, *got.StopPrice)
	require.NotNil(t, got.TargetPrice)
	assert.Equal(t, 120.0, *got.TargetPrice)
	assert.True(t, tr.EntryTime.Equal(got.EntryTime))
	require.NotNil(t, got.ExitTime)
	assert.True(t, tr.ExitTime.Equal(*got.ExitTime))
}

func TestSQLiteStore_OpenTradeKeepsNulls(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	tr := sample("O1", "ES", 0)
	tr.Status = core.StatusOpen
	tr.ExitPrice, tr.ExitTime, tr.StopPrice = nil, nil, nil

	_, err := s.Save(ctx, tr)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "O1")
	require.NoError(t, err)
	assert.Nil(t, got.ExitPrice)
	assert.Nil(t, got.ExitTime)
	assert.Nil(t, got.StopPrice)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrTradeNotFound)
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	other := sample("T4", "AAPL", 3*time.Hour)
	other.AccountID = "acct-2"

	require.NoError(t, SaveAll(ctx, s, []core.Trade{
		sample("T2", "GOOG", time.Hour),
		sample("T1", "AAPL", 0),
		sample("T3", "AAPL", 2*time.Hour),
		other,
	}))

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2", "T3", "T4"}, ids(all))

	aapl, err := s.List(ctx, ListFilter{Symbol: "AAPL", AccountID: "acct-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T3"}, ids(aapl))

	ranged, err := s.List(ctx, ListFilter{From: base.Add(time.Hour), To: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []string{"T2", "T3"}, ids(ranged))

	paged, err := s.List(ctx, ListFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"T2", "T3"}, ids(paged))

	skipped, err := s.List(ctx, ListFilter{Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"T4"}, ids(skipped))

	n, err := s.Count(ctx, ListFilter{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLiteStore_Upsert(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	tr := sample("T1", "AAPL", 0)
	_, err := s.Save(ctx, tr)
	require.NoError(t, err)

	tr.PnL = -40
	_, err = s.Save(ctx, tr)
	require.NoError(t, err)

	n, err := s.Count(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, -40.0, got.PnL)
}
