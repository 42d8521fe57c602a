package trade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/newthinker/tradejournal/internal/core"
)

// Schema creates the trades table. Times are stored as Unix nanoseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL DEFAULT '',
	symbol TEXT NOT NULL,
	grp TEXT NOT NULL DEFAULT '',
	playbook_id TEXT NOT NULL DEFAULT '',
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL,
	stop_price REAL,
	target_price REAL,
	size REAL NOT NULL,
	pnl REAL NOT NULL,
	fees REAL NOT NULL,
	entry_time INTEGER NOT NULL,
	exit_time INTEGER,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
`

const selectColumns = `id, account_id, symbol, grp, playbook_id, direction, entry_price, exit_price,
	stop_price, target_price, size, pnl, fees, entry_time, exit_time, status`

// SQLiteStore persists trades in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path and creates the schema if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("create schema: %w", err))
	}

	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces a trade.
func (s *SQLiteStore) Save(ctx context.Context, t core.Trade) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := core.ValidateTrade(t); err != nil {
		return "", err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades
		(id, account_id, symbol, grp, playbook_id, direction, entry_price, exit_price,
		 stop_price, target_price, size, pnl, fees, entry_time, exit_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Symbol, t.Group, t.PlaybookID, string(t.Direction),
		t.EntryPrice, nullFloat(t.ExitPrice), nullFloat(t.StopPrice), nullFloat(t.TargetPrice),
		t.Size, t.PnL, t.Fees, t.EntryTime.UnixNano(), nullTime(t.ExitTime), string(t.Status),
	)
	if err != nil {
		return "", core.WrapError(core.ErrStorageFailed, fmt.Errorf("save trade %s: %w", t.ID, err))
	}
	return t.ID, nil
}

// GetByID retrieves a trade by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*core.Trade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM trades WHERE id = ?`, id)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrTradeNotFound
		}
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &t, nil
}

// List returns trades matching the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]core.Trade, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + selectColumns + ` FROM trades` + where + ` ORDER BY entry_time ASC, id ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	out := []core.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return out, nil
}

// Count returns the count of matching trades.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := whereClause(filter)

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades`+where, args...).Scan(&n); err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func whereClause(f ListFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.AccountID != "" {
		add("account_id = ?", f.AccountID)
	}
	if f.Symbol != "" {
		add("symbol = ?", f.Symbol)
	}
	if f.PlaybookID != "" {
		add("playbook_id = ?", f.PlaybookID)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if !f.From.IsZero() {
		add("entry_time >= ?", f.From.UnixNano())
	}
	if !f.To.IsZero() {
		add("entry_time <= ?", f.To.UnixNano())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (core.Trade, error) {
	var (
		t                  core.Trade
		direction, status  string
		exit, stop, target sql.NullFloat64
		entryTime          int64
		exitTime           sql.NullInt64
	)

	err := row.Scan(
		&t.ID, &t.AccountID, &t.Symbol, &t.Group, &t.PlaybookID, &direction,
		&t.EntryPrice, &exit, &stop, &target,
		&t.Size, &t.PnL, &t.Fees, &entryTime, &exitTime, &status,
	)
	if err != nil {
		return core.Trade{}, err
	}

	t.Direction = core.Direction(direction)
	t.Status = core.TradeStatus(status)
	t.EntryTime = time.Unix(0, entryTime).UTC()
	if exit.Valid {
		t.ExitPrice = core.Float(exit.Float64)
	}
	if stop.Valid {
		t.StopPrice = core.Float(stop.Float64)
	}
	if target.Valid {
		t.TargetPrice = core.Float(target.Float64)
	}
	if exitTime.Valid {
		t.ExitTime = core.Time(time.Unix(0, exitTime.Int64).UTC())
	}
	return t, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullInt64 {
	if v == nil || v.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v.UnixNano(), Valid: true}
}
