package trade

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

// CSVColumns is the column set understood by ImportCSV. Only id, symbol,
// direction, entry_price and entry_time are required; columns may appear
// in any order.
var CSVColumns = []string{
	"id", "account_id", "symbol", "group", "playbook_id", "direction",
	"entry_price", "exit_price", "stop_price", "target_price", "size",
	"pnl", "fees", "entry_time", "exit_time", "status",
}

var requiredColumns = []string{"id", "symbol", "direction", "entry_price", "entry_time"}

// ImportFile loads trades from a .csv or .json file.
func ImportFile(path string) ([]core.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ImportCSV(f)
	case ".json":
		return ImportJSON(f)
	}
	return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unsupported trade file %s", path))
}

// ImportJSON decodes a JSON array of trades.
func ImportJSON(r io.Reader) ([]core.Trade, error) {
	var trades []core.Trade
	if err := json.NewDecoder(r).Decode(&trades); err != nil {
		return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("decode json: %w", err))
	}
	for i := range trades {
		InferStatus(&trades[i])
		if err := core.ValidateTrade(trades[i]); err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return trades, nil
}

// ImportCSV reads trades from CSV with a header row. Times are RFC 3339;
// empty optional cells stay unset. A missing status is inferred from the
// exit price.
func ImportCSV(r io.Reader) ([]core.Trade, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("read header: %w", err))
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("missing column %q", c))
		}
	}

	var trades []core.Trade
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("line %d: %w", line, err))
		}

		t, err := parseRecord(cols, rec)
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("line %d: %w", line, err))
		}
		InferStatus(&t)
		if err := core.ValidateTrade(t); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseRecord(cols map[string]int, rec []string) (core.Trade, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var t core.Trade
	var err error

	t.ID = get("id")
	t.AccountID = get("account_id")
	t.Symbol = get("symbol")
	t.Group = get("group")
	t.PlaybookID = get("playbook_id")
	t.Direction = core.Direction(strings.ToLower(get("direction")))
	t.Status = core.TradeStatus(strings.ToLower(get("status")))

	if t.EntryPrice, err = parseFloat("entry_price", get("entry_price")); err != nil {
		return t, err
	}
	if t.Size, err = parseFloat("size", get("size")); err != nil {
		return t, err
	}
	if t.PnL, err = parseFloat("pnl", get("pnl")); err != nil {
		return t, err
	}
	if t.Fees, err = parseFloat("fees", get("fees")); err != nil {
		return t, err
	}
	if t.ExitPrice, err = parseOptionalFloat("exit_price", get("exit_price")); err != nil {
		return t, err
	}
	if t.StopPrice, err = parseOptionalFloat("stop_price", get("stop_price")); err != nil {
		return t, err
	}
	if t.TargetPrice, err = parseOptionalFloat("target_price", get("target_price")); err != nil {
		return t, err
	}

	if t.EntryTime, err = time.Parse(time.RFC3339, get("entry_time")); err != nil {
		return t, fmt.Errorf("entry_time: %w", err)
	}
	if v := get("exit_time"); v != "" {
		exit, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return t, fmt.Errorf("exit_time: %w", err)
		}
		t.ExitTime = &exit
	}

	return t, nil
}

func parseFloat(name, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func parseOptionalFloat(name, v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := parseFloat(name, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// InferStatus fills a missing status: closed when an exit price is set,
// open otherwise.
func InferStatus(t *core.Trade) {
	if t.Status != "" {
		return
	}
	t.Status = core.StatusOpen
	if t.ExitPrice != nil {
		t.Status = core.StatusClosed
	}
}
