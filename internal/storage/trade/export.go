package trade

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
)

// ExportCSV writes trades with a CSVColumns header. The output reads back
// with ImportCSV.
func ExportCSV(w io.Writer, trades []core.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}

	for _, t := range trades {
		exitTime := ""
		if t.ExitTime != nil {
			exitTime = t.ExitTime.Format(time.RFC3339)
		}
		rec := []string{
			t.ID, t.AccountID, t.Symbol, t.Group, t.PlaybookID, string(t.Direction),
			f(t.EntryPrice), optional(t.ExitPrice), optional(t.StopPrice), optional(t.TargetPrice), f(t.Size),
			f(t.PnL), f(t.Fees), t.EntryTime.Format(time.RFC3339), exitTime, string(t.Status),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return f(*v)
}
