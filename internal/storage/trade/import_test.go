package trade

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,symbol,direction,entry_price,stop_price,exit_price,size,pnl,fees,entry_time,exit_time
T1,AAPL,long,100,95,110,10,100,1,2024-02-05T14:30:00Z,2024-02-05T15:30:00Z
T2,ES,Short,5000,5010,,1,0,0,2024-02-06T14:30:00Z,
`

func TestImportCSV(t *testing.T) {
	trades, err := ImportCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	t1 := trades[0]
	assert.Equal(t, "T1", t1.ID)
	assert.Equal(t, core.DirectionLong, t1.Direction)
	assert.Equal(t, core.StatusClosed, t1.Status)
	require.NotNil(t, t1.StopPrice)
	assert.Equal(t, 95.0, *t1.StopPrice)
	require.NotNil(t, t1.ExitTime)
	assert.Nil(t, t1.TargetPrice)

	t2 := trades[1]
	assert.Equal(t, core.DirectionShort, t2.Direction)
	assert.Equal(t, core.StatusOpen, t2.Status)
	assert.Nil(t, t2.ExitPrice)
	assert.Nil(t, t2.ExitTime)
}

func TestImportCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "id,symbol\nT1,AAPL\n"},
		{"bad number", "id,symbol,direction,entry_price,entry_time\nT1,AAPL,long,abc,2024-02-05T14:30:00Z\n"},
		{"bad time", "id,symbol,direction,entry_price,entry_time\nT1,AAPL,long,100,yesterday\n"},
		{"bad direction", "id,symbol,direction,entry_price,entry_time\nT1,AAPL,up,100,2024-02-05T14:30:00Z\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidTrade)
		})
	}
}

func TestExportCSV_RoundTrip(t *testing.T) {
	trades, err := ImportCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, trades))

	again, err := ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(trades))
	for i := range trades {
		assert.Equal(t, trades[i].ID, again[i].ID)
		assert.Equal(t, trades[i].Status, again[i].Status)
		assert.Equal(t, trades[i].ExitPrice, again[i].ExitPrice)
		assert.True(t, trades[i].EntryTime.Equal(again[i].EntryTime))
	}
}

func TestImportJSON(t *testing.T) {
	in := `[
		{"id":"J1","symbol":"NQ","direction":"long","entry_price":18000,"stop_price":17950,
		 "exit_price":18100,"size":1,"pnl":2000,"entry_time":"2024-02-05T14:30:00Z",
		 "exit_time":"2024-02-05T16:00:00Z"}
	]`

	trades, err := ImportJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, core.StatusClosed, trades[0].Status)

	_, err = ImportJSON(strings.NewReader(`[{"id":"J2","symbol":"NQ","direction":"long"}]`))
	assert.ErrorIs(t, err, core.ErrInvalidTrade)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "trades.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))
	trades, err := ImportFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, trades, 2)

	_, err = ImportFile(filepath.Join(dir, "trades.xlsx"))
	assert.Error(t, err)
}
