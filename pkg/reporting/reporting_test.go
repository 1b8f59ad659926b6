package reporting

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/validation"
)

func sampleResult() (*backtest.Result, backtest.Metrics) {
	base := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	exit := base.Add(5 * time.Hour)
	res := &backtest.Result{
		StartCash: 100_000,
		EndCash:   101_500,
		Trades: []backtest.Trade{
			{EntryTime: base, ExitTime: exit, EntryPrice: 100, ExitPrice: 103, Size: 500, ATRStop: 98},
			{EntryTime: exit.Add(time.Hour), EntryPrice: 104, Size: 400, ATRStop: 101},
		},
		PnL: []backtest.PnLPoint{{Timestamp: exit, Value: 1_500}},
	}
	met := backtest.MetricsFromPnL(res.PnL, res.StartCash, res.EndCash, 0)
	return res, met
}

func TestReport_JSONRoundTrip(t *testing.T) {
	res, met := sampleResult()
	rep := NewReport(res, met)

	// One win and no losses: profit factor serializes as null.
	require.True(t, math.IsInf(met.ProfitFactor, 1))
	assert.Nil(t, rep.Summary.ProfitFactor)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, rep.WriteJSON(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profit_factor": null`)

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, rep, got)

	require.Len(t, got.Trades, 2)
	assert.NotNil(t, got.Trades[0].ExitTime)
	assert.Nil(t, got.Trades[1].ExitTime, "open trade keeps null exit fields")
	assert.Equal(t, 1_500.0, got.PnL["2024-05-06T05:00:00Z"])
}

func TestReport_CSVOutputs(t *testing.T) {
	res, met := sampleResult()
	rep := NewReport(res, met)
	dir := t.TempDir()

	pnlPath := filepath.Join(dir, "pnl.csv")
	require.NoError(t, rep.WritePnLCSV(pnlPath))
	rows := readCSV(t, pnlPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"timestamp", "pnl"}, rows[0])
	assert.Equal(t, []string{"2024-05-06T05:00:00Z", "1500"}, rows[1])

	tradesPath := filepath.Join(dir, "trades.csv")
	require.NoError(t, rep.WriteTradesCSV(tradesPath))
	rows = readCSV(t, tradesPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-05-06T05:00:00Z", rows[1][1])
	assert.Equal(t, "", rows[2][1], "open trade has empty exit time")
	assert.Equal(t, "", rows[2][3], "open trade has empty exit price")

	sumPath := filepath.Join(dir, "summary.csv")
	require.NoError(t, rep.WriteSummaryCSV(sumPath))
	rows = readCSV(t, sumPath)
	byName := map[string]string{}
	for _, row := range rows[1:] {
		byName[row[0]] = row[1]
	}
	assert.Equal(t, "100000", byName["start_cash"])
	assert.Equal(t, "1", byName["num_trades"])
	assert.Equal(t, "", byName["profit_factor"], "infinite profit factor stays empty")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestConsoleReporter(t *testing.T) {
	res, met := sampleResult()
	var buf bytes.Buffer
	c := NewConsoleReporterTo(&buf)

	c.PrintSummary(res.StartCash, res.EndCash, met)
	out := buf.String()
	assert.Contains(t, out, "BACKTEST RESULTS")
	assert.Contains(t, out, "101500.00")
	assert.Contains(t, out, "inf")

	buf.Reset()
	c.PrintGridResults([]backtest.GridResult{
		{Params: backtest.Params{EMAFast: 5, EMASlow: 20, ATRWindow: 14, ATRKStop: 2}, Metrics: met},
	})
	out = buf.String()
	assert.Contains(t, out, "GRID SEARCH")
	assert.Contains(t, out, "20")

	buf.Reset()
	c.PrintWalkForward(&validation.WalkForwardResult{Insufficient: true})
	assert.Contains(t, buf.String(), "insufficient data")
}

func TestWriteGridXLSX(t *testing.T) {
	_, met := sampleResult()
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	results := []backtest.GridResult{
		{Params: backtest.Params{EMAFast: 5, EMASlow: 20, ATRWindow: 14, ATRKStop: 2}, Metrics: met},
		{Params: backtest.Params{EMAFast: 10, EMASlow: 40, ATRWindow: 14, ATRKStop: 1.5}},
	}
	require.NoError(t, WriteGridXLSX(results, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Grid Search")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "5", rows[1][1])
	assert.Equal(t, "inf", rows[1][11])
}

func TestWriteWalkForwardXLSX(t *testing.T) {
	base := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	res := &validation.WalkForwardResult{
		StartCash: 100_000,
		EndCash:   102_000,
		Folds: []validation.FoldResult{
			{
				Fold:      validation.Fold{TrainStart: 0, TrainEnd: 200, TestStart: 200, TestEnd: 300},
				Params:    backtest.Params{EMAFast: 5, EMASlow: 20, ATRWindow: 14, ATRKStop: 2},
				StartCash: 100_000,
				EndCash:   102_000,
			},
		},
		PnL: []backtest.PnLPoint{{Timestamp: base, Value: 2_000}},
	}

	path := filepath.Join(t.TempDir(), "wf.xlsx")
	require.NoError(t, WriteWalkForwardXLSX(res, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Folds")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	pnlRows, err := f.GetRows("OOS PnL")
	require.NoError(t, err)
	require.Len(t, pnlRows, 2)
	assert.True(t, strings.HasPrefix(pnlRows[1][0], "2024-05-06"))
}

func TestWriteReportXLSX(t *testing.T) {
	res, met := sampleResult()
	rep := NewReport(res, met)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, rep.WriteReportXLSX(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{"Summary", "Trades", "PnL"} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err, sheet)
		assert.Greater(t, len(rows), 1, sheet)
	}
}
