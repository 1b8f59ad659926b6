package reporting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/validation"
)

type excelStyles struct {
	header   int
	percent  int
	currency int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return s, err
	}
	s.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return s, err
	}
	s.currency, err = f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	return s, err
}

func writeHeaderRow(f *excelize.File, sheet string, style int, cells []string) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// WriteGridXLSX writes ranked optimizer results to one worksheet.
func WriteGridXLSX(results []backtest.GridResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Grid Search"
	f.SetSheetName("Sheet1", sheet)

	styles, err := newExcelStyles(f)
	if err != nil {
		return err
	}
	header := []string{
		"Rank", "EMA Fast", "EMA Slow", "ATR Window", "ATR K", "Vol Filter",
		"Total Return", "Sharpe", "Max Drawdown", "Trades", "Win Rate", "Profit Factor",
	}
	if err := writeHeaderRow(f, sheet, styles.header, header); err != nil {
		return err
	}

	for i, r := range results {
		row := i + 2
		pf := any(r.Metrics.ProfitFactor)
		if math.IsInf(r.Metrics.ProfitFactor, 0) {
			pf = "inf"
		}
		values := []any{
			i + 1,
			r.Params.EMAFast,
			r.Params.EMASlow,
			r.Params.ATRWindow,
			r.Params.ATRKStop,
			r.Params.VolFilterMinATRPct,
			r.Metrics.TotalReturn,
			r.Metrics.SharpeApprox,
			r.Metrics.MaxDrawdown,
			r.Metrics.NumTrades,
			r.Metrics.WinRate,
			pf,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		for _, col := range []int{7, 9, 11} {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if err := f.SetCellStyle(sheet, cell, cell, styles.percent); err != nil {
				return err
			}
		}
	}

	return saveWorkbook(f, path)
}

// WriteWalkForwardXLSX writes one worksheet per concern: fold results and
// the merged out-of-sample PnL.
func WriteWalkForwardXLSX(res *validation.WalkForwardResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newExcelStyles(f)
	if err != nil {
		return err
	}

	const foldSheet = "Folds"
	f.SetSheetName("Sheet1", foldSheet)
	header := []string{
		"Fold", "Train Start", "Train End", "Test Start", "Test End",
		"EMA Fast", "EMA Slow", "ATR Window", "ATR K",
		"Train Sharpe", "Test Return", "Test Sharpe", "Test Trades",
		"Start Cash", "End Cash",
	}
	if err := writeHeaderRow(f, foldSheet, styles.header, header); err != nil {
		return err
	}
	for i, fr := range res.Folds {
		row := i + 2
		values := []any{
			i + 1,
			fr.Fold.TrainStart, fr.Fold.TrainEnd, fr.Fold.TestStart, fr.Fold.TestEnd,
			fr.Params.EMAFast, fr.Params.EMASlow, fr.Params.ATRWindow, fr.Params.ATRKStop,
			fr.TrainMetrics.SharpeApprox,
			fr.TestMetrics.TotalReturn,
			fr.TestMetrics.SharpeApprox,
			fr.TestMetrics.NumTrades,
			fr.StartCash, fr.EndCash,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(foldSheet, cell, v); err != nil {
				return err
			}
		}
		for _, col := range []int{14, 15} {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if err := f.SetCellStyle(foldSheet, cell, cell, styles.currency); err != nil {
				return err
			}
		}
	}

	const pnlSheet = "OOS PnL"
	if _, err := f.NewSheet(pnlSheet); err != nil {
		return err
	}
	if err := writeHeaderRow(f, pnlSheet, styles.header, []string{"Timestamp", "PnL"}); err != nil {
		return err
	}
	for i, pt := range res.PnL {
		row := fmt.Sprintf("%d", i+2)
		if err := f.SetCellValue(pnlSheet, "A"+row, pt.Timestamp.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		if err := f.SetCellValue(pnlSheet, "B"+row, pt.Value); err != nil {
			return err
		}
	}

	return saveWorkbook(f, path)
}

// WriteReportXLSX writes a single-run report: a summary sheet, the trade
// list and the PnL series.
func (r *Report) WriteReportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newExcelStyles(f)
	if err != nil {
		return err
	}

	const sumSheet = "Summary"
	f.SetSheetName("Sheet1", sumSheet)
	if err := writeHeaderRow(f, sumSheet, styles.header, []string{"Metric", "Value"}); err != nil {
		return err
	}
	pf := any("inf")
	if r.Summary.ProfitFactor != nil {
		pf = *r.Summary.ProfitFactor
	}
	sumRows := []struct {
		name  string
		value any
	}{
		{"Start Cash", r.StartCash},
		{"End Cash", r.EndCash},
		{"Total Return", r.Summary.TotalReturn},
		{"Sharpe (approx)", r.Summary.SharpeApprox},
		{"Max Drawdown", r.Summary.MaxDrawdown},
		{"Trades", r.Summary.NumTrades},
		{"Win Rate", r.Summary.WinRate},
		{"Avg Trade", r.Summary.AvgTrade},
		{"Avg Win", r.Summary.AvgWin},
		{"Avg Loss", r.Summary.AvgLoss},
		{"Gross Profit", r.Summary.GrossProfit},
		{"Gross Loss", r.Summary.GrossLoss},
		{"Profit Factor", pf},
	}
	for i, sr := range sumRows {
		row := fmt.Sprintf("%d", i+2)
		if err := f.SetCellValue(sumSheet, "A"+row, sr.name); err != nil {
			return err
		}
		if err := f.SetCellValue(sumSheet, "B"+row, sr.value); err != nil {
			return err
		}
	}

	const tradeSheet = "Trades"
	if _, err := f.NewSheet(tradeSheet); err != nil {
		return err
	}
	header := []string{"Entry Time", "Exit Time", "Entry Price", "Exit Price", "Size", "ATR Stop"}
	if err := writeHeaderRow(f, tradeSheet, styles.header, header); err != nil {
		return err
	}
	for i, tr := range r.Trades {
		row := i + 2
		exitTime, exitPrice := any(""), any("")
		if tr.ExitTime != nil {
			exitTime = tr.ExitTime.UTC().Format(time.RFC3339)
		}
		if tr.ExitPrice != nil {
			exitPrice = *tr.ExitPrice
		}
		values := []any{
			tr.EntryTime.UTC().Format(time.RFC3339),
			exitTime,
			tr.EntryPrice,
			exitPrice,
			tr.Size,
			tr.ATRStop,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(tradeSheet, cell, v); err != nil {
				return err
			}
		}
	}

	const pnlSheet = "PnL"
	if _, err := f.NewSheet(pnlSheet); err != nil {
		return err
	}
	if err := writeHeaderRow(f, pnlSheet, styles.header, []string{"Timestamp", "PnL"}); err != nil {
		return err
	}
	keys := make([]string, 0, len(r.PnL))
	for k := range r.PnL {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		row := fmt.Sprintf("%d", i+2)
		if err := f.SetCellValue(pnlSheet, "A"+row, k); err != nil {
			return err
		}
		if err := f.SetCellValue(pnlSheet, "B"+row, r.PnL[k]); err != nil {
			return err
		}
	}

	return saveWorkbook(f, path)
}
