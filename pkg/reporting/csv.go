package reporting

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"
)

func writeCSVFile(path string, write func(w *csv.Writer) error) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WritePnLCSV writes the realized PnL series, one row per timestamp in
// ascending order.
func (r *Report) WritePnLCSV(path string) error {
	keys := make([]string, 0, len(r.PnL))
	for k := range r.PnL {
		keys = append(keys, k)
	}
	sort.Strings(keys) // RFC3339 sorts chronologically

	return writeCSVFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"timestamp", "pnl"}); err != nil {
			return err
		}
		for _, k := range keys {
			if err := w.Write([]string{k, formatFloat(r.PnL[k])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTradesCSV writes one row per trade. Open trades leave the exit
// columns empty.
func (r *Report) WriteTradesCSV(path string) error {
	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"entry_time", "exit_time", "entry_price", "exit_price", "size", "atr_stop"}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, tr := range r.Trades {
			row := []string{
				tr.EntryTime.UTC().Format(time.RFC3339),
				"",
				formatFloat(tr.EntryPrice),
				"",
				formatFloat(tr.Size),
				formatFloat(tr.ATRStop),
			}
			if tr.ExitTime != nil {
				row[1] = tr.ExitTime.UTC().Format(time.RFC3339)
			}
			if tr.ExitPrice != nil {
				row[3] = formatFloat(*tr.ExitPrice)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaryCSV writes the metrics block as metric,value rows.
func (r *Report) WriteSummaryCSV(path string) error {
	pf := ""
	if r.Summary.ProfitFactor != nil {
		pf = formatFloat(*r.Summary.ProfitFactor)
	}
	rows := [][]string{
		{"metric", "value"},
		{"start_cash", formatFloat(r.StartCash)},
		{"end_cash", formatFloat(r.EndCash)},
		{"total_return", formatFloat(r.Summary.TotalReturn)},
		{"sharpe_approx", formatFloat(r.Summary.SharpeApprox)},
		{"max_drawdown", formatFloat(r.Summary.MaxDrawdown)},
		{"num_trades", strconv.Itoa(r.Summary.NumTrades)},
		{"win_rate", formatFloat(r.Summary.WinRate)},
		{"avg_trade", formatFloat(r.Summary.AvgTrade)},
		{"avg_win", formatFloat(r.Summary.AvgWin)},
		{"avg_loss", formatFloat(r.Summary.AvgLoss)},
		{"gross_profit", formatFloat(r.Summary.GrossProfit)},
		{"gross_loss", formatFloat(r.Summary.GrossLoss)},
		{"profit_factor", pf},
	}
	return writeCSVFile(path, func(w *csv.Writer) error {
		return w.WriteAll(rows)
	})
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
