package reporting

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/validation"
)

// ConsoleReporter renders tables to a writer, stdout by default.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo writes to the given writer.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (c *ConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// PrintSummary renders one run's metrics.
func (c *ConsoleReporter) PrintSummary(startCash, endCash float64, m backtest.Metrics) {
	t := c.newTable("BACKTEST RESULTS")
	t.AppendRows([]table.Row{
		{"Start Cash", fmt.Sprintf("%.2f", startCash)},
		{"End Cash", fmt.Sprintf("%.2f", endCash)},
		{"Total Return", fmt.Sprintf("%.2f%%", m.TotalReturn*100)},
		{"Sharpe (approx)", fmt.Sprintf("%.2f", m.SharpeApprox)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100)},
		{"Trades", m.NumTrades},
		{"Win Rate", fmt.Sprintf("%.1f%%", m.WinRate*100)},
		{"Avg Trade", fmt.Sprintf("%.2f", m.AvgTrade)},
		{"Profit Factor", formatProfitFactor(m.ProfitFactor)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 16, Align: text.AlignLeft},
		{Number: 2, WidthMin: 14, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(c.out)
}

// PrintGridResults renders ranked optimizer results.
func (c *ConsoleReporter) PrintGridResults(results []backtest.GridResult) {
	t := c.newTable("GRID SEARCH")
	t.AppendHeader(table.Row{
		"#", "EMA Fast", "EMA Slow", "ATR Win", "ATR K", "Vol Filter",
		"Return", "Sharpe", "Max DD", "Trades",
	})
	for i, r := range results {
		t.AppendRow(table.Row{
			i + 1,
			r.Params.EMAFast,
			r.Params.EMASlow,
			r.Params.ATRWindow,
			fmt.Sprintf("%.2f", r.Params.ATRKStop),
			fmt.Sprintf("%.4f", r.Params.VolFilterMinATRPct),
			fmt.Sprintf("%.2f%%", r.Metrics.TotalReturn*100),
			fmt.Sprintf("%.2f", r.Metrics.SharpeApprox),
			fmt.Sprintf("%.2f%%", r.Metrics.MaxDrawdown*100),
			r.Metrics.NumTrades,
		})
	}
	t.Render()
	fmt.Fprintln(c.out)
}

// PrintWalkForward renders per-fold results plus the merged out-of-sample
// summary.
func (c *ConsoleReporter) PrintWalkForward(res *validation.WalkForwardResult) {
	if res.Insufficient {
		fmt.Fprintln(c.out, "insufficient data for walk-forward analysis")
		return
	}

	t := c.newTable("WALK-FORWARD FOLDS")
	t.AppendHeader(table.Row{
		"Fold", "Train", "Test", "Params", "Train Sharpe", "Test Return", "Test Trades", "End Cash",
	})
	for i, fr := range res.Folds {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%d..%d", fr.Fold.TrainStart, fr.Fold.TrainEnd),
			fmt.Sprintf("%d..%d", fr.Fold.TestStart, fr.Fold.TestEnd),
			fmt.Sprintf("%d/%d/%d k=%.1f", fr.Params.EMAFast, fr.Params.EMASlow, fr.Params.ATRWindow, fr.Params.ATRKStop),
			fmt.Sprintf("%.2f", fr.TrainMetrics.SharpeApprox),
			fmt.Sprintf("%.2f%%", fr.TestMetrics.TotalReturn*100),
			fr.TestMetrics.NumTrades,
			fmt.Sprintf("%.2f", fr.EndCash),
		})
	}
	t.Render()

	c.PrintSummary(res.StartCash, res.EndCash, res.Summary)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
