package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/pkg/reporting"
)

func newBacktestCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir string
		excel  bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run one backtest with the configured parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			out, err := orch.RunBacktest()
			if err != nil {
				return err
			}

			reporting.NewConsoleReporter().PrintSummary(out.Result.StartCash, out.Result.EndCash, out.Metrics)

			dir := outDir
			if dir == "" {
				dir = opts.cfg.Output.ReportDir
			}
			if dir == "-" {
				return nil
			}
			writes := []struct {
				name  string
				write func(string) error
			}{
				{"report.json", out.Report.WriteJSON},
				{"pnl.csv", out.Report.WritePnLCSV},
				{"trades.csv", out.Report.WriteTradesCSV},
				{"summary.csv", out.Report.WriteSummaryCSV},
			}
			if excel {
				writes = append(writes, struct {
					name  string
					write func(string) error
				}{"report.xlsx", out.Report.WriteReportXLSX})
			}
			for _, w := range writes {
				path := reporting.ReportPath(dir, w.name)
				if err := w.write(path); err != nil {
					return err
				}
				opts.log.Info("wrote report file", zap.String("path", path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", `report directory ("-" skips file output)`)
	cmd.Flags().BoolVar(&excel, "xlsx", false, "also write an Excel workbook")
	return cmd
}
