package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/pkg/reporting"
)

// newExportCmd re-renders a previously written report.json into other
// formats, so a long run does not need repeating to get a spreadsheet.
func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		inPath string
		outDir string
		excel  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-render an existing report.json as CSV and Excel files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			rep, err := reporting.ReadJSON(inPath)
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = opts.cfg.Output.ReportDir
			}
			writes := map[string]func(string) error{
				"pnl.csv":     rep.WritePnLCSV,
				"trades.csv":  rep.WriteTradesCSV,
				"summary.csv": rep.WriteSummaryCSV,
			}
			if excel {
				writes["report.xlsx"] = rep.WriteReportXLSX
			}
			for name, write := range writes {
				path := reporting.ReportPath(dir, name)
				if err := write(path); err != nil {
					return err
				}
				opts.log.Info("wrote report file", zap.String("path", path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "path to report.json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&excel, "xlsx", false, "also write an Excel workbook")
	return cmd
}
