package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/reporting"
)

func newOptimizeCmd(opts *rootOptions) *cobra.Command {
	var (
		emaFast   string
		emaSlow   string
		atrWindow string
		atrK      string
		volFilter string
		objective string
		topN      int
		maxDD     float64
		minTrades int
		workers   int
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Grid-search strategy parameters over the configured data",
		RunE: func(cmd *cobra.Command, args []string) error {
			grid := backtest.GridConfig{
				Objective:  backtest.Objective(objective),
				TopN:       topN,
				MaxDDLimit: maxDD,
				MinTrades:  minTrades,
				Workers:    workers,
			}
			var err error
			if grid.EMAFastList, err = parseIntList(emaFast); err != nil {
				return err
			}
			if grid.EMASlowList, err = parseIntList(emaSlow); err != nil {
				return err
			}
			if grid.ATRWindowList, err = parseIntList(atrWindow); err != nil {
				return err
			}
			if grid.ATRKStopList, err = parseFloatList(atrK); err != nil {
				return err
			}
			if volFilter != "" {
				if grid.VolFilterList, err = parseFloatList(volFilter); err != nil {
					return err
				}
			}
			switch grid.Objective {
			case "", backtest.ObjectiveSharpe, backtest.ObjectiveTotalReturn:
			default:
				return fmt.Errorf("unknown objective %q", objective)
			}

			var bar *progressbar.ProgressBar
			grid.OnProgress = func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "evaluating")
				}
				bar.Set(done)
			}

			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			results, err := orch.Optimize(grid)
			if err != nil {
				return err
			}
			if bar != nil {
				bar.Finish()
			}

			if len(results) == 0 {
				opts.log.Warn("grid search produced no recommendation")
				return nil
			}
			reporting.NewConsoleReporter().PrintGridResults(results)

			if outPath != "" {
				if err := reporting.WriteGridXLSX(results, outPath); err != nil {
					return err
				}
				opts.log.Info("wrote grid workbook", zap.String("path", outPath))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&emaFast, "ema-fast", "10,20,30", "comma-separated fast EMA spans")
	f.StringVar(&emaSlow, "ema-slow", "40,60,80", "comma-separated slow EMA spans")
	f.StringVar(&atrWindow, "atr-window", "14", "comma-separated ATR windows")
	f.StringVar(&atrK, "atr-k", "1.5,2.0,2.5", "comma-separated ATR stop multiples")
	f.StringVar(&volFilter, "vol-filter", "", "comma-separated ATR/close volatility floors (empty disables)")
	f.StringVar(&objective, "objective", string(backtest.ObjectiveSharpe), "ranking objective (sharpe_approx|total_return)")
	f.IntVar(&topN, "top", 10, "number of ranked results to keep (0 keeps all)")
	f.Float64Var(&maxDD, "max-dd", 0, "reject combos whose |max drawdown| exceeds this fraction (0 disables)")
	f.IntVar(&minTrades, "min-trades", 0, "prefer combos with at least this many trades")
	f.IntVar(&workers, "workers", 0, "parallel evaluation workers (0 uses all CPUs)")
	f.StringVarP(&outPath, "out", "o", "", "write ranked results to an .xlsx file")
	return cmd
}
