package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/reporting"
	"github.com/fxlab/fxbot/pkg/validation"
)

func newWalkForwardCmd(opts *rootOptions) *cobra.Command {
	var (
		trainBars int
		testBars  int
		stepBars  int
		emaFast   string
		emaSlow   string
		atrWindow string
		atrK      string
		objective string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:     "walkforward",
		Aliases: []string{"wf"},
		Short:   "Walk-forward analysis: optimize in-sample, score out-of-sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := validation.WalkForwardConfig{
				TrainBars: trainBars,
				TestBars:  testBars,
				StepBars:  stepBars,
				Grid: backtest.GridConfig{
					Objective: backtest.Objective(objective),
				},
			}
			var err error
			if wf.Grid.EMAFastList, err = parseIntList(emaFast); err != nil {
				return err
			}
			if wf.Grid.EMASlowList, err = parseIntList(emaSlow); err != nil {
				return err
			}
			if wf.Grid.ATRWindowList, err = parseIntList(atrWindow); err != nil {
				return err
			}
			if wf.Grid.ATRKStopList, err = parseFloatList(atrK); err != nil {
				return err
			}

			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			res, err := orch.WalkForward(wf)
			if err != nil {
				return err
			}

			reporting.NewConsoleReporter().PrintWalkForward(res)

			if outPath != "" && !res.Insufficient {
				if err := reporting.WriteWalkForwardXLSX(res, outPath); err != nil {
					return err
				}
				opts.log.Info("wrote walk-forward workbook", zap.String("path", outPath))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&trainBars, "train-bars", 2000, "in-sample window length in bars")
	f.IntVar(&testBars, "test-bars", 500, "out-of-sample window length in bars")
	f.IntVar(&stepBars, "step-bars", 0, "window advance per fold (0 uses --test-bars)")
	f.StringVar(&emaFast, "ema-fast", "10,20,30", "comma-separated fast EMA spans")
	f.StringVar(&emaSlow, "ema-slow", "40,60,80", "comma-separated slow EMA spans")
	f.StringVar(&atrWindow, "atr-window", "14", "comma-separated ATR windows")
	f.StringVar(&atrK, "atr-k", "1.5,2.0,2.5", "comma-separated ATR stop multiples")
	f.StringVar(&objective, "objective", string(backtest.ObjectiveSharpe), "per-fold ranking objective")
	f.StringVarP(&outPath, "out", "o", "", "write fold results to an .xlsx file")
	return cmd
}
