// Package validation implements walk-forward analysis: parameters are
// optimized on a rolling in-sample window and scored on the adjacent
// out-of-sample window, with cash carried across folds.
package validation

import (
	"fmt"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/internal/strategy"
	"github.com/fxlab/fxbot/pkg/types"
)

// Fold describes one train/test split as half-open bar index ranges.
type Fold struct {
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// FoldResult is one completed fold: the parameters picked on the train
// window and how they performed out of sample.
type FoldResult struct {
	Fold         Fold
	Params       backtest.Params
	TrainMetrics backtest.Metrics
	TestMetrics  backtest.Metrics
	StartCash    float64
	EndCash      float64
}

// WalkForwardConfig configures a walk-forward run. Grid supplies both the
// parameter lists for per-fold optimization and the engine cost parameters;
// its TopN is ignored (each fold picks exactly one winner).
type WalkForwardConfig struct {
	TrainBars int
	TestBars  int

	// StepBars advances the window between folds. Zero defaults to TestBars,
	// giving non-overlapping test windows.
	StepBars int

	PeriodsPerYear int

	Grid backtest.GridConfig
}

// WalkForwardResult aggregates all folds. Insufficient is set instead of an
// error when the data cannot fit even one fold, so callers can render an
// empty report rather than fail.
type WalkForwardResult struct {
	StartCash    float64
	EndCash      float64
	Folds        []FoldResult
	Summary      backtest.Metrics
	PnL          []backtest.PnLPoint
	Insufficient bool
}

// BarFolds splits n bars into rolling train/test windows. Windows advance by
// step until a full train+test pair no longer fits.
func BarFolds(n, train, test, step int) []Fold {
	if train <= 0 || test <= 0 || step <= 0 {
		return nil
	}
	var folds []Fold
	for offset := 0; offset+train+test <= n; offset += step {
		folds = append(folds, Fold{
			TrainStart: offset,
			TrainEnd:   offset + train,
			TestStart:  offset + train,
			TestEnd:    offset + train + test,
		})
	}
	return folds
}

// Validator runs walk-forward analysis over a bar series.
type Validator struct {
	cfg WalkForwardConfig
}

// NewValidator validates the window configuration.
func NewValidator(cfg WalkForwardConfig) (*Validator, error) {
	if cfg.TrainBars <= 0 {
		return nil, fmt.Errorf("train_bars must be positive, got %d", cfg.TrainBars)
	}
	if cfg.TestBars <= 0 {
		return nil, fmt.Errorf("test_bars must be positive, got %d", cfg.TestBars)
	}
	if cfg.StepBars < 0 {
		return nil, fmt.Errorf("step_bars must not be negative, got %d", cfg.StepBars)
	}
	if cfg.StepBars == 0 {
		cfg.StepBars = cfg.TestBars
	}
	return &Validator{cfg: cfg}, nil
}

// Run optimizes each train window, backtests the winning parameters on the
// adjacent test window with the cash carried over from the previous fold,
// and merges the out-of-sample PnL into one summary. A train window whose
// grid yields no recommendation ends the walk early; the folds completed so
// far still count.
func (v *Validator) Run(bars []types.OHLCV) (*WalkForwardResult, error) {
	startCash := v.cfg.Grid.Engine.StartCash
	out := &WalkForwardResult{StartCash: startCash, EndCash: startCash}

	folds := BarFolds(len(bars), v.cfg.TrainBars, v.cfg.TestBars, v.cfg.StepBars)
	if len(folds) == 0 {
		out.Insufficient = true
		return out, nil
	}

	cash := startCash
	var oosParts [][]backtest.PnLPoint
	for _, fold := range folds {
		gridCfg := v.cfg.Grid
		gridCfg.TopN = 1
		gridCfg.PeriodsPerYear = v.cfg.PeriodsPerYear
		gridCfg.Engine.StartCash = cash

		best := backtest.GridSearch(bars[fold.TrainStart:fold.TrainEnd], gridCfg)
		if len(best) == 0 {
			break
		}
		winner := best[0]

		engineCfg := v.cfg.Grid.Engine
		engineCfg.StartCash = cash
		engineCfg.ATRKStop = winner.Params.ATRKStop
		engineCfg.PeriodsPerYear = v.cfg.PeriodsPerYear

		sig := strategy.GenerateSignals(bars[fold.TestStart:fold.TestEnd], winner.Params.Momentum())
		res := backtest.NewEngine(engineCfg).Run(sig)
		met := backtest.MetricsFromPnL(res.PnL, cash, res.EndCash, v.cfg.PeriodsPerYear)

		out.Folds = append(out.Folds, FoldResult{
			Fold:         fold,
			Params:       winner.Params,
			TrainMetrics: winner.Metrics,
			TestMetrics:  met,
			StartCash:    cash,
			EndCash:      res.EndCash,
		})
		oosParts = append(oosParts, res.PnL)
		cash = res.EndCash
	}

	if len(out.Folds) == 0 {
		out.Insufficient = true
		return out, nil
	}

	out.EndCash = cash
	out.PnL = backtest.MergePnL(oosParts...)
	out.Summary = backtest.MetricsFromPnL(out.PnL, startCash, cash, v.cfg.PeriodsPerYear)
	return out, nil
}
