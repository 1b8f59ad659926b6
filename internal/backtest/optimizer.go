package backtest

import (
	"sort"

	"github.com/fxlab/fxbot/internal/strategy"
	"github.com/fxlab/fxbot/pkg/types"
)

// Objective selects the metric a grid search ranks by.
type Objective string

const (
	ObjectiveTotalReturn Objective = "total_return"
	ObjectiveSharpe      Objective = "sharpe_approx"
)

// Params is one point of the strategy parameter grid.
type Params struct {
	EMAFast            int
	EMASlow            int
	ATRWindow          int
	ATRKStop           float64
	VolFilterMinATRPct float64
}

// Momentum converts the tuple into momentum signal parameters.
func (p Params) Momentum() strategy.MomentumParams {
	return strategy.MomentumParams{
		EMAFast:            p.EMAFast,
		EMASlow:            p.EMASlow,
		ATRWindow:          p.ATRWindow,
		VolFilterMinATRPct: p.VolFilterMinATRPct,
	}
}

// GridResult is one evaluated parameter combination.
type GridResult struct {
	Params  Params
	Metrics Metrics
}

// GridConfig configures a grid search.
type GridConfig struct {
	EMAFastList   []int
	EMASlowList   []int
	ATRWindowList []int
	ATRKStopList  []float64

	// VolFilterList defaults to the single value 0 (filter off) when empty.
	VolFilterList []float64

	// Objective defaults to ObjectiveSharpe.
	Objective Objective

	// MaxDDLimit rejects combinations whose |max drawdown| exceeds the limit
	// (a positive fraction, e.g. 0.2). Zero disables the filter.
	MaxDDLimit float64

	// TopN truncates the ranked results. Zero or negative keeps everything.
	TopN int

	// MinTrades, when positive, prefers combinations with at least this many
	// closed trades, falling back to the unfiltered set when none qualify so
	// sparse data still yields a recommendation.
	MinTrades int

	// Workers bounds the parallel evaluation fan-out. Zero or negative uses
	// one worker per CPU. Parallelism never affects result ordering.
	Workers int

	// PeriodsPerYear annualizes the Sharpe-like metric.
	PeriodsPerYear int

	// Engine carries the cost/risk parameters shared by every combination.
	// ATRKStop is overridden per combination.
	Engine Config

	// OnProgress, when set, is called after each evaluated combination.
	// Calls are serialized under an internal mutex even with multiple
	// workers, so the callback may touch shared state without locking.
	OnProgress func(done, total int)
}

// GridSearch enumerates the Cartesian product of the parameter lists,
// backtests each combination on bars, and returns the surviving results
// ranked by the objective. Combinations with ema_fast >= ema_slow are
// degenerate and skipped up front; an empty return means "no
// recommendation", not an error.
//
// Ordering is deterministic: objective descending, then the other objective
// descending, then the parameter tuple ascending.
func GridSearch(bars []types.OHLCV, cfg GridConfig) []GridResult {
	combos := enumerateCombos(cfg)
	if len(combos) == 0 {
		return nil
	}

	objective := cfg.Objective
	if objective == "" {
		objective = ObjectiveSharpe
	}

	results := evaluateCombos(bars, cfg, combos)

	if cfg.MaxDDLimit > 0 {
		kept := results[:0]
		for _, r := range results {
			if abs(r.Metrics.MaxDrawdown) <= cfg.MaxDDLimit {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	if cfg.MinTrades > 0 {
		qualified := make([]GridResult, 0, len(results))
		for _, r := range results {
			if r.Metrics.NumTrades >= cfg.MinTrades {
				qualified = append(qualified, r)
			}
		}
		if len(qualified) > 0 {
			results = qualified
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return rankBefore(results[i], results[j], objective)
	})

	if cfg.TopN > 0 && len(results) > cfg.TopN {
		results = results[:cfg.TopN]
	}
	return results
}

// enumerateCombos expands the Cartesian product in list order, dropping
// degenerate fast/slow pairs.
func enumerateCombos(cfg GridConfig) []Params {
	volList := cfg.VolFilterList
	if len(volList) == 0 {
		volList = []float64{0}
	}

	var combos []Params
	for _, ef := range cfg.EMAFastList {
		for _, es := range cfg.EMASlowList {
			if ef >= es {
				continue
			}
			for _, aw := range cfg.ATRWindowList {
				for _, ak := range cfg.ATRKStopList {
					for _, vf := range volList {
						combos = append(combos, Params{
							EMAFast:            ef,
							EMASlow:            es,
							ATRWindow:          aw,
							ATRKStop:           ak,
							VolFilterMinATRPct: vf,
						})
					}
				}
			}
		}
	}
	return combos
}

// evaluate runs one combination: regenerate signals, run the engine, compute
// metrics.
func evaluate(bars []types.OHLCV, cfg GridConfig, p Params) GridResult {
	engineCfg := cfg.Engine
	engineCfg.ATRKStop = p.ATRKStop

	sig := strategy.GenerateSignals(bars, p.Momentum())
	res := NewEngine(engineCfg).Run(sig)
	met := MetricsFromPnL(res.PnL, engineCfg.StartCash, res.EndCash, cfg.PeriodsPerYear)
	return GridResult{Params: p, Metrics: met}
}

// rankBefore orders a before b: objective desc, other objective desc, then
// parameter tuple asc so equal-metric combinations keep a stable order.
func rankBefore(a, b GridResult, objective Objective) bool {
	primA, primB := a.Metrics.SharpeApprox, b.Metrics.SharpeApprox
	secA, secB := a.Metrics.TotalReturn, b.Metrics.TotalReturn
	if objective == ObjectiveTotalReturn {
		primA, primB = secA, secB
		secA, secB = a.Metrics.SharpeApprox, b.Metrics.SharpeApprox
	}
	if primA != primB {
		return primA > primB
	}
	if secA != secB {
		return secA > secB
	}
	return paramsBefore(a.Params, b.Params)
}

func paramsBefore(a, b Params) bool {
	if a.EMAFast != b.EMAFast {
		return a.EMAFast < b.EMAFast
	}
	if a.EMASlow != b.EMASlow {
		return a.EMASlow < b.EMASlow
	}
	if a.ATRWindow != b.ATRWindow {
		return a.ATRWindow < b.ATRWindow
	}
	if a.ATRKStop != b.ATRKStop {
		return a.ATRKStop < b.ATRKStop
	}
	return a.VolFilterMinATRPct < b.VolFilterMinATRPct
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
