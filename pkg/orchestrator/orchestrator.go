// Package orchestrator wires configuration, data loading, signal generation
// and the engines into the workflows the CLI exposes.
package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/internal/events"
	"github.com/fxlab/fxbot/internal/monitoring"
	"github.com/fxlab/fxbot/internal/paper"
	"github.com/fxlab/fxbot/internal/strategy"
	"github.com/fxlab/fxbot/pkg/config"
	"github.com/fxlab/fxbot/pkg/data"
	"github.com/fxlab/fxbot/pkg/reporting"
	"github.com/fxlab/fxbot/pkg/types"
	"github.com/fxlab/fxbot/pkg/validation"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Orchestrator runs configured workflows. One instance caches loaded data
// across runs (grid search, walk-forward and backtest over the same file).
type Orchestrator struct {
	cfg      *config.Config
	log      *zap.Logger
	provider data.DataProvider
	filter   *data.DefaultDataFilter
	registry *strategy.Registry
}

// New builds an orchestrator with the default scorer registry.
func New(cfg *config.Config, log *zap.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if log == nil {
		log = zap.NewNop()
	}

	registry := strategy.NewRegistry()
	if err := registry.Register(&strategy.MomentumScorer{Params: strategy.MomentumParams{
		EMAFast:            cfg.Strategy.EMAFast,
		EMASlow:            cfg.Strategy.EMASlow,
		ATRWindow:          cfg.Strategy.ATRWindow,
		VolFilterMinATRPct: cfg.Strategy.VolFilterMinATRPct,
	}}); err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:      cfg,
		log:      log,
		provider: data.NewCachedProvider(data.NewCSVProvider()),
		filter:   data.NewDefaultDataFilter(),
		registry: registry,
	}, nil
}

// Registry exposes the scorer registry so callers can add custom scorers
// before running.
func (o *Orchestrator) Registry() *strategy.Registry {
	return o.registry
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// LoadBars loads, validates and date-slices the configured CSV.
func (o *Orchestrator) LoadBars() ([]types.OHLCV, error) {
	if o.cfg.Data.CSVPath == "" {
		return nil, fmt.Errorf("no data csv_path configured")
	}

	bars, err := o.provider.LoadData(o.cfg.Data.CSVPath)
	if err != nil {
		monitoring.RecordError("data_load")
		return nil, err
	}
	if err := o.provider.ValidateData(bars); err != nil {
		monitoring.RecordError("data_validate")
		return nil, fmt.Errorf("validate %s: %w", o.cfg.Data.CSVPath, err)
	}

	start, err := parseDate(o.cfg.Data.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(o.cfg.Data.End)
	if err != nil {
		return nil, err
	}
	sliced := o.filter.FilterByDateRange(bars, start, end)
	if len(sliced) == 0 {
		return nil, fmt.Errorf("no bars in range %s..%s", o.cfg.Data.Start, o.cfg.Data.End)
	}

	o.log.Info("loaded bars",
		zap.String("source", o.cfg.Data.CSVPath),
		zap.Int("total", len(bars)),
		zap.Int("selected", len(sliced)))
	return sliced, nil
}

// Signals annotates bars using the configured scorer. The momentum scorer
// runs through the native signal path; any other registered scorer goes
// through score thresholding.
func (o *Orchestrator) Signals(bars []types.OHLCV) ([]strategy.SignalBar, error) {
	name := o.cfg.Strategy.Name
	if name == strategy.MomentumScorerName {
		return strategy.GenerateSignals(bars, strategy.MomentumParams{
			EMAFast:            o.cfg.Strategy.EMAFast,
			EMASlow:            o.cfg.Strategy.EMASlow,
			ATRWindow:          o.cfg.Strategy.ATRWindow,
			VolFilterMinATRPct: o.cfg.Strategy.VolFilterMinATRPct,
		}), nil
	}

	scorer, err := o.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return strategy.SignalsFromScorer(bars, scorer, o.cfg.Strategy.SignalThreshold, o.cfg.Strategy.ATRWindow)
}

// EngineConfig assembles the engine parameters, loading the events calendar
// into an entry blackout when one is configured.
func (o *Orchestrator) EngineConfig() (backtest.Config, error) {
	cfg := backtest.Config{
		StartCash:        o.cfg.Backtest.StartCash,
		ATRKStop:         o.cfg.Risk.ATRKStop,
		SlippagePct:      o.cfg.Backtest.SlippagePct,
		FeePercRoundturn: o.cfg.Backtest.FeePercRoundturn,
		PerTradeRiskPct:  o.cfg.Risk.PerTradeRiskPct,
		DailyLossStopPct: o.cfg.Risk.DailyLossStopPct,
		PeriodsPerYear:   o.cfg.General.PeriodsPerYear,
	}

	if o.cfg.Data.EventsCSV != "" {
		evts, err := events.LoadEventsCSV(o.cfg.Data.EventsCSV)
		if err != nil {
			monitoring.RecordError("events_load")
			return cfg, err
		}
		blackout := events.NewBlackout(evts,
			time.Duration(o.cfg.Backtest.BlackoutBeforeMin)*time.Minute,
			time.Duration(o.cfg.Backtest.BlackoutAfterMin)*time.Minute)
		cfg.EntryAllowed = blackout.Allowed
		o.log.Info("loaded event blackout",
			zap.String("source", o.cfg.Data.EventsCSV),
			zap.Int("events", blackout.Len()))
	}
	return cfg, nil
}

// BacktestOutcome bundles a run with its metrics and serialized report.
type BacktestOutcome struct {
	Result  *backtest.Result
	Metrics backtest.Metrics
	Report  *reporting.Report
}

// RunBacktest executes one configured backtest.
func (o *Orchestrator) RunBacktest() (*BacktestOutcome, error) {
	bars, err := o.LoadBars()
	if err != nil {
		return nil, err
	}
	sig, err := o.Signals(bars)
	if err != nil {
		return nil, err
	}
	engineCfg, err := o.EngineConfig()
	if err != nil {
		return nil, err
	}

	res := backtest.NewEngine(engineCfg).Run(sig)
	met := backtest.MetricsFromPnL(res.PnL, res.StartCash, res.EndCash, o.cfg.General.PeriodsPerYear)
	monitoring.RecordBacktest("backtest", len(res.Trades))

	o.log.Info("backtest complete",
		zap.Float64("end_cash", res.EndCash),
		zap.Int("trades", len(res.Trades)),
		zap.Float64("total_return", met.TotalReturn))

	return &BacktestOutcome{
		Result:  res,
		Metrics: met,
		Report:  reporting.NewReport(res, met),
	}, nil
}

// Optimize runs a grid search over the configured data. The grid's engine
// parameters are filled from the configuration; list fields come from the
// caller.
func (o *Orchestrator) Optimize(grid backtest.GridConfig) ([]backtest.GridResult, error) {
	bars, err := o.LoadBars()
	if err != nil {
		return nil, err
	}
	engineCfg, err := o.EngineConfig()
	if err != nil {
		return nil, err
	}
	grid.Engine = engineCfg
	if grid.PeriodsPerYear == 0 {
		grid.PeriodsPerYear = o.cfg.General.PeriodsPerYear
	}

	results := backtest.GridSearch(bars, grid)
	monitoring.RecordBacktest("optimize", 0)
	o.log.Info("grid search complete", zap.Int("results", len(results)))
	return results, nil
}

// WalkForward runs walk-forward analysis. The grid inside wf receives the
// configured engine parameters.
func (o *Orchestrator) WalkForward(wf validation.WalkForwardConfig) (*validation.WalkForwardResult, error) {
	bars, err := o.LoadBars()
	if err != nil {
		return nil, err
	}
	engineCfg, err := o.EngineConfig()
	if err != nil {
		return nil, err
	}
	wf.Grid.Engine = engineCfg
	if wf.PeriodsPerYear == 0 {
		wf.PeriodsPerYear = o.cfg.General.PeriodsPerYear
	}

	v, err := validation.NewValidator(wf)
	if err != nil {
		return nil, err
	}
	res, err := v.Run(bars)
	if err != nil {
		return nil, err
	}
	monitoring.RecordBacktest("walkforward", res.Summary.NumTrades)

	if res.Insufficient {
		o.log.Warn("insufficient data for walk-forward analysis",
			zap.Int("bars", len(bars)),
			zap.Int("train_bars", wf.TrainBars),
			zap.Int("test_bars", wf.TestBars))
	} else {
		o.log.Info("walk-forward complete",
			zap.Int("folds", len(res.Folds)),
			zap.Float64("end_cash", res.EndCash))
	}
	return res, nil
}

// PaperSession builds a configured incremental replay session over the
// configured data.
func (o *Orchestrator) PaperSession() (*paper.Session, error) {
	bars, err := o.LoadBars()
	if err != nil {
		return nil, err
	}
	sig, err := o.Signals(bars)
	if err != nil {
		return nil, err
	}
	engineCfg, err := o.EngineConfig()
	if err != nil {
		return nil, err
	}

	session := paper.NewSession()
	session.Configure(sig, engineCfg)
	monitoring.RecordBacktest("paper", 0)
	return session, nil
}
