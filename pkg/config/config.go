// Package config loads and validates the YAML run configuration. Every field
// has a working default so a config file only needs to override what differs.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fxlab/fxbot/internal/risk"
)

// DataConfig locates and slices the input bars.
type DataConfig struct {
	CSVPath   string `yaml:"csv_path"`
	EventsCSV string `yaml:"events_csv"`

	// Start and End slice the series inclusively; empty means unbounded.
	// Accepted layouts match the data loader (RFC3339, date-time, date).
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// OutputConfig controls where reports land.
type OutputConfig struct {
	ReportDir string `yaml:"report_dir"`
}

// GeneralConfig holds run-wide settings.
type GeneralConfig struct {
	LogLevel       string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat      string `yaml:"log_format" validate:"omitempty,oneof=console json"`
	MetricsAddr    string `yaml:"metrics_addr"`
	PeriodsPerYear int    `yaml:"periods_per_year" validate:"gt=0"`
}

// StrategyConfig selects and parameterizes the signal generator.
type StrategyConfig struct {
	Name               string  `yaml:"name" validate:"required"`
	EMAFast            int     `yaml:"ema_fast" validate:"gt=0"`
	EMASlow            int     `yaml:"ema_slow" validate:"gt=0,gtfield=EMAFast"`
	ATRWindow          int     `yaml:"atr_window" validate:"gt=0"`
	SignalThreshold    float64 `yaml:"signal_threshold"`
	VolFilterMinATRPct float64 `yaml:"vol_filter_min_atr_pct" validate:"gte=0"`
}

// RiskConfig bounds position sizing and loss cutoffs.
type RiskConfig struct {
	PerTradeRiskPct  float64 `yaml:"per_trade_risk_pct" validate:"gt=0"`
	DailyLossStopPct float64 `yaml:"daily_loss_stop_pct" validate:"gte=0"`
	ATRKStop         float64 `yaml:"atr_k_stop" validate:"gt=0"`
}

// BacktestConfig holds the cash and cost model.
type BacktestConfig struct {
	StartCash         float64 `yaml:"start_cash" validate:"gt=0"`
	SlippagePct       float64 `yaml:"slippage_pct" validate:"gte=0"`
	FeePercRoundturn  float64 `yaml:"fee_perc_roundturn" validate:"gte=0"`
	BlackoutBeforeMin int     `yaml:"blackout_before_min" validate:"gte=0"`
	BlackoutAfterMin  int     `yaml:"blackout_after_min" validate:"gte=0"`
}

// Config is the root of the YAML document.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	General  GeneralConfig  `yaml:"general"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// Default returns the baseline configuration.
func Default() *Config {
	riskDefaults := risk.DefaultConfig()
	return &Config{
		Output: OutputConfig{ReportDir: "out"},
		General: GeneralConfig{
			LogLevel:       "info",
			LogFormat:      "console",
			PeriodsPerYear: 24 * 252,
		},
		Strategy: StrategyConfig{
			Name:            "momo_atr",
			EMAFast:         20,
			EMASlow:         60,
			ATRWindow:       14,
			SignalThreshold: 0.5,
		},
		Risk: RiskConfig{
			PerTradeRiskPct:  riskDefaults.PerTradeRiskPct,
			DailyLossStopPct: riskDefaults.DailyLossStopPct,
			ATRKStop:         2.0,
		},
		Backtest: BacktestConfig{
			StartCash: 1_000_000,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config field %s fails %q (value %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
