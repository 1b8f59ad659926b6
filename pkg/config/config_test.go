package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "momo_atr", cfg.Strategy.Name)
	assert.Equal(t, 20, cfg.Strategy.EMAFast)
	assert.Equal(t, 60, cfg.Strategy.EMASlow)
	assert.Equal(t, 14, cfg.Strategy.ATRWindow)
	assert.Equal(t, 2.0, cfg.Risk.ATRKStop)
	assert.Equal(t, 0.25, cfg.Risk.PerTradeRiskPct)
	assert.Equal(t, 1.0, cfg.Risk.DailyLossStopPct)
	assert.Equal(t, 1_000_000.0, cfg.Backtest.StartCash)
	assert.Equal(t, 24*252, cfg.General.PeriodsPerYear)
	assert.Equal(t, "out", cfg.Output.ReportDir)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  csv_path: testdata/eurusd_1h.csv
strategy:
  ema_fast: 10
  ema_slow: 40
risk:
  atr_k_stop: 3.0
backtest:
  start_cash: 250000
  slippage_pct: 0.0001
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/eurusd_1h.csv", cfg.Data.CSVPath)
	assert.Equal(t, 10, cfg.Strategy.EMAFast)
	assert.Equal(t, 40, cfg.Strategy.EMASlow)
	assert.Equal(t, 3.0, cfg.Risk.ATRKStop)
	assert.Equal(t, 250_000.0, cfg.Backtest.StartCash)
	assert.Equal(t, 0.0001, cfg.Backtest.SlippagePct)

	// Untouched sections keep their defaults.
	assert.Equal(t, 14, cfg.Strategy.ATRWindow)
	assert.Equal(t, "momo_atr", cfg.Strategy.Name)
}

func TestLoad_RejectsFastNotBelowSlow(t *testing.T) {
	path := writeConfig(t, `
strategy:
  ema_fast: 60
  ema_slow: 20
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMASlow")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"zero start cash":    "backtest:\n  start_cash: 0\n",
		"negative slippage":  "backtest:\n  slippage_pct: -0.1\n",
		"zero atr window":    "strategy:\n  atr_window: 0\n",
		"bad log level":      "general:\n  log_level: loud\n",
		"negative risk":      "risk:\n  per_trade_risk_pct: -1\n",
		"malformed yaml":     "strategy: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
