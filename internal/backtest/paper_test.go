package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/fxbot/internal/strategy"
)

// Stepping through every bar must land on exactly the same cash, trades and
// PnL as a batch run over the same inputs.
func TestPaperEngine_MatchesBatchRun(t *testing.T) {
	sig := strategy.GenerateSignals(barsFromCloses(zigzagCloses(300)), strategy.MomentumParams{
		EMAFast: 4, EMASlow: 12, ATRWindow: 10,
	})
	cfg := Config{
		StartCash:        1_000_000,
		ATRKStop:         2.0,
		PerTradeRiskPct:  0.5,
		SlippagePct:      0.0005,
		FeePercRoundturn: 0.001,
		DailyLossStopPct: 1.0,
	}

	batch := NewEngine(cfg).Run(sig)

	pe := NewPaperEngine(sig, cfg)
	for pe.Step() {
	}
	stepped := pe.Result()

	assert.Equal(t, batch.EndCash, stepped.EndCash)
	require.Equal(t, len(batch.Trades), len(stepped.Trades))
	for i := range batch.Trades {
		assert.Equal(t, batch.Trades[i], stepped.Trades[i])
	}
	require.Equal(t, len(batch.PnL), len(stepped.PnL))
	for i := range batch.PnL {
		assert.Equal(t, batch.PnL[i], stepped.PnL[i])
	}
}

func TestPaperEngine_StatusProgression(t *testing.T) {
	sig := strategy.GenerateSignals(barsFromCloses(risingCloses(10)), strategy.MomentumParams{
		EMAFast: 2, EMASlow: 4, ATRWindow: 3,
	})
	pe := NewPaperEngine(sig, Config{StartCash: 100_000, ATRKStop: 2.0, PerTradeRiskPct: 1.0})

	st := pe.Status()
	assert.Equal(t, 0, st.Ptr)
	assert.Equal(t, 10, st.Total)
	assert.True(t, st.LastTimestamp.IsZero())
	assert.Equal(t, 100_000.0, st.Equity)
	assert.False(t, pe.Done())

	require.True(t, pe.Step())
	st = pe.Status()
	assert.Equal(t, 1, st.Ptr)
	assert.Equal(t, sig[0].Timestamp, st.LastTimestamp)

	for pe.Step() {
	}
	assert.True(t, pe.Done())

	st = pe.Status()
	assert.Equal(t, 10, st.Ptr)
	assert.Equal(t, sig[9].Timestamp, st.LastTimestamp)
	assert.Equal(t, 0.0, st.Position, "final step force-closes any open position")
}

func TestPaperEngine_StepPastEnd(t *testing.T) {
	sig := strategy.GenerateSignals(barsFromCloses([]float64{100, 101}), strategy.MomentumParams{
		EMAFast: 1, EMASlow: 2, ATRWindow: 2,
	})
	pe := NewPaperEngine(sig, Config{StartCash: 1_000, ATRKStop: 1.0, PerTradeRiskPct: 1.0})

	assert.True(t, pe.Step())
	assert.False(t, pe.Step())
	assert.False(t, pe.Step(), "stepping a finished engine stays a no-op")

	res := pe.Result()
	assert.Equal(t, 2, pe.Status().Ptr)
	for _, tr := range res.Trades {
		assert.True(t, tr.Closed())
	}
}

func TestPaperEngine_Empty(t *testing.T) {
	pe := NewPaperEngine(nil, Config{StartCash: 500})
	assert.True(t, pe.Done())
	assert.False(t, pe.Step())
	assert.Equal(t, 500.0, pe.Result().EndCash)
}
