package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/pkg/types"
)

func wfBars(n int) []types.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, n)
	price := 100.0
	for i := range bars {
		if i%11 < 7 {
			price += 1.1
		} else {
			price -= 1.6
		}
		bars[i] = types.OHLCV{
			Open: price, High: price + 0.5, Low: price - 0.5, Close: price, Volume: 1000,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return bars
}

func wfGrid() backtest.GridConfig {
	return backtest.GridConfig{
		EMAFastList:   []int{3, 5},
		EMASlowList:   []int{12},
		ATRWindowList: []int{7},
		ATRKStopList:  []float64{2.0},
		Engine: backtest.Config{
			StartCash:       1_000_000,
			PerTradeRiskPct: 0.5,
		},
	}
}

func TestBarFolds(t *testing.T) {
	// N=100, train=50, test=20, step=10: floor((100-70)/10)+1 = 4 folds.
	folds := BarFolds(100, 50, 20, 10)
	require.Len(t, folds, 4)

	assert.Equal(t, Fold{0, 50, 50, 70}, folds[0])
	assert.Equal(t, Fold{10, 60, 60, 80}, folds[1])
	assert.Equal(t, Fold{30, 80, 80, 100}, folds[3])

	for _, f := range folds {
		assert.Equal(t, f.TrainEnd, f.TestStart, "test window starts where train ends")
	}
}

func TestBarFolds_TooFewBars(t *testing.T) {
	assert.Nil(t, BarFolds(69, 50, 20, 10))
	assert.Len(t, BarFolds(70, 50, 20, 10), 1)
	assert.Nil(t, BarFolds(100, 0, 20, 10))
}

func TestNewValidator_Validation(t *testing.T) {
	_, err := NewValidator(WalkForwardConfig{TrainBars: 0, TestBars: 10})
	assert.Error(t, err)

	_, err = NewValidator(WalkForwardConfig{TrainBars: 10, TestBars: 0})
	assert.Error(t, err)

	_, err = NewValidator(WalkForwardConfig{TrainBars: 10, TestBars: 5, StepBars: -1})
	assert.Error(t, err)

	v, err := NewValidator(WalkForwardConfig{TrainBars: 10, TestBars: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, v.cfg.StepBars, "step defaults to the test window size")
}

func TestValidator_InsufficientData(t *testing.T) {
	v, err := NewValidator(WalkForwardConfig{TrainBars: 200, TestBars: 100, Grid: wfGrid()})
	require.NoError(t, err)

	res, err := v.Run(wfBars(50))
	require.NoError(t, err)
	assert.True(t, res.Insufficient)
	assert.Empty(t, res.Folds)
	assert.Equal(t, 1_000_000.0, res.StartCash)
	assert.Equal(t, 1_000_000.0, res.EndCash)
}

func TestValidator_Run(t *testing.T) {
	v, err := NewValidator(WalkForwardConfig{TrainBars: 200, TestBars: 100, Grid: wfGrid()})
	require.NoError(t, err)

	res, err := v.Run(wfBars(600))
	require.NoError(t, err)
	require.False(t, res.Insufficient)

	// floor((600-300)/100)+1 = 4 folds.
	require.Len(t, res.Folds, 4)

	cash := res.StartCash
	for i, fr := range res.Folds {
		assert.Equal(t, cash, fr.StartCash, "fold %d must start with the prior fold's cash", i)
		assert.Less(t, fr.Params.EMAFast, fr.Params.EMASlow)
		cash = fr.EndCash
	}
	assert.Equal(t, cash, res.EndCash)

	// Merged out-of-sample PnL reconciles with the cash walk.
	var total float64
	for _, pt := range res.PnL {
		total += pt.Value
	}
	assert.InDelta(t, res.EndCash-res.StartCash, total, 1e-6)

	for i := 1; i < len(res.PnL); i++ {
		assert.True(t, res.PnL[i-1].Timestamp.Before(res.PnL[i].Timestamp))
	}
}

// A degenerate grid (no valid fast/slow pair) ends the walk with zero folds.
func TestValidator_EmptyGridStopsEarly(t *testing.T) {
	grid := wfGrid()
	grid.EMAFastList = []int{20}
	grid.EMASlowList = []int{10}

	v, err := NewValidator(WalkForwardConfig{TrainBars: 100, TestBars: 50, Grid: grid})
	require.NoError(t, err)

	res, err := v.Run(wfBars(300))
	require.NoError(t, err)
	assert.True(t, res.Insufficient)
	assert.Empty(t, res.Folds)
}

func TestValidator_OverlappingTestWindows(t *testing.T) {
	grid := wfGrid()
	v, err := NewValidator(WalkForwardConfig{TrainBars: 200, TestBars: 100, StepBars: 50, Grid: grid})
	require.NoError(t, err)

	res, err := v.Run(wfBars(500))
	require.NoError(t, err)
	require.False(t, res.Insufficient)

	// floor((500-300)/50)+1 = 5 folds, test windows overlapping by 50 bars.
	assert.Len(t, res.Folds, 5)

	// Merged PnL must stay strictly increasing in time even with overlap.
	for i := 1; i < len(res.PnL); i++ {
		assert.True(t, res.PnL[i-1].Timestamp.Before(res.PnL[i].Timestamp))
	}
}
