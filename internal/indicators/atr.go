package indicators

import (
	"math"

	"github.com/fxlab/fxbot/pkg/types"
)

// ATR is a streaming average true range: an EMA of the true range with
// span equal to the ATR window. The first bar has no previous close, so its
// true range is high-low.
type ATR struct {
	window    int
	ema       *EMA
	lastClose float64
	primed    bool
}

// NewATR creates a new ATR with the given window.
func NewATR(window int) *ATR {
	return &ATR{
		window: window,
		ema:    NewEMA(window),
	}
}

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(high, low, prevClose float64) float64 {
	hl := high - low
	hc := math.Abs(high - prevClose)
	lc := math.Abs(low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// Update feeds one bar and returns the current ATR.
func (a *ATR) Update(high, low, close float64) float64 {
	var tr float64
	if a.primed {
		tr = TrueRange(high, low, a.lastClose)
	} else {
		tr = high - low
		a.primed = true
	}
	a.lastClose = close
	return a.ema.Update(tr)
}

// Last returns the most recent ATR value, or 0 before the first Update.
func (a *ATR) Last() float64 {
	return a.ema.Last()
}

// Window returns the configured window.
func (a *ATR) Window() int {
	return a.window
}

// Reset clears the internal state.
func (a *ATR) Reset() {
	a.ema.Reset()
	a.lastClose = 0
	a.primed = false
}

// ATRSeries computes the ATR over a whole bar sequence. The result has the
// same length as the input.
func ATRSeries(bars []types.OHLCV, window int) []float64 {
	out := make([]float64, len(bars))
	atr := NewATR(window)
	for i, b := range bars {
		out[i] = atr.Update(b.High, b.Low, b.Close)
	}
	return out
}
