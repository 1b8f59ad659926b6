package strategy

import (
	"github.com/fxlab/fxbot/internal/indicators"
	"github.com/fxlab/fxbot/pkg/types"
)

// SignalBar is a bar annotated with the indicator values and the entry signal
// derived from one parameter set. Derived once, never mutated afterwards.
type SignalBar struct {
	types.OHLCV
	EMAFast float64
	EMASlow float64
	ATR     float64
	Signal  int
}

// MomentumParams are the strategy parameters of the EMA-cross momentum rule.
type MomentumParams struct {
	EMAFast            int
	EMASlow            int
	ATRWindow          int
	VolFilterMinATRPct float64
}

// GenerateSignals annotates bars with fast/slow EMA, ATR and the long/flat
// signal. Signal is 1 iff the fast EMA is above the slow EMA and, when the
// volatility filter is active, ATR/close is at least VolFilterMinATRPct.
//
// The EMAs are seeded with the first raw value, so every indicator is defined
// from the first bar and the output has the same length as the input.
func GenerateSignals(bars []types.OHLCV, p MomentumParams) []SignalBar {
	out := make([]SignalBar, len(bars))
	fast := indicators.NewEMA(p.EMAFast)
	slow := indicators.NewEMA(p.EMASlow)
	atr := indicators.NewATR(p.ATRWindow)

	for i, b := range bars {
		ef := fast.Update(b.Close)
		es := slow.Update(b.Close)
		av := atr.Update(b.High, b.Low, b.Close)

		sig := 0
		if ef > es {
			sig = 1
		}
		if sig == 1 && p.VolFilterMinATRPct > 0 {
			if b.Close <= 0 || av/b.Close < p.VolFilterMinATRPct {
				sig = 0
			}
		}

		out[i] = SignalBar{
			OHLCV:   b,
			EMAFast: ef,
			EMASlow: es,
			ATR:     av,
			Signal:  sig,
		}
	}
	return out
}
