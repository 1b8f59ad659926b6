package strategy

import (
	"fmt"

	"github.com/fxlab/fxbot/pkg/types"
)

// Scorer produces one score per bar. Scores are thresholded into long/flat
// signals by SignalsFromScorer. Scorers are registered explicitly at startup
// and selected by configuration; there is no runtime symbol resolution.
type Scorer interface {
	// Name identifies the scorer in configuration and registries.
	Name() string

	// Score returns one value per input bar.
	Score(bars []types.OHLCV) ([]float64, error)
}

// MomentumScorer adapts the rule-based momentum strategy to the Scorer
// interface: it scores 1 when the momentum signal is on and 0 otherwise.
type MomentumScorer struct {
	Params MomentumParams
}

// MomentumScorerName is the registry name of the built-in momentum scorer.
const MomentumScorerName = "momo_atr"

func (s *MomentumScorer) Name() string { return MomentumScorerName }

func (s *MomentumScorer) Score(bars []types.OHLCV) ([]float64, error) {
	sig := GenerateSignals(bars, s.Params)
	out := make([]float64, len(sig))
	for i, sb := range sig {
		out[i] = float64(sb.Signal)
	}
	return out, nil
}

// SignalsFromScorer thresholds an arbitrary scorer into signal bars:
// signal is 1 iff score >= threshold. Because a generic scorer carries no
// indicator columns, the ATR used for stop placement falls back to a rolling
// mean of the bar range (high-low) over atrWindow, with a shorter window at
// the start of the series.
func SignalsFromScorer(bars []types.OHLCV, scorer Scorer, threshold float64, atrWindow int) ([]SignalBar, error) {
	scores, err := scorer.Score(bars)
	if err != nil {
		return nil, fmt.Errorf("scorer %q: %w", scorer.Name(), err)
	}
	if len(scores) != len(bars) {
		return nil, fmt.Errorf("scorer %q returned %d scores for %d bars", scorer.Name(), len(scores), len(bars))
	}
	if atrWindow < 1 {
		atrWindow = 1
	}

	out := make([]SignalBar, len(bars))
	var rangeSum float64
	for i, b := range bars {
		rangeSum += b.High - b.Low
		if i >= atrWindow {
			rangeSum -= bars[i-atrWindow].High - bars[i-atrWindow].Low
		}
		n := i + 1
		if n > atrWindow {
			n = atrWindow
		}

		sig := 0
		if scores[i] >= threshold {
			sig = 1
		}
		out[i] = SignalBar{
			OHLCV:  b,
			ATR:    rangeSum / float64(n),
			Signal: sig,
		}
	}
	return out, nil
}

var _ Scorer = (*MomentumScorer)(nil)
