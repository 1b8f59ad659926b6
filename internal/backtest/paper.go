package backtest

import (
	"time"

	"github.com/fxlab/fxbot/internal/strategy"
)

// PaperEngine is the steppable variant of Engine: it applies the same
// transitions one bar per Step call, so stepping a series to completion ends
// in exactly the state Engine.Run produces for the same bars and parameters.
// A PaperEngine is single-writer; callers must serialize Step calls.
type PaperEngine struct {
	bars []strategy.SignalBar
	st   *engineState
	ptr  int
}

// PaperStatus is a point-in-time view of a stepped replay.
type PaperStatus struct {
	Ptr           int
	Total         int
	LastTimestamp time.Time
	Position      float64
	EntryPrice    float64
	Equity        float64
	Summary       Metrics
}

// NewPaperEngine creates a paper engine over a fixed signal-annotated bar
// sequence.
func NewPaperEngine(bars []strategy.SignalBar, cfg Config) *PaperEngine {
	return &PaperEngine{
		bars: bars,
		st:   newEngineState(cfg),
	}
}

// Step advances one bar and reports whether bars remain. After the final bar
// any open position is force-closed, mirroring the batch engine's end-of-run
// behavior. Stepping past the end is a no-op returning false.
func (p *PaperEngine) Step() bool {
	if p.ptr >= len(p.bars) {
		return false
	}
	p.st.processBar(&p.bars[p.ptr])
	p.ptr++
	if p.ptr == len(p.bars) {
		p.st.forceClose(&p.bars[len(p.bars)-1])
		return false
	}
	return true
}

// Done reports whether all bars have been stepped.
func (p *PaperEngine) Done() bool {
	return p.ptr >= len(p.bars)
}

// Status returns the current bar pointer, position state and a metrics
// summary over the PnL observed so far.
func (p *PaperEngine) Status() PaperStatus {
	status := PaperStatus{
		Ptr:        p.ptr,
		Total:      len(p.bars),
		Position:   p.st.position,
		EntryPrice: p.st.entryPrice,
		Equity:     p.st.equity,
	}
	if p.ptr > 0 {
		status.LastTimestamp = p.bars[p.ptr-1].Timestamp
		status.Summary = MetricsFromPnL(p.st.pnl, p.st.cfg.StartCash, p.st.cash, p.st.cfg.PeriodsPerYear)
	}
	return status
}

// Result snapshots the run outcome so far. After the final Step it is
// identical to the batch engine's Result for the same inputs.
func (p *PaperEngine) Result() *Result {
	res := p.st.result()
	trades := make([]Trade, len(res.Trades))
	copy(trades, res.Trades)
	pnl := make([]PnLPoint, len(res.PnL))
	copy(pnl, res.PnL)
	res.Trades = trades
	res.PnL = pnl
	return res
}
