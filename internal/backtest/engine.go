package backtest

import (
	"math"
	"sort"
	"time"

	"github.com/fxlab/fxbot/internal/risk"
	"github.com/fxlab/fxbot/internal/strategy"
)

// Trade is one round trip of the long/flat engine. ExitTime and ExitPrice are
// zero while the trade is open; Size and ATRStop are fixed at entry.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	ATRStop    float64
}

// Closed reports whether the trade has been exited.
func (t Trade) Closed() bool {
	return !t.ExitTime.IsZero()
}

// PnLPoint is the realized profit or loss booked at one bar. The engine emits
// points in timestamp order; a timestamp appears at most once.
type PnLPoint struct {
	Timestamp time.Time
	Value     float64
}

// Config holds the cost and risk parameters of a single engine run.
type Config struct {
	StartCash        float64
	ATRKStop         float64
	SlippagePct      float64
	FeePercRoundturn float64
	PerTradeRiskPct  float64

	// DailyLossStopPct blocks new entries for the rest of a UTC calendar day
	// once that day's realized losses reach this percentage of StartCash.
	// Zero disables the breaker.
	DailyLossStopPct float64

	// EntryAllowed vetoes entries at specific timestamps (news blackout
	// windows). Nil allows all entries.
	EntryAllowed func(ts time.Time) bool

	// PeriodsPerYear annualizes the Sharpe-like ratio in incremental status
	// summaries. Zero uses DefaultPeriodsPerYear.
	PeriodsPerYear int
}

// Result is the immutable outcome of one engine run.
type Result struct {
	StartCash float64
	EndCash   float64
	Trades    []Trade
	PnL       []PnLPoint
}

// Engine runs the long/flat state machine over a signal-annotated bar
// sequence. One instance may be reused for sequential runs but is not safe
// for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given parameters.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run iterates the bars in order, applying exits before entries on every bar,
// and force-closes any position left open after the last bar.
func (e *Engine) Run(bars []strategy.SignalBar) *Result {
	st := newEngineState(e.cfg)
	for i := range bars {
		st.processBar(&bars[i])
	}
	if len(bars) > 0 {
		st.forceClose(&bars[len(bars)-1])
	}
	return st.result()
}

// engineState is the mutable position/cash state shared by the batch engine
// and the incremental paper engine. Equity mirrors cash after every
// cash-changing event; open positions are not marked to market.
type engineState struct {
	cfg Config

	cash       float64
	equity     float64
	position   float64
	entryPrice float64
	atrStop    float64

	trades      []Trade
	pnl         []PnLPoint
	dayRealized map[string]float64
}

func newEngineState(cfg Config) *engineState {
	return &engineState{
		cfg:         cfg,
		cash:        cfg.StartCash,
		equity:      cfg.StartCash,
		atrStop:     math.NaN(),
		dayRealized: make(map[string]float64),
	}
}

// dayKey buckets a timestamp into its UTC calendar date.
func dayKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// processBar applies the exit transition, then the entry transition, for one
// bar. Exits always run first so a stop-out and a re-entry can share a bar.
func (s *engineState) processBar(bar *strategy.SignalBar) {
	price := bar.Close
	ts := bar.Timestamp
	day := dayKey(ts)

	if s.position > 0 {
		if bar.Signal == 0 || price <= s.atrStop {
			s.closePosition(ts, price)
		}
	}

	if s.position != 0 || bar.Signal != 1 {
		return
	}
	a := bar.ATR
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return
	}
	if s.cfg.EntryAllowed != nil && !s.cfg.EntryAllowed(ts) {
		return
	}
	if s.cfg.DailyLossStopPct > 0 {
		limit := s.cfg.StartCash * (s.cfg.DailyLossStopPct / 100.0)
		if s.dayRealized[day] <= -limit {
			return
		}
	}

	units := risk.PositionSizeFromATR(s.equity, s.cfg.PerTradeRiskPct, s.cfg.ATRKStop, a)
	if units <= 0 {
		return
	}

	px := price * (1.0 + s.cfg.SlippagePct)
	fee := math.Abs(px*units) * (s.cfg.FeePercRoundturn / 2.0)
	s.entryPrice = px
	s.atrStop = px - s.cfg.ATRKStop*a
	s.position = units
	s.trades = append(s.trades, Trade{
		EntryTime:  ts,
		EntryPrice: px,
		Size:       units,
		ATRStop:    s.atrStop,
	})
	s.cash -= fee
	s.equity = s.cash
}

// closePosition books the exit at the given bar close, charging the full
// round-turn fee on the exit notional.
func (s *engineState) closePosition(ts time.Time, price float64) {
	px := price * (1.0 - s.cfg.SlippagePct)
	gross := (px - s.entryPrice) * s.position
	fee := math.Abs(px*s.position) * s.cfg.FeePercRoundturn
	tradePnL := gross - fee

	s.cash += tradePnL
	s.equity = s.cash

	last := &s.trades[len(s.trades)-1]
	last.ExitTime = ts
	last.ExitPrice = px

	s.position = 0
	s.entryPrice = 0
	s.atrStop = math.NaN()

	s.appendPnL(ts, tradePnL)
	s.dayRealized[dayKey(ts)] += tradePnL
}

// forceClose exits a position still open after the last bar at that bar's
// close, using the regular exit formula.
func (s *engineState) forceClose(last *strategy.SignalBar) {
	if s.position <= 0 {
		return
	}
	s.closePosition(last.Timestamp, last.Close)
}

// appendPnL records realized PnL at a timestamp, folding a same-timestamp
// entry into one point (an exit and a forced close can share the last bar).
func (s *engineState) appendPnL(ts time.Time, v float64) {
	if n := len(s.pnl); n > 0 && s.pnl[n-1].Timestamp.Equal(ts) {
		s.pnl[n-1].Value += v
		return
	}
	s.pnl = append(s.pnl, PnLPoint{Timestamp: ts, Value: v})
}

func (s *engineState) result() *Result {
	return &Result{
		StartCash: s.cfg.StartCash,
		EndCash:   s.cash,
		Trades:    s.trades,
		PnL:       s.pnl,
	}
}

// MergePnL combines PnL series from consecutive (possibly overlapping) runs
// into one series ordered by timestamp, summing values that share a
// timestamp.
func MergePnL(parts ...[]PnLPoint) []PnLPoint {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total == 0 {
		return nil
	}

	byTS := make(map[time.Time]float64, total)
	for _, part := range parts {
		for _, pt := range part {
			byTS[pt.Timestamp] = byTS[pt.Timestamp] + pt.Value
		}
	}

	out := make([]PnLPoint, 0, len(byTS))
	for ts, v := range byTS {
		out = append(out, PnLPoint{Timestamp: ts, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
