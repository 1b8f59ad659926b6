package backtest

import "math"

// DefaultPeriodsPerYear annualizes hourly FX bars: 24 hours over 252 trading
// days.
const DefaultPeriodsPerYear = 24 * 252

// Metrics summarizes a PnL series. ProfitFactor is +Inf when there are wins
// and no losses; report writers render that as a null sentinel.
type Metrics struct {
	TotalReturn  float64
	SharpeApprox float64
	MaxDrawdown  float64
	NumTrades    int
	WinRate      float64
	AvgTrade     float64
	AvgWin       float64
	AvgLoss      float64
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
}

// MetricsFromPnL derives summary statistics from a realized PnL series.
// Every division-by-zero condition falls back to a neutral zero value.
func MetricsFromPnL(pnl []PnLPoint, startCash, endCash float64, periodsPerYear int) Metrics {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}

	var m Metrics

	// Per-step returns against the prior equity level.
	returns := make([]float64, 0, len(pnl))
	equity := startCash
	for _, pt := range pnl {
		if equity != 0 {
			returns = append(returns, pt.Value/equity)
		} else {
			returns = append(returns, 0)
		}
		equity += pt.Value
	}

	if len(returns) > 0 {
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		variance := 0.0
		for _, r := range returns {
			d := r - mean
			variance += d * d
		}
		variance /= float64(len(returns)) // population, not sample
		if std := math.Sqrt(variance); std != 0 {
			m.SharpeApprox = mean / std * math.Sqrt(float64(periodsPerYear))
		}
	}

	// Max drawdown against the running equity peak.
	equity = startCash
	peak := startCash
	for _, pt := range pnl {
		equity += pt.Value
		if equity > peak {
			peak = equity
		}
		if peak != 0 {
			if dd := (equity - peak) / peak; dd < m.MaxDrawdown {
				m.MaxDrawdown = dd
			}
		}
	}

	// Trade-level stats: every nonzero PnL entry is one closed trade.
	var wins, losses int
	var total float64
	for _, pt := range pnl {
		if pt.Value == 0 {
			continue
		}
		m.NumTrades++
		total += pt.Value
		if pt.Value > 0 {
			wins++
			m.GrossProfit += pt.Value
		} else {
			losses++
			m.GrossLoss += pt.Value
		}
	}
	if m.NumTrades > 0 {
		m.WinRate = float64(wins) / float64(m.NumTrades)
		m.AvgTrade = total / float64(m.NumTrades)
	}
	if wins > 0 {
		m.AvgWin = m.GrossProfit / float64(wins)
	}
	if losses > 0 {
		m.AvgLoss = m.GrossLoss / float64(losses)
	}
	switch {
	case m.GrossLoss != 0:
		m.ProfitFactor = m.GrossProfit / math.Abs(m.GrossLoss)
	case m.GrossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}

	if startCash > 0 {
		m.TotalReturn = endCash/startCash - 1.0
	}
	return m
}
