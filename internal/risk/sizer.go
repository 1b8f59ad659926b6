package risk

// Config holds the risk parameters of a run.
type Config struct {
	// PerTradeRiskPct is the percentage of current equity risked per trade.
	PerTradeRiskPct float64

	// DailyLossStopPct halts new entries for the rest of a UTC calendar day
	// once realized losses reach this percentage of the run's starting
	// capital. Zero disables the breaker.
	DailyLossStopPct float64
}

// DefaultConfig returns the standard risk parameters.
func DefaultConfig() Config {
	return Config{
		PerTradeRiskPct:  0.25,
		DailyLossStopPct: 1.0,
	}
}

// PositionSizeFromATR converts equity, a risk percentage and an ATR stop
// distance into a trade size in units:
//
//	size = (equity * perTradeRiskPct/100) / (atrKStop * atrValue)
//
// The result is floored at 0, and 0 is returned when the stop distance is not
// positive (no trade).
func PositionSizeFromATR(equity, perTradeRiskPct, atrKStop, atrValue float64) float64 {
	stopDistance := atrKStop * atrValue
	if stopDistance <= 0 {
		return 0
	}
	units := equity * (perTradeRiskPct / 100.0) / stopDistance
	if units < 0 {
		return 0
	}
	return units
}
