package indicators

// EMA is a streaming exponential moving average with smoothing factor
// alpha = 2/(span+1). It is seeded with the first observed value, so it is
// defined from the very first bar with no warm-up gap.
type EMA struct {
	span        int
	alpha       float64
	lastValue   float64
	initialized bool
}

// NewEMA creates a new EMA with the given span. Spans below 1 are clamped to
// 1, which reduces the EMA to the raw input series.
func NewEMA(span int) *EMA {
	if span < 1 {
		span = 1
	}
	return &EMA{
		span:  span,
		alpha: 2.0 / float64(span+1),
	}
}

// Update feeds one value and returns the current EMA.
func (e *EMA) Update(value float64) float64 {
	if !e.initialized {
		e.lastValue = value
		e.initialized = true
		return e.lastValue
	}
	e.lastValue = e.alpha*value + (1-e.alpha)*e.lastValue
	return e.lastValue
}

// Last returns the most recent EMA value, or 0 before the first Update.
func (e *EMA) Last() float64 {
	return e.lastValue
}

// Initialized reports whether the EMA has seen at least one value.
func (e *EMA) Initialized() bool {
	return e.initialized
}

// Span returns the configured span.
func (e *EMA) Span() int {
	return e.span
}

// Reset clears the internal state so the next Update seeds again.
func (e *EMA) Reset() {
	e.lastValue = 0
	e.initialized = false
}

// EMASeries computes the EMA over a whole series. The result has the same
// length as the input.
func EMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	ema := NewEMA(span)
	for i, v := range values {
		out[i] = ema.Update(v)
	}
	return out
}
