package types

import "time"

// OHLCV is one price bar for a fixed time interval. Bars are produced by a
// data provider in timestamp order and never mutated afterwards.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}
