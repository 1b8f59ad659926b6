package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSizeFromATR(t *testing.T) {
	tests := []struct {
		name            string
		equity          float64
		perTradeRiskPct float64
		atrKStop        float64
		atrValue        float64
		want            float64
	}{
		{"basic sizing", 1_000_000, 1.0, 2.0, 1.0, 5000},
		{"quarter percent risk", 1_000_000, 0.25, 2.0, 0.5, 2500},
		{"zero atr means no trade", 1_000_000, 1.0, 2.0, 0, 0},
		{"negative atr means no trade", 1_000_000, 1.0, 2.0, -1, 0},
		{"zero stop multiple means no trade", 1_000_000, 1.0, 0, 1.0, 0},
		{"zero equity sizes zero", 0, 1.0, 2.0, 1.0, 0},
		{"negative equity floors at zero", -100, 1.0, 2.0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionSizeFromATR(tt.equity, tt.perTradeRiskPct, tt.atrKStop, tt.atrValue)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPositionSizeFromATR_ScalesWithEquity(t *testing.T) {
	small := PositionSizeFromATR(100_000, 1.0, 2.0, 1.0)
	large := PositionSizeFromATR(200_000, 1.0, 2.0, 1.0)
	assert.InDelta(t, 2*small, large, 1e-9)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.25, cfg.PerTradeRiskPct)
	assert.Equal(t, 1.0, cfg.DailyLossStopPct)
}
