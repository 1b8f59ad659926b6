// Package reporting renders run results as JSON, CSV, Excel and console
// output.
package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/fxlab/fxbot/internal/backtest"
)

// TradeRecord is the serialized form of one trade. Exit fields are null for
// a trade that was still open when the snapshot was taken.
type TradeRecord struct {
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price"`
	Size       float64    `json:"size"`
	ATRStop    float64    `json:"atr_stop"`
}

// Summary is the serialized metrics block. ProfitFactor is null when there
// are wins and no losses; +Inf does not survive JSON.
type Summary struct {
	TotalReturn  float64  `json:"total_return"`
	SharpeApprox float64  `json:"sharpe_approx"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	NumTrades    int      `json:"num_trades"`
	WinRate      float64  `json:"win_rate"`
	AvgTrade     float64  `json:"avg_trade"`
	AvgWin       float64  `json:"avg_win"`
	AvgLoss      float64  `json:"avg_loss"`
	GrossProfit  float64  `json:"gross_profit"`
	GrossLoss    float64  `json:"gross_loss"`
	ProfitFactor *float64 `json:"profit_factor"`
}

// Report is the full JSON document for one backtest run. PnL keys are
// RFC3339 timestamps.
type Report struct {
	StartCash float64            `json:"start_cash"`
	EndCash   float64            `json:"end_cash"`
	Summary   Summary            `json:"summary"`
	Trades    []TradeRecord      `json:"trades"`
	PnL       map[string]float64 `json:"pnl"`
}

// NewSummary converts metrics into their serialized form.
func NewSummary(m backtest.Metrics) Summary {
	s := Summary{
		TotalReturn:  m.TotalReturn,
		SharpeApprox: m.SharpeApprox,
		MaxDrawdown:  m.MaxDrawdown,
		NumTrades:    m.NumTrades,
		WinRate:      m.WinRate,
		AvgTrade:     m.AvgTrade,
		AvgWin:       m.AvgWin,
		AvgLoss:      m.AvgLoss,
		GrossProfit:  m.GrossProfit,
		GrossLoss:    m.GrossLoss,
	}
	if !math.IsInf(m.ProfitFactor, 0) {
		pf := m.ProfitFactor
		s.ProfitFactor = &pf
	}
	return s
}

// NewReport assembles the document from a run result and its metrics.
func NewReport(res *backtest.Result, met backtest.Metrics) *Report {
	r := &Report{
		StartCash: res.StartCash,
		EndCash:   res.EndCash,
		Summary:   NewSummary(met),
		Trades:    make([]TradeRecord, 0, len(res.Trades)),
		PnL:       make(map[string]float64, len(res.PnL)),
	}
	for _, tr := range res.Trades {
		rec := TradeRecord{
			EntryTime:  tr.EntryTime,
			EntryPrice: tr.EntryPrice,
			Size:       tr.Size,
			ATRStop:    tr.ATRStop,
		}
		if tr.Closed() {
			exitTime := tr.ExitTime
			exitPrice := tr.ExitPrice
			rec.ExitTime = &exitTime
			rec.ExitPrice = &exitPrice
		}
		r.Trades = append(r.Trades, rec)
	}
	for _, pt := range res.PnL {
		r.PnL[pt.Timestamp.UTC().Format(time.RFC3339)] = pt.Value
	}
	return r
}

// WriteJSON writes the report to path, creating parent directories.
func (r *Report) WriteJSON(path string) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a previously written report.
func ReadJSON(path string) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
