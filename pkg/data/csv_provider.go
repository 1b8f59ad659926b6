package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fxlab/fxbot/pkg/types"
)

// Accepted timestamp layouts, tried in order. Layouts without an explicit
// zone are interpreted as UTC.
var csvTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVProvider implements DataProvider for header-addressed CSV files. The
// header must name a timestamp (or date) column plus open, high, low and
// close; a volume column is optional and defaults to zero.
type CSVProvider struct{}

// NewCSVProvider creates a new CSV data provider.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{}
}

// GetName returns the name of the data provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical bars from a CSV file. Any malformed row aborts
// the load; a backtest on silently patched data is worse than no backtest.
// The returned series is sorted by timestamp.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()
	return p.read(file)
}

type csvColumns struct {
	timestamp int
	open      int
	high      int
	low       int
	close     int
	volume    int // -1 when absent
}

func mapColumns(header []string) (csvColumns, error) {
	cols := csvColumns{timestamp: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "date":
			if cols.timestamp < 0 {
				cols.timestamp = i
			}
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}
	if cols.timestamp < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 {
		return cols, fmt.Errorf("header %v must name timestamp, open, high, low and close columns", header)
	}
	return cols, nil
}

func parseBarTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range csvTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func (p *CSVProvider) read(r io.Reader) ([]types.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("data file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var data []types.OHLCV
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		data = append(data, bar)
	}

	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Timestamp.Before(data[j].Timestamp)
	})
	return data, nil
}

func parseBar(record []string, cols csvColumns) (types.OHLCV, error) {
	field := func(col int, name string) (float64, error) {
		if col >= len(record) {
			return 0, fmt.Errorf("missing %s field", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", name, record[col])
		}
		return v, nil
	}

	if cols.timestamp >= len(record) {
		return types.OHLCV{}, fmt.Errorf("missing timestamp field")
	}
	ts, err := parseBarTimestamp(record[cols.timestamp])
	if err != nil {
		return types.OHLCV{}, err
	}

	var bar types.OHLCV
	bar.Timestamp = ts
	if bar.Open, err = field(cols.open, "open"); err != nil {
		return bar, err
	}
	if bar.High, err = field(cols.high, "high"); err != nil {
		return bar, err
	}
	if bar.Low, err = field(cols.low, "low"); err != nil {
		return bar, err
	}
	if bar.Close, err = field(cols.close, "close"); err != nil {
		return bar, err
	}
	if cols.volume >= 0 && cols.volume < len(record) && strings.TrimSpace(record[cols.volume]) != "" {
		if bar.Volume, err = field(cols.volume, "volume"); err != nil {
			return bar, err
		}
	}
	return bar, nil
}

// ValidateData validates the integrity of a loaded series: finite positive
// prices, non-negative volume and strictly increasing timestamps.
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, candle := range data {
		for name, v := range map[string]float64{
			"open": candle.Open, "high": candle.High, "low": candle.Low, "close": candle.Close,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("invalid %s price %v at index %d", name, v, i)
			}
		}
		if candle.High < candle.Low {
			return fmt.Errorf("high %.6f below low %.6f at index %d", candle.High, candle.Low, i)
		}
		if candle.Volume < 0 || math.IsNaN(candle.Volume) {
			return fmt.Errorf("invalid volume %v at index %d", candle.Volume, i)
		}
		if i > 0 && !candle.Timestamp.After(data[i-1].Timestamp) {
			return fmt.Errorf("timestamps not strictly increasing at index %d (%s)", i,
				candle.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
