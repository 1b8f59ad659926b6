package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/fxbot/pkg/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `timestamp,open,high,low,close,volume
2024-03-01 01:00:00,101,102,100,101.5,1200
2024-03-01 00:00:00,100,101,99,100.5,1000
2024-03-01 02:00:00,101.5,103,101,102.5,900
`

func TestCSVProvider_LoadData(t *testing.T) {
	p := NewCSVProvider()
	data, err := p.LoadData(writeCSV(t, sampleCSV))
	require.NoError(t, err)
	require.Len(t, data, 3)

	// Rows come back sorted even though the file is out of order.
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), data[0].Timestamp)
	assert.Equal(t, 100.5, data[0].Close)
	assert.Equal(t, 1000.0, data[0].Volume)
	assert.Equal(t, time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), data[2].Timestamp)

	assert.NoError(t, p.ValidateData(data))
}

func TestCSVProvider_HeaderVariants(t *testing.T) {
	csvData := `Date,Open,High,Low,Close
2024-03-01T00:00:00Z,100,101,99,100.5
2024-03-02,101,102,100,101.5
`
	p := NewCSVProvider()
	data, err := p.LoadData(writeCSV(t, csvData))
	require.NoError(t, err)
	require.Len(t, data, 2)

	assert.Equal(t, 0.0, data[0].Volume, "missing volume column defaults to zero")
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), data[1].Timestamp)
}

func TestCSVProvider_FailsFast(t *testing.T) {
	p := NewCSVProvider()

	cases := map[string]string{
		"bad timestamp": "timestamp,open,high,low,close\nnot-a-date,1,2,0.5,1\n",
		"bad price":     "timestamp,open,high,low,close\n2024-03-01,x,2,0.5,1\n",
		"short row":     "timestamp,open,high,low,close\n2024-03-01,1,2\n",
		"no header":     "",
		"missing close": "timestamp,open,high,low\n2024-03-01,1,2,0.5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.LoadData(writeCSV(t, content))
			assert.Error(t, err)
		})
	}
}

func TestCSVProvider_ValidateData(t *testing.T) {
	p := NewCSVProvider()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	good := func() []types.OHLCV {
		return []types.OHLCV{
			{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10, Timestamp: base},
			{Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 12, Timestamp: base.Add(time.Hour)},
		}
	}

	assert.NoError(t, p.ValidateData(good()))
	assert.Error(t, p.ValidateData(nil))

	bad := good()
	bad[1].Close = -1
	assert.Error(t, p.ValidateData(bad))

	bad = good()
	bad[1].High, bad[1].Low = bad[1].Low, bad[1].High
	assert.Error(t, p.ValidateData(bad))

	bad = good()
	bad[1].Timestamp = bad[0].Timestamp
	assert.Error(t, p.ValidateData(bad), "duplicate timestamps must be rejected")

	bad = good()
	bad[1].Volume = -5
	assert.Error(t, p.ValidateData(bad))
}

func TestCachedProvider(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	p := NewCachedProvider(NewCSVProvider())

	first, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CacheSize())

	// Delete the file: a second load must come from cache.
	require.NoError(t, os.Remove(path))
	second, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Mutating the returned slice must not poison the cache.
	second[0].Close = -999
	third, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, first[0].Close, third[0].Close)

	p.ClearCache()
	assert.Equal(t, 0, p.CacheSize())
	_, err = p.LoadData(path)
	assert.Error(t, err, "cleared cache forces a reload of the missing file")
}

func TestFilterByDateRange(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	data := make([]types.OHLCV, 10)
	for i := range data {
		data[i] = types.OHLCV{Close: 100, Timestamp: base.Add(time.Duration(i) * time.Hour)}
	}
	f := NewDefaultDataFilter()

	got := f.FilterByDateRange(data, base.Add(2*time.Hour), base.Add(5*time.Hour))
	require.Len(t, got, 4, "range bounds are inclusive")
	assert.Equal(t, base.Add(2*time.Hour), got[0].Timestamp)

	assert.Len(t, f.FilterByDateRange(data, time.Time{}, base.Add(3*time.Hour)), 4)
	assert.Len(t, f.FilterByDateRange(data, base.Add(8*time.Hour), time.Time{}), 2)
	assert.Len(t, f.FilterByDateRange(data, time.Time{}, time.Time{}), 10)
}

func TestValidateTimeSequence(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := NewDefaultDataFilter()

	ok := []types.OHLCV{{Timestamp: base}, {Timestamp: base.Add(time.Hour)}}
	assert.NoError(t, f.ValidateTimeSequence(ok))
	assert.NoError(t, f.ValidateTimeSequence(nil))

	dup := []types.OHLCV{{Timestamp: base}, {Timestamp: base}}
	assert.Error(t, f.ValidateTimeSequence(dup))

	rev := []types.OHLCV{{Timestamp: base.Add(time.Hour)}, {Timestamp: base}}
	assert.Error(t, f.ValidateTimeSequence(rev))
}
