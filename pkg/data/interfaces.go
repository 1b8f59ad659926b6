package data

import (
	"time"

	"github.com/fxlab/fxbot/pkg/types"
)

// DataProvider loads historical bars from a source (a file path for the CSV
// provider).
type DataProvider interface {
	// LoadData loads bars from the specified source in timestamp order.
	LoadData(source string) ([]types.OHLCV, error)

	// ValidateData checks the integrity of a loaded series.
	ValidateData(data []types.OHLCV) error

	// GetName returns the name of the data provider.
	GetName() string
}

// DataCache stores loaded bar series keyed by source.
type DataCache interface {
	// Get retrieves data from cache if available.
	Get(key string) ([]types.OHLCV, bool)

	// Set stores data in cache.
	Set(key string, data []types.OHLCV)

	// Clear removes all cached data.
	Clear()

	// Size returns the number of cached entries.
	Size() int
}

// DataFilter narrows or reorders a bar series.
type DataFilter interface {
	// FilterByDateRange keeps bars with start <= timestamp <= end.
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in strictly increasing time order.
	ValidateTimeSequence(data []types.OHLCV) error
}
