// Package events loads macro event calendars and answers whether a timestamp
// falls inside a news blackout window around any event.
package events

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// LoadEventsCSV reads event timestamps from a CSV file. The header row must
// contain a "timestamp" column (matched case-insensitively); other columns
// are ignored. Returned times are UTC and sorted ascending.
func LoadEventsCSV(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}

// ReadEvents parses event timestamps from CSV data.
func ReadEvents(r io.Reader) ([]time.Time, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read events header: %w", err)
	}

	tsCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "timestamp") {
			tsCol = i
			break
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("events header %v has no timestamp column", header)
	}

	var events []time.Time
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read events line %d: %w", line, err)
		}
		if tsCol >= len(record) {
			return nil, fmt.Errorf("events line %d: missing timestamp field", line)
		}
		ts, err := parseTimestamp(record[tsCol])
		if err != nil {
			return nil, fmt.Errorf("events line %d: %w", line, err)
		}
		events = append(events, ts)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Before(events[j]) })
	return events, nil
}

// Blackout blocks trading around a set of event times: a timestamp is inside
// the blackout when some event lies at most Before ahead of it or at most
// After behind it.
type Blackout struct {
	events []time.Time
	before time.Duration
	after  time.Duration
}

// NewBlackout builds a blackout checker over the given events. The events
// slice is copied and sorted; negative durations are treated as zero.
func NewBlackout(events []time.Time, before, after time.Duration) *Blackout {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	sorted := make([]time.Time, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return &Blackout{events: sorted, before: before, after: after}
}

// Allowed reports whether ts is outside every blackout window. Window edges
// are inclusive on both sides.
func (b *Blackout) Allowed(ts time.Time) bool {
	if len(b.events) == 0 {
		return true
	}
	// An event ev blocks ts when ev-before <= ts <= ev+after, i.e. when
	// ev falls within [ts-after, ts+before].
	lo := ts.Add(-b.after)
	hi := ts.Add(b.before)
	i := sort.Search(len(b.events), func(i int) bool {
		return !b.events[i].Before(lo)
	})
	return i >= len(b.events) || b.events[i].After(hi)
}

// Len returns the number of events loaded.
func (b *Blackout) Len() int {
	return len(b.events)
}
