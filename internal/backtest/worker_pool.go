package backtest

import (
	"runtime"
	"sync"
	"time"

	"github.com/fxlab/fxbot/internal/monitoring"
	"github.com/fxlab/fxbot/pkg/types"
)

// comboJob is one grid combination queued for evaluation. The index ties the
// result back to enumeration order so parallelism cannot reorder output.
type comboJob struct {
	index  int
	params Params
}

// evaluateCombos fans the combinations out over a bounded worker pool and
// collects the results back into enumeration order. Each run is independent
// and shares no mutable state, so the fan-out needs no locking beyond the
// channels themselves.
func evaluateCombos(bars []types.OHLCV, cfg GridConfig, combos []Params) []GridResult {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	jobs := make(chan comboJob, len(combos))
	results := make([]GridResult, len(combos))

	var done int
	var progressMu sync.Mutex
	reportProgress := func() {
		if cfg.OnProgress == nil {
			return
		}
		// The mutex also serializes the callback itself, so callers can
		// mutate shared state (a progress bar, a counter) without locking.
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		cfg.OnProgress(done, len(combos))
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				start := time.Now()
				results[job.index] = evaluate(bars, cfg, job.params)
				monitoring.RecordComboEvaluated(time.Since(start))
				reportProgress()
			}
		}()
	}

	for i, p := range combos {
		jobs <- comboJob{index: i, params: p}
	}
	close(jobs)
	wg.Wait()

	return results
}
