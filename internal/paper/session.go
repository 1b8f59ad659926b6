// Package paper exposes the incremental replay engine behind a concurrency
// safe session handle so callers (CLI loops, HTTP handlers) share one
// configured run.
package paper

import (
	"errors"
	"sync"

	"github.com/fxlab/fxbot/internal/backtest"
	"github.com/fxlab/fxbot/internal/strategy"
)

// ErrNotConfigured is returned by session operations before Configure has
// been called.
var ErrNotConfigured = errors.New("paper session not configured")

// Session owns at most one paper engine at a time. Configure replaces any
// previous run; all methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	engine *backtest.PaperEngine
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Configure starts a fresh incremental run over the given bars, discarding
// any prior engine state.
func (s *Session) Configure(bars []strategy.SignalBar, cfg backtest.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = backtest.NewPaperEngine(bars, cfg)
}

// Configured reports whether a run is active.
func (s *Session) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

// Advance processes up to n bars and returns the status after the last
// processed bar. n below 1 is treated as 1. Advancing a finished run is a
// no-op and not an error.
func (s *Session) Advance(n int) (backtest.PaperStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return backtest.PaperStatus{}, ErrNotConfigured
	}
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if !s.engine.Step() {
			break
		}
	}
	return s.engine.Status(), nil
}

// Status returns the current run status without advancing.
func (s *Session) Status() (backtest.PaperStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return backtest.PaperStatus{}, ErrNotConfigured
	}
	return s.engine.Status(), nil
}

// Result snapshots the run outcome so far.
func (s *Session) Result() (*backtest.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNotConfigured
	}
	return s.engine.Result(), nil
}

// Reset drops the active run. Subsequent operations fail with
// ErrNotConfigured until Configure is called again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = nil
}
