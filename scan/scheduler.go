package scan

import (
	"log/slog"
	"time"
)

// DefaultDebounce is the quiet window that collapses a burst of change
// signals into one scan pass.
const DefaultDebounce = 250 * time.Millisecond

const timerScan = "scan"

// Scheduler folds arbitrary bursts of change signals into single scan
// passes. A scan already pending is never duplicated, and each executed pass
// gets a fresh monotonic epoch. All methods run on the loop goroutine.
type Scheduler struct {
	loop     *Loop
	debounce time.Duration
	pending  bool
	epoch    uint64

	// reset clears per-element state ahead of a forced rescan.
	reset func()
	// run executes one scan pass.
	run func(epoch uint64)

	logger *slog.Logger
}

// NewScheduler creates a scheduler driving run through loop. reset is called
// before a forced rescan; it may be nil.
func NewScheduler(loop *Loop, debounce time.Duration, reset func(), run func(epoch uint64), logger *slog.Logger) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		loop:     loop,
		debounce: debounce,
		reset:    reset,
		run:      run,
		logger:   logger,
	}
}

// Kick requests a scan. The first signal arms the debounce timer; signals
// arriving while a scan is already pending are absorbed, never queued.
func (s *Scheduler) Kick() {
	if s.pending {
		return
	}
	s.pending = true
	s.loop.Schedule(timerScan, s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	s.pending = false
	s.epoch++
	s.run(s.epoch)
}

// Rescan clears every element's processed state, then runs a normal
// (debounced) scan. Guarantees a full recompute even for nodes the cache
// would otherwise short-circuit at the visibility layer.
func (s *Scheduler) Rescan() {
	s.logger.Info("scan: forced rescan")
	if s.reset != nil {
		s.reset()
	}
	s.Kick()
}

// Epoch returns the epoch of the most recently started pass.
func (s *Scheduler) Epoch() uint64 { return s.epoch }

// SetDebounce replaces the quiet window; takes effect on the next Kick.
func (s *Scheduler) SetDebounce(d time.Duration) {
	if d > 0 {
		s.debounce = d
	}
}
