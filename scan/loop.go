// Package scan is the engine half of tilesift: the single-threaded run loop,
// the debounced scan scheduler, the per-element processing state, the scanner
// itself, and the visibility controller.
//
// All engine state is confined to one goroutine. External event sources
// (browser bindings, HTTP handlers, the store watcher) hand work to the loop
// with Post; everything else, including timer callbacks, already executes on
// the loop.
package scan

import (
	"context"
	"log/slog"
	"time"
)

// Loop serialises engine work onto a single goroutine and provides named
// one-shot timers with at-most-one-pending-per-name semantics.
type Loop struct {
	tasks  chan func()
	timers map[string]*namedTimer
	gen    uint64
	logger *slog.Logger
}

type namedTimer struct {
	timer *time.Timer
	gen   uint64
}

// NewLoop creates a run loop. It does nothing until Run is called.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), 1024),
		timers: make(map[string]*namedTimer),
		logger: logger,
	}
}

// Run executes posted tasks until ctx is cancelled. It must be called
// exactly once; everything scheduled on the loop runs on this goroutine.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, nt := range l.timers {
				nt.timer.Stop()
			}
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post hands fn to the loop from any goroutine. Tasks run in post order.
func (l *Loop) Post(fn func()) {
	l.tasks <- fn
}

// Schedule arms the named timer to run fn on the loop after d. A pending
// timer with the same name is superseded: its task never runs. Must be
// called from the loop goroutine.
func (l *Loop) Schedule(name string, d time.Duration, fn func()) {
	if prev, ok := l.timers[name]; ok {
		prev.timer.Stop()
	}
	l.gen++
	gen := l.gen
	nt := &namedTimer{gen: gen}
	nt.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			cur, ok := l.timers[name]
			if !ok || cur.gen != gen {
				return // superseded or cancelled after firing
			}
			delete(l.timers, name)
			fn()
		})
	})
	l.timers[name] = nt
}

// Cancel stops the named timer if pending. Must be called from the loop
// goroutine.
func (l *Loop) Cancel(name string) {
	if nt, ok := l.timers[name]; ok {
		nt.timer.Stop()
		delete(l.timers, name)
	}
}
