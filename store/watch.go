package store

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// WatchOptions tunes the change watcher.
type WatchOptions struct {
	// Interval is the polling frequency. Default: 500ms.
	Interval time.Duration
	// Debounce is the quiet period after a change before onChange fires;
	// further changes inside the window reset the timer and merge into the
	// same notification. 0 fires immediately.
	Debounce time.Duration
	// Logger overrides slog.Default().
	Logger *slog.Logger
}

func (o *WatchOptions) defaults() {
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Watch polls the kv table's revisions and calls onChange with the sorted
// set of changed keys. The first poll establishes the baseline without
// firing, so the caller's own startup load is not echoed back. Watch blocks
// until ctx is cancelled; run it on its own goroutine.
//
// Poll errors are logged and retried on the next tick; the watcher never
// gives up.
func (s *Store) Watch(ctx context.Context, opts WatchOptions, onChange func(keys []string)) {
	opts.defaults()
	log := opts.Logger

	known, err := s.revs(ctx)
	if err != nil {
		log.Warn("store: watch baseline failed", "error", err)
		known = map[string]int64{}
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	fire := func() {
		keys := make([]string, 0, len(pending))
		for k := range pending {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		clear(pending)
		timer = nil
		timerC = nil
		log.Debug("store: change detected", "keys", keys)
		onChange(keys)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-ticker.C:
			cur, err := s.revs(ctx)
			if err != nil {
				log.Warn("store: watch poll failed", "error", err)
				continue
			}
			changed := false
			for key, rev := range cur {
				if known[key] != rev {
					known[key] = rev
					pending[key] = true
					changed = true
				}
			}
			if !changed {
				continue
			}
			if opts.Debounce <= 0 {
				fire()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(opts.Debounce)
			timerC = timer.C

		case <-timerC:
			fire()
		}
	}
}
