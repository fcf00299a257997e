package agent

import (
	"context"
	"fmt"

	"github.com/hazyhaar/tilesift/config"
	"github.com/hazyhaar/tilesift/scan"
	"github.com/hazyhaar/tilesift/store"
)

// The control.Engine implementation. HTTP handlers run on their own
// goroutines; commands bridge onto the run loop, queries round-trip through
// it so they observe consistent state.

// sync runs fn on the loop and waits for it.
func (a *Agent) sync(fn func()) {
	done := make(chan struct{})
	a.loop.Post(func() {
		fn()
		close(done)
	})
	<-done
}

// SetReveal applies the reveal override. In-memory only: the override is a
// session command; persistence belongs to the settings blob.
func (a *Agent) SetReveal(on bool) {
	a.loop.Post(func() {
		a.settings.Reveal = on
		a.vis.SetReveal(a.runCtx, on)
	})
}

// Rescan forces a full recompute: element state reset plus a normal scan.
func (a *Agent) Rescan() {
	a.loop.Post(a.sched.Rescan)
}

// Stats returns scanner diagnostics.
func (a *Agent) Stats() scan.Stats {
	var st scan.Stats
	a.sync(func() { st = a.scanner.Stats() })
	return st
}

// Settings returns the live settings.
func (a *Agent) Settings() config.Settings {
	var s config.Settings
	a.sync(func() { s = a.settings })
	return s
}

// SaveSettings persists a replacement settings blob. The store watcher picks
// up the write and reloads on the loop, exactly as an external edit would.
func (a *Agent) SaveSettings(s config.Settings) error {
	if a.st == nil {
		// No store to round-trip through; apply directly.
		a.loop.Post(func() { a.applySettings(config.DecodeSettings(mustEncode(s)), true) })
		return nil
	}
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("agent: encode settings: %w", err)
	}
	return a.st.Save(context.Background(), store.KeySettings, data)
}

func mustEncode(s config.Settings) []byte {
	data, err := s.Encode()
	if err != nil {
		return nil // DecodeSettings(nil) falls back to defaults
	}
	return data
}
