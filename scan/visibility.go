package scan

import (
	"context"
	"log/slog"
	"time"
)

// DefaultHideDelay is the pause between flagging a tile and removing its
// layout space, long enough for the fade transition to play out.
const DefaultHideDelay = 300 * time.Millisecond

// Visibility applies suppression decisions to elements in two phases: a
// reversible "flagged" marker immediately, then a layout-removing "hidden"
// marker after a short delay, unless the reveal override is on. All methods
// run on the loop goroutine.
type Visibility struct {
	page   Page
	loop   *Loop
	delay  time.Duration
	reveal bool

	// flagged tracks every currently suppressed handle so that toggling the
	// reveal override can re-apply visibility across all of them.
	flagged map[Handle]bool

	logger *slog.Logger
}

// NewVisibility creates a visibility controller; delay <= 0 means
// DefaultHideDelay.
func NewVisibility(page Page, loop *Loop, delay time.Duration, logger *slog.Logger) *Visibility {
	if delay <= 0 {
		delay = DefaultHideDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Visibility{
		page:    page,
		loop:    loop,
		delay:   delay,
		flagged: make(map[Handle]bool),
		logger:  logger,
	}
}

// Apply enacts a decision on one element. A match strips both markers
// immediately; a non-match flags now and hides after the delay.
func (v *Visibility) Apply(ctx context.Context, h Handle, match bool) error {
	if match {
		v.loop.Cancel(hideTimer(h))
		delete(v.flagged, h)
		if err := v.page.SetFlagged(ctx, h, false); err != nil {
			return err
		}
		return v.page.SetHidden(ctx, h, false)
	}

	v.flagged[h] = true
	if err := v.page.SetFlagged(ctx, h, true); err != nil {
		return err
	}
	if !v.reveal {
		v.scheduleHide(ctx, h)
	}
	return nil
}

func (v *Visibility) scheduleHide(ctx context.Context, h Handle) {
	v.loop.Schedule(hideTimer(h), v.delay, func() {
		// Still flagged and not revealed by the time the timer fires.
		if !v.flagged[h] || v.reveal {
			return
		}
		if err := v.page.SetHidden(ctx, h, true); err != nil {
			v.logger.Debug("scan: delayed hide failed", "handle", h, "error", err)
		}
	})
}

// SetReveal toggles the reveal override. Enabling strips the hidden marker
// from every flagged element without touching their cached decisions;
// disabling re-arms the delayed hide on every still-flagged element.
func (v *Visibility) SetReveal(ctx context.Context, on bool) {
	if on == v.reveal {
		return
	}
	v.reveal = on
	v.logger.Info("scan: reveal override", "on", on)

	for h := range v.flagged {
		if on {
			v.loop.Cancel(hideTimer(h))
			if err := v.page.SetHidden(ctx, h, false); err != nil {
				v.logger.Debug("scan: reveal failed", "handle", h, "error", err)
			}
		} else {
			v.scheduleHide(ctx, h)
		}
	}
}

// Reveal reports the current override state.
func (v *Visibility) Reveal() bool { return v.reveal }

// Forget drops a detached element from the flagged set and cancels any
// pending hide for it.
func (v *Visibility) Forget(h Handle) {
	v.loop.Cancel(hideTimer(h))
	delete(v.flagged, h)
}

// FlaggedCount returns the number of currently suppressed elements.
func (v *Visibility) FlaggedCount() int { return len(v.flagged) }

func hideTimer(h Handle) string { return "hide:" + string(h) }
