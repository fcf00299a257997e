package scan

import (
	"context"
	"testing"
	"time"
)

func newVisUnderLoop(t *testing.T, f *fakePage, delay time.Duration) (*Visibility, *Loop) {
	l := startLoop(t)
	return NewVisibility(f, l, delay, nil), l
}

func hiddenOnLoop(t *testing.T, l *Loop, f *fakePage, h Handle) bool {
	var v bool
	onLoop(t, l, func() { v = f.hidden[h] })
	return v
}

func TestVisibility_TwoPhaseHide(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 20*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() { v.Apply(ctx, "h1", false) })

	// Phase one is immediate and reversible.
	var flagged, hidden bool
	onLoop(t, l, func() { flagged, hidden = f.flagged["h1"], f.hidden["h1"] })
	if !flagged {
		t.Fatal("non-match must be flagged immediately")
	}
	if hidden {
		t.Fatal("hide must not be immediate")
	}

	// Phase two lands after the delay.
	waitFor(t, func() bool { return hiddenOnLoop(t, l, f, "h1") })
}

func TestVisibility_MatchClearsBothAndCancelsHide(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 20*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() {
		v.Apply(ctx, "h1", false)
		// Reclassified as a match before the hide fires.
		v.Apply(ctx, "h1", true)
	})

	var flagged bool
	onLoop(t, l, func() { flagged = f.flagged["h1"] })
	if flagged {
		t.Fatal("match must clear the flag")
	}

	time.Sleep(60 * time.Millisecond)
	if hiddenOnLoop(t, l, f, "h1") {
		t.Fatal("pending hide must be cancelled by a match")
	}
	onLoop(t, l, func() {
		if v.FlaggedCount() != 0 {
			t.Errorf("flagged count: got %d, want 0", v.FlaggedCount())
		}
	})
}

func TestVisibility_RevealStripsHidden(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 10*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() {
		v.Apply(ctx, "h1", false)
		v.Apply(ctx, "h2", false)
	})
	waitFor(t, func() bool {
		return hiddenOnLoop(t, l, f, "h1") && hiddenOnLoop(t, l, f, "h2")
	})

	onLoop(t, l, func() { v.SetReveal(ctx, true) })

	var h1, h2, f1, f2 bool
	onLoop(t, l, func() {
		h1, h2 = f.hidden["h1"], f.hidden["h2"]
		f1, f2 = f.flagged["h1"], f.flagged["h2"]
	})
	if h1 || h2 {
		t.Fatal("reveal must strip the hidden marker from every flagged element")
	}
	if !f1 || !f2 {
		t.Fatal("reveal must not touch the flagged marker")
	}
}

func TestVisibility_RevealOffRehidesAfterDelay(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 10*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() {
		v.SetReveal(ctx, true)
		v.Apply(ctx, "h1", false)
	})

	time.Sleep(40 * time.Millisecond)
	if hiddenOnLoop(t, l, f, "h1") {
		t.Fatal("nothing may hide while the override is on")
	}

	onLoop(t, l, func() { v.SetReveal(ctx, false) })
	waitFor(t, func() bool { return hiddenOnLoop(t, l, f, "h1") })
}

func TestVisibility_SetRevealIdempotent(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 10*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() {
		v.SetReveal(ctx, true)
		v.SetReveal(ctx, true) // no-op, no re-application
		if !v.Reveal() {
			t.Error("reveal should be on")
		}
	})
}

func TestVisibility_ForgetCancelsPendingHide(t *testing.T) {
	f := newFakePage()
	v, l := newVisUnderLoop(t, f, 20*time.Millisecond)
	ctx := context.Background()

	onLoop(t, l, func() {
		v.Apply(ctx, "h1", false)
		v.Forget("h1")
	})

	time.Sleep(60 * time.Millisecond)
	if hiddenOnLoop(t, l, f, "h1") {
		t.Fatal("forgotten handle must not be hidden")
	}
	onLoop(t, l, func() {
		if v.FlaggedCount() != 0 {
			t.Errorf("flagged count: got %d, want 0", v.FlaggedCount())
		}
	})
}
