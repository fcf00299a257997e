package scan

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

// onLoop runs fn on the loop goroutine and waits for it.
func onLoop(t *testing.T, l *Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop task did not run")
	}
}

func TestLoop_PostOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	onLoop(t, l, func() {})

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("tasks ran out of order: %v", got)
	}
}

func TestLoop_ScheduleFires(t *testing.T) {
	l := startLoop(t)

	var fired atomic.Bool
	onLoop(t, l, func() {
		l.Schedule("t", 10*time.Millisecond, func() { fired.Store(true) })
	})

	waitFor(t, func() bool { return fired.Load() })
}

func TestLoop_ScheduleSupersedes(t *testing.T) {
	l := startLoop(t)

	var first, second atomic.Bool
	onLoop(t, l, func() {
		l.Schedule("t", 10*time.Millisecond, func() { first.Store(true) })
		l.Schedule("t", 10*time.Millisecond, func() { second.Store(true) })
	})

	waitFor(t, func() bool { return second.Load() })
	if first.Load() {
		t.Fatal("superseded timer task must never run")
	}
}

func TestLoop_Cancel(t *testing.T) {
	l := startLoop(t)

	var fired atomic.Bool
	onLoop(t, l, func() {
		l.Schedule("t", 10*time.Millisecond, func() { fired.Store(true) })
		l.Cancel("t")
	})

	time.Sleep(50 * time.Millisecond)
	onLoop(t, l, func() {})
	if fired.Load() {
		t.Fatal("cancelled timer task must never run")
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
