package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

type changeRecorder struct {
	mu    sync.Mutex
	fires [][]string
}

func (r *changeRecorder) onChange(keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fires = append(r.fires, keys)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fires)
}

func (r *changeRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fires) == 0 {
		return nil
	}
	return r.fires[len(r.fires)-1]
}

func waitForFires(t *testing.T, rec *changeRecorder, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if rec.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("watcher fired %d times, want at least %d", rec.count(), n)
}

func TestWatch_FiresOnWrite(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	go s.Watch(ctx, WatchOptions{Interval: 10 * time.Millisecond}, rec.onChange)

	// Let the baseline poll land first.
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("baseline must not fire, got %d fires", rec.count())
	}

	if err := s.Save(ctx, KeySettings, []byte("{}")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	waitForFires(t, rec, 1)

	keys := rec.last()
	if len(keys) != 1 || keys[0] != KeySettings {
		t.Fatalf("changed keys: got %v, want [%s]", keys, KeySettings)
	}
}

func TestWatch_DebounceMergesBurst(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	go s.Watch(ctx, WatchOptions{
		Interval: 10 * time.Millisecond,
		Debounce: 100 * time.Millisecond,
	}, rec.onChange)

	time.Sleep(50 * time.Millisecond)

	// Two writes inside the debounce window merge into one notification
	// carrying both keys.
	s.Save(ctx, KeySettings, []byte("{}"))
	time.Sleep(20 * time.Millisecond)
	s.Touch(ctx, KeyRescan)

	waitForFires(t, rec, 1)
	time.Sleep(150 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("fires: got %d, want 1", rec.count())
	}

	keys := rec.last()
	if len(keys) != 2 || keys[0] != KeyRescan || keys[1] != KeySettings {
		t.Fatalf("changed keys: got %v, want [%s %s]", keys, KeyRescan, KeySettings)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())

	rec := &changeRecorder{}
	done := make(chan struct{})
	go func() {
		s.Watch(ctx, WatchOptions{Interval: 10 * time.Millisecond}, rec.onChange)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
