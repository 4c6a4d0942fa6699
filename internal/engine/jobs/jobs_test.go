package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type versions struct {
	mu sync.Mutex
	v  map[string]uint64
}

func newVersions() *versions {
	return &versions{v: make(map[string]uint64)}
}

func (vs *versions) set(id string, v uint64) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.v[id] = v
}

func (vs *versions) get(id string) (Key, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.v[id]
	return key(id, v), ok
}

func key(id string, v uint64) Key {
	return Key{BufferID: id, Version: v}
}

func TestRunCurrentVersion(t *testing.T) {
	vs := newVersions()
	vs.set("a", 3)
	s := NewScheduler(vs.get)

	got, err := Run(context.Background(), s, key("a", 3), func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("Run = %d, %v; want 42, nil", got, err)
	}
}

func TestRunStaleBeforeStart(t *testing.T) {
	vs := newVersions()
	vs.set("a", 4)
	s := NewScheduler(vs.get)

	called := false
	_, err := Run(context.Background(), s, key("a", 3), func(context.Context) (int, error) {
		called = true
		return 0, nil
	})
	if !errors.Is(err, ErrStale) {
		t.Errorf("error = %v, want ErrStale", err)
	}
	if called {
		t.Error("stale job should not run")
	}
}

func TestRunStaleAfterFinish(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get)

	_, err := Run(context.Background(), s, key("a", 1), func(context.Context) (string, error) {
		vs.set("a", 2)
		return "old", nil
	})
	if !errors.Is(err, ErrStale) {
		t.Errorf("error = %v, want ErrStale", err)
	}
}

func TestRunMissingBuffer(t *testing.T) {
	s := NewScheduler(newVersions().get)
	_, err := Run(context.Background(), s, key("gone", 1), func(context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, ErrStale) {
		t.Errorf("error = %v, want ErrStale", err)
	}
}

func TestNewerVersionCancelsOlder(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get, WithWorkers(2))

	started := make(chan struct{})
	old := Submit(context.Background(), s, key("a", 1), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started

	vs.set("a", 2)
	fresh := Submit(context.Background(), s, key("a", 2), func(context.Context) (int, error) {
		return 2, nil
	})

	if _, err := old.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("old job error = %v, want context.Canceled", err)
	}
	if v, err := fresh.Wait(context.Background()); err != nil || v != 2 {
		t.Errorf("fresh job = %d, %v", v, err)
	}

	// An older submission after a newer one is rejected outright.
	vs.set("a", 3)
	blocker := Submit(context.Background(), s, key("a", 3), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	late := Submit(context.Background(), s, key("a", 2), func(context.Context) (int, error) { return 0, nil })
	if _, err := late.Wait(context.Background()); !errors.Is(err, ErrStale) {
		t.Errorf("late job error = %v, want ErrStale", err)
	}
	blocker.Cancel()
	<-blocker.Done()
}

func TestRecreatedBufferIsStale(t *testing.T) {
	var mu sync.Mutex
	cur := Key{BufferID: "a", Generation: 1, Version: 1}
	s := NewScheduler(func(string) (Key, bool) {
		mu.Lock()
		defer mu.Unlock()
		return cur, true
	})

	release := make(chan struct{})
	job := Submit(context.Background(), s, cur, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	// Same id and version, new buffer.
	mu.Lock()
	cur = Key{BufferID: "a", Generation: 2, Version: 1}
	mu.Unlock()
	close(release)

	if _, err := job.Wait(context.Background()); !errors.Is(err, ErrStale) {
		t.Errorf("error = %v, want ErrStale", err)
	}
}

func TestCancelBuffer(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get)

	started := make(chan struct{})
	job := Submit(context.Background(), s, key("a", 1), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started
	s.Cancel("a")
	if _, err := job.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	s.Cancel("missing")
}

func TestPanicIsRecovered(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get)
	_, err := Run(context.Background(), s, key("a", 1), func(context.Context) (int, error) {
		panic("boom")
	})
	if !errors.Is(err, ErrPanicked) {
		t.Errorf("error = %v, want ErrPanicked", err)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get)
	release := make(chan struct{})
	job := Submit(context.Background(), s, key("a", 1), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := job.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	close(release)
	<-job.Done()
}

func TestWarmAllBoundsConcurrency(t *testing.T) {
	vs := newVersions()
	var keys []Key
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		vs.set(id, 1)
		keys = append(keys, key(id, 1))
	}
	keys = append(keys, key("a", 0)) // stale, skipped

	s := NewScheduler(vs.get, WithWorkers(2))
	var running, peak, calls atomic.Int32
	err := WarmAll(context.Background(), s, keys, func(context.Context, Key) error {
		calls.Add(1)
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("WarmAll error: %v", err)
	}
	if calls.Load() != 6 {
		t.Errorf("calls = %d, want 6", calls.Load())
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestWarmAllReturnsError(t *testing.T) {
	vs := newVersions()
	vs.set("a", 1)
	s := NewScheduler(vs.get)
	boom := errors.New("boom")
	err := WarmAll(context.Background(), s, []Key{key("a", 1)}, func(context.Context, Key) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}
