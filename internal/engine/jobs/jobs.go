package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Errors returned by jobs.
var (
	// ErrStale indicates the buffer changed before the job finished.
	ErrStale = errors.New("result is stale")

	// ErrPanicked indicates the job function panicked.
	ErrPanicked = errors.New("job panicked")
)

// Key identifies the buffer version a job computes for. Generation tells
// apart buffers created under the same id.
type Key struct {
	BufferID   string
	Generation uint64
	Version    uint64
}

// String returns "id@version".
func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.BufferID, k.Version)
}

// before reports whether k is an older state of the buffer than o.
func (k Key) before(o Key) bool {
	if k.Generation != o.Generation {
		return k.Generation < o.Generation
	}
	return k.Version < o.Version
}

// VersionFunc reports the current key of a buffer. ok is false when the
// buffer no longer exists.
type VersionFunc func(bufferID string) (current Key, ok bool)

// Scheduler bounds and tracks background jobs.
// It is safe for concurrent use.
type Scheduler struct {
	current VersionFunc
	sem     *semaphore.Weighted
	workers int
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]inflight
	seq      uint64
}

type inflight struct {
	seq    uint64
	key    Key
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers sets the maximum number of concurrently running jobs.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for panics and discarded results.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler that checks staleness with current.
func NewScheduler(current VersionFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		current:  current,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		inflight: make(map[string]inflight),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sem = semaphore.NewWeighted(int64(s.workers))
	return s
}

// Workers returns the concurrency limit.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Pending returns the number of buffers with a job in flight.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// stale reports whether key no longer matches the buffer.
func (s *Scheduler) stale(key Key) bool {
	cur, ok := s.current(key.BufferID)
	return !ok || cur != key
}

// track registers a job for key, cancelling any job for an older version
// of the buffer.
// It returns false when a newer version is already in flight.
func (s *Scheduler) track(key Key, cancel context.CancelFunc) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[key.BufferID]; ok {
		if key.before(prev.key) {
			return 0, false
		}
		if prev.key.before(key) {
			prev.cancel()
		}
	}
	s.seq++
	s.inflight[key.BufferID] = inflight{seq: s.seq, key: key, cancel: cancel}
	return s.seq, true
}

// Cancel cancels the job in flight for bufferID, if any.
func (s *Scheduler) Cancel(bufferID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.inflight[bufferID]; ok {
		cur.cancel()
	}
}

func (s *Scheduler) untrack(bufferID string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.inflight[bufferID]; ok && cur.seq == seq {
		delete(s.inflight, bufferID)
	}
}

// Job is a running or finished computation.
type Job[T any] struct {
	Key Key

	cancel context.CancelFunc
	done   chan struct{}
	value  T
	err    error
}

// Done is closed when the job finishes.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Cancel stops the job. Wait then returns a context error.
func (j *Job[T]) Cancel() {
	j.cancel()
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.value, j.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit starts fn for key in the background. The job fails with ErrStale
// if the buffer is already past key.Version when it is scheduled or when
// it finishes.
func Submit[T any](ctx context.Context, s *Scheduler, key Key, fn func(context.Context) (T, error)) *Job[T] {
	jctx, cancel := context.WithCancel(ctx)
	j := &Job[T]{Key: key, cancel: cancel, done: make(chan struct{})}

	seq, ok := s.track(key, cancel)
	if !ok {
		j.err = fmt.Errorf("%w: %s", ErrStale, key)
		cancel()
		close(j.done)
		return j
	}

	go func() {
		defer close(j.done)
		defer cancel()
		defer s.untrack(key.BufferID, seq)
		j.value, j.err = run(jctx, s, key, fn)
	}()
	return j
}

// Run executes fn for key and waits for the result.
func Run[T any](ctx context.Context, s *Scheduler, key Key, fn func(context.Context) (T, error)) (T, error) {
	return Submit(ctx, s, key, fn).Wait(ctx)
}

func run[T any](ctx context.Context, s *Scheduler, key Key, fn func(context.Context) (T, error)) (value T, err error) {
	var zero T
	if s.stale(key) {
		return zero, fmt.Errorf("%w: %s", ErrStale, key)
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer s.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				slog.String("key", key.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			value, err = zero, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()

	value, err = fn(ctx)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.stale(key) {
		s.logger.Debug("discarding stale result", slog.String("key", key.String()))
		return zero, fmt.Errorf("%w: %s", ErrStale, key)
	}
	return value, nil
}

// WarmAll runs fn for every key with at most Workers concurrent calls and
// returns the first non-stale error. Stale keys are skipped.
func WarmAll(ctx context.Context, s *Scheduler, keys []Key, fn func(context.Context, Key) error) error {
	if len(keys) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.workers, len(keys)))

	for _, key := range keys {
		g.Go(func() error {
			_, err := Run(gctx, s, key, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, fn(ctx, key)
			})
			if errors.Is(err, ErrStale) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
