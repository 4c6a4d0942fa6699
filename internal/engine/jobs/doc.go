// Package jobs runs derived computations (tokenize, fold, diff) off the
// caller's goroutine, keyed by the buffer version they were computed for.
//
// A job whose buffer has moved past its version before it finishes is
// discarded with ErrStale. Submitting a job for a newer version of the same
// buffer cancels the older job's context. Concurrency is bounded by a
// weighted semaphore.
//
//	s := jobs.NewScheduler(currentKey, jobs.WithWorkers(4))
//	job := jobs.Submit(ctx, s, jobs.Key{BufferID: id, Generation: g, Version: v},
//		func(ctx context.Context) ([]highlight.Token, error) {
//			return tok.Tokenize(src, "go"), nil
//		})
//	tokens, err := job.Wait(ctx)
package jobs
