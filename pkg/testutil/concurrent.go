package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	dErrors "idregistry/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Refused   int32 // errors carrying the expected refusal code
	Errors    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Refused + r.Errors
}

// RunConcurrent executes fn in parallel goroutines, released together, and
// sorts each outcome into success, refusal with code, or any other error.
func RunConcurrent(goroutines int, refusal dErrors.Code, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, refused, errs atomic.Int32
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, refusal):
				refused.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Refused:   refused.Load(),
		Errors:    errs.Load(),
	}
}

// RunConcurrentCtx executes fn in parallel goroutines with context support.
func RunConcurrentCtx(ctx context.Context, goroutines int, refusal dErrors.Code, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, refusal, func(idx int) error {
		return fn(ctx, idx)
	})
}
