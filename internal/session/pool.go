package session

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many resolutions run at once. Resolution never blocks, so
// the only wait is for a free slot.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers)), size: workers}
}

func (p *Pool) Size() int { return p.size }

// Do runs fn once a slot is free. It returns ctx's error, without running fn,
// if ctx ends first.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
