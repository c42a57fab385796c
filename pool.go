package future

import (
	"sync/atomic"

	"github.com/Jeffail/tunny"
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
)

// Pool abstracts the goroutine pool a Dispatcher hands work to. Submit
// returns an error when the work was not accepted — a saturated
// non-blocking pool, most commonly — which the dispatcher treats as
// abandonment rather than blocking the caller.
type Pool interface {
	Submit(f func()) error
}

// poolFunc adapts a plain submit function to the Pool interface.
type poolFunc func(f func()) error

func (p poolFunc) Submit(f func()) error { return p(f) }

// PoolOfGoroutines returns a Pool backed by a bare `go` statement per
// task. It has no capacity limit and therefore never reports
// abandonment; a panicking task is recovered and logged rather than
// crashing the process.
func PoolOfGoroutines() Pool {
	return poolFunc(func(f func()) error {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("future: task panicked on goroutine pool")
				}
			}()
			f()
		}()
		return nil
	})
}

// PoolOfAnts adapts an *ants.Pool. Submit reports ants' own submission
// error (e.g. ants.ErrPoolOverload for a non-blocking pool at capacity)
// so it can drive pool-abandonment behavior upstream.
func PoolOfAnts(p *ants.Pool) Pool {
	return poolFunc(func(f func()) error {
		return p.Submit(f)
	})
}

// PoolOfWorkerpool adapts a *workerpool.WorkerPool. workerpool.Submit
// never blocks the caller and never reports abandonment; it queues
// unboundedly.
func PoolOfWorkerpool(wp *workerpool.WorkerPool) Pool {
	return poolFunc(func(f func()) error {
		wp.Submit(f)
		return nil
	})
}

// PoolOfConc adapts a *pool.Pool from sourcegraph/conc. Tasks panicking
// inside a conc pool are caught by conc itself and re-raised when the
// pool is waited on; submission here never reports abandonment.
func PoolOfConc(p *pool.Pool) Pool {
	return poolFunc(func(f func()) error {
		p.Go(f)
		return nil
	})
}

// PoolOfTunny adapts a *tunny.Pool. The pool must have been constructed
// with tunny.NewFunc(n, worker) where worker accepts a func() payload
// and invokes it, e.g.:
//
//	tunny.NewFunc(n, func(payload any) any {
//	    payload.(func())()
//	    return nil
//	})
//
// Process blocks until a worker is free, so it is run in its own
// goroutine to preserve the fire-and-forget contract of Submit.
func PoolOfTunny(p *tunny.Pool) Pool {
	return poolFunc(func(f func()) error {
		go p.Process(f)
		return nil
	})
}

var defaultPool atomic.Value

// The default pool is stored by a package-level variable initializer
// rather than an init function: dispatcher.go's init builds the default
// Dispatcher from DefaultPool, and every variable initializer runs before
// any init function.
var _ = func() struct{} {
	defaultPool.Store(PoolOfGoroutines())
	return struct{}{}
}()

// DefaultPool returns the pool that NewDispatcher installs for
// PolicyCurrent submissions. NewDispatcher reads it once, at
// construction.
func DefaultPool() Pool {
	return defaultPool.Load().(Pool)
}

// SetDefaultPool replaces the package-wide default pool. Dispatchers
// built before the call keep the pool they were constructed with.
func SetDefaultPool(p Pool) {
	defaultPool.Store(p)
}
