package future

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
)

// FailMode selects how All behaves once one of its input futures
// settles as Errored or Cancelled.
type FailMode int

const (
	// FailFull waits for every input future to settle before resolving,
	// even after one of them fails; the first non-completed outcome
	// encountered, by settlement order, is the one propagated.
	FailFull FailMode = iota
	// FailFast resolves as soon as the first non-completed outcome is
	// observed, without waiting on the remaining futures.
	FailFast
)

// Ready returns an already-completed future carrying v.
func Ready[T any](v T) Future[T] {
	p := newPromise[T](Placement{Policy: PolicyCurrent})
	p.SetValue(v)
	return p.Future()
}

// ReadyVoid returns an already-completed Future[Unit].
func ReadyVoid() Future[Unit] {
	return Ready(Unit{})
}

// ReadyFromOutcome returns an already-settled future carrying o.
func ReadyFromOutcome[T any](o Outcome[T]) Future[T] {
	p := newPromise[T](Placement{Policy: PolicyCurrent})
	p.SetOutcome(o)
	return p.Future()
}

// ErroredFuture returns an already-settled Errored future.
func ErroredFuture[T any](e Error) Future[T] {
	return ReadyFromOutcome[T](Errored[T](e))
}

// CancelledFuture returns an already-settled Cancelled future.
func CancelledFuture[T any]() Future[T] {
	return ReadyFromOutcome[T](Cancelled[T]())
}

var settlePool = pool.New().WithMaxGoroutines(64)

// dispatchOnSettle invokes cb with f's outcome once f settles, on a
// goroutine drawn from a shared, panic-safe fan-out pool. It is the
// building block every combinator below uses to watch multiple futures
// without spawning one bare goroutine per input.
func dispatchOnSettle[T any](f Future[T], cb func(Outcome[T])) {
	settlePool.Go(func() {
		<-f.Done()
		cb(f.Get())
	})
}

// All waits for every future in futures to complete, collecting their
// values in input order. If any future does not complete, the returned
// future propagates its Errored/Cancelled outcome instead; mode
// controls whether All waits for the rest of the inputs first
// (FailFull, the default) or resolves immediately (FailFast).
func All[T any](futures []Future[T], mode ...FailMode) Future[[]T] {
	m := FailFull
	if len(mode) > 0 {
		m = mode[0]
	}

	if len(futures) == 0 {
		return Ready([]T{})
	}

	downstream := newPromise[[]T](Placement{Policy: PolicyCurrent})
	values := make([]T, len(futures))

	var mu sync.Mutex
	remaining := len(futures)
	var firstBad *Outcome[T]
	var discardedErrs error

	settle := func() {
		if firstBad != nil {
			downstream.SetOutcome(ConvertIncomplete[[]T](*firstBad))
			return
		}
		downstream.SetValue(append([]T(nil), values...))
	}

	for i, fut := range futures {
		i := i
		dispatchOnSettle(fut, func(o Outcome[T]) {
			mu.Lock()
			defer mu.Unlock()
			if downstream.state.isReady() {
				return
			}
			if o.IsCompleted() {
				values[i] = o.Value()
			} else if firstBad == nil {
				firstBad = &o
			} else if o.IsErrored() {
				discardedErrs = multierr.Append(discardedErrs, o.Err())
				log.WithField("err", discardedErrs).Debug("future: All discarding a non-winning error outcome")
			}
			remaining--

			switch {
			case m == FailFast && firstBad != nil:
				settle()
			case remaining == 0:
				settle()
			}
		})
	}

	return downstream.Future()
}

// AllVoid is All specialized to side-effecting Future[Unit] inputs; it
// settles as Completed(Unit{}) once every input completes.
func AllVoid(futures []Future[Unit], mode ...FailMode) Future[Unit] {
	return ThenValue(All(futures, mode...), func(ctx context.Context, _ []Unit) Unit {
		return Unit{}
	})
}

// Any settles with the outcome of whichever future in futures settles
// first. futures must contain at least one element; an empty slice
// yields an immediately Errored future.
func Any[T any](futures []Future[T]) Future[T] {
	if len(futures) == 0 {
		return ErroredFuture[T](InvalidArgument("Any requires at least one future"))
	}

	downstream := newPromise[T](Placement{Policy: PolicyCurrent})
	for _, fut := range futures {
		dispatchOnSettle(fut, func(o Outcome[T]) {
			downstream.SetOutcome(o)
		})
	}
	return downstream.Future()
}

// Clock abstracts scheduling a callback after a delay, so Delay's
// backing timer can be swapped out in tests.
type Clock interface {
	After(d time.Duration, cb func())
}

type stdClock struct{}

func (stdClock) After(d time.Duration, cb func()) {
	time.AfterFunc(d, cb)
}

var defaultClock atomic.Value

// DefaultClock returns the Clock used by Delay.
func DefaultClock() Clock {
	return defaultClock.Load().(Clock)
}

// SetDefaultClock replaces the Clock used by Delay, primarily for
// deterministic tests.
func SetDefaultClock(c Clock) {
	defaultClock.Store(c)
}

func init() {
	defaultClock.Store(stdClock{})
}

// Delay returns a future that settles as Completed(Unit{}) after the
// given number of seconds have elapsed.
func Delay(seconds float64) Future[Unit] {
	p := newPromise[Unit](Placement{Policy: PolicyCurrent})
	DefaultClock().After(time.Duration(seconds*float64(time.Second)), func() {
		p.SetValue(Unit{})
	})
	return p.Future()
}
