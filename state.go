package future

import (
	"context"
	"fmt"
	"runtime"

	uatomic "go.uber.org/atomic"
)

// setPhase tracks the single-assignment transition of a sharedState's
// outcome: Unset, briefly Setting while the winning writer stores its
// outcome, then Set once the outcome is readable; done is closed right
// after Set is published.
type setPhase int32

const (
	phaseUnset setPhase = iota
	phaseSetting
	phaseSet
)

// sharedState is the single-assignment cell shared between a Promise
// and every Future copy taken from it.
type sharedState[T any] struct {
	outcome   Outcome[T]
	phase     uatomic.Int32
	done      chan struct{}
	placement Placement
}

func newSharedState[T any](placement Placement) *sharedState[T] {
	return &sharedState[T]{
		done:      make(chan struct{}),
		placement: placement,
	}
}

// trySet attempts the single assignment of s's outcome. It returns
// false, discarding o, if the state was already set or is concurrently
// being set by another writer.
func (s *sharedState[T]) trySet(o Outcome[T]) bool {
	if !s.phase.CompareAndSwap(int32(phaseUnset), int32(phaseSetting)) {
		return false
	}
	s.outcome = o
	s.phase.Store(int32(phaseSet))
	close(s.done)
	return true
}

func (s *sharedState[T]) isReady() bool {
	return s.phase.Load() == int32(phaseSet)
}

// Promise is the write side of a future: the handle used to settle it
// exactly once, from whichever goroutine first manages to.
type Promise[T any] struct {
	state *sharedState[T]
}

func newPromise[T any](placement Placement) *Promise[T] {
	p := &Promise[T]{state: newSharedState[T](placement)}
	// A promise that is garbage collected while still unset leaves its
	// future incomplete forever; settle it as cancelled instead, the
	// "broken promise" rule.
	runtime.AddCleanup(p, func(s *sharedState[T]) {
		if !s.isReady() {
			s.trySet(Cancelled[T]())
		}
	}, p.state)
	return p
}

// Future returns the read-only handle backed by p's shared state.
func (p *Promise[T]) Future() Future[T] {
	return Future[T]{state: p.state}
}

// SetValue settles p with a Completed outcome. It is a no-op if p has
// already settled.
func (p *Promise[T]) SetValue(v T) {
	p.state.trySet(Completed(v))
}

// SetError settles p with an Errored outcome. It is a no-op if p has
// already settled.
func (p *Promise[T]) SetError(e Error) {
	p.state.trySet(Errored[T](e))
}

// SetOutcome settles p with an arbitrary outcome. It is a no-op if p
// has already settled.
func (p *Promise[T]) SetOutcome(o Outcome[T]) {
	p.state.trySet(o)
}

// Cancel settles p as Cancelled. It is a no-op if p has already
// settled.
func (p *Promise[T]) Cancel() {
	p.state.trySet(Cancelled[T]())
}

// cancel implements the cancellable interface used by Registry.
func (p *Promise[T]) cancel() {
	p.Cancel()
}

// Future is a read-only handle to a value that will be produced
// asynchronously. It is a small value type, safe to copy and share
// across goroutines.
type Future[T any] struct {
	state *sharedState[T]
}

// IsReady reports whether the future has settled.
func (f Future[T]) IsReady() bool {
	return f.state.isReady()
}

// Get returns the settled outcome. It panics if the future is not yet
// ready — callers that need to block until settlement should select on
// the channel returned by Done, or use a continuation.
func (f Future[T]) Get() Outcome[T] {
	if !f.state.isReady() {
		panic("future: Get() called before settlement")
	}
	return f.state.outcome
}

// Done returns a channel that is closed once the future settles.
func (f Future[T]) Done() <-chan struct{} {
	return f.state.done
}

// Task is the work a root future runs: given a context (which exposes
// CurrentContext when running under a named placement), it produces
// either a value or an error.
type Task[T any] func(ctx context.Context) (T, error)

func runTask[T any](ctx context.Context, task Task[T], downstream *Promise[T]) {
	defer func() {
		if r := recover(); r != nil {
			downstream.SetError(userCodeError(fmt.Sprintf("task panicked: %v", r)))
		}
	}()
	v, err := task(ctx)
	if err != nil {
		downstream.SetError(userCodeError(err.Error()))
		return
	}
	downstream.SetValue(v)
}

// Async schedules task for execution under the placement and
// cancellation registry selected by opts, returning the future it will
// settle. PolicyInline has no meaning for a root task (there is no
// antecedent to be inline with) and is sanitized to PolicyCurrent.
func Async[T any](task Task[T], opts ...Option) Future[T] {
	cfg := resolveOptions(opts)
	placement := Placement{Policy: cfg.policy, Target: cfg.target}
	if placement.Policy == PolicyInline {
		placement.Policy = PolicyCurrent
	}

	downstream := newPromise[T](placement)

	cancelOnAbandon := func() {
		downstream.Cancel()
	}
	if cfg.cancellation != nil {
		AddListener(cfg.cancellation, downstream)
	}

	run := func(ctx context.Context) {
		runTask(ctx, task, downstream)
	}

	defaultDispatcher().submit(alreadyDone, placement, run, cancelOnAbandon)
	return downstream.Future()
}
