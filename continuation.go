package future

import (
	"context"
	"fmt"
)

// resolvePlacement computes the placement a continuation actually runs
// under: Inline means "wherever the antecedent settled", anything else
// is the continuation's own (already-sanitized) policy/target.
func resolvePlacement(antecedent Placement, cfg continuationOptions) Placement {
	if cfg.policy == PolicyInline {
		return antecedent
	}
	return Placement{Policy: cfg.policy, Target: cfg.target}
}

// wireCancellation registers downstream against cfg's registry, if any,
// and returns the function to call if downstream's submission is
// abandoned by the dispatcher.
func wireCancellation[R any](cfg continuationOptions, downstream *Promise[R]) func() {
	if cfg.cancellation != nil {
		AddListener(cfg.cancellation, downstream)
	}
	return downstream.Cancel
}

// attach is the shared engine behind every Then* function: it builds
// the downstream promise, resolves placement and lifetime-binding, and
// submits a task that runs once the antecedent has settled.
func attach[T, R any](ant Future[T], cfg continuationOptions, run func(ctx context.Context, o Outcome[T], downstream *Promise[R])) Future[R] {
	placement := resolvePlacement(ant.state.placement, cfg)
	downstream := newPromise[R](placement)
	cancelOnAbandon := wireCancellation(cfg, downstream)

	task := func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				downstream.SetOutcome(Errored[R](userCodeError(fmt.Sprintf("continuation panicked: %v", r))))
			}
		}()
		if cfg.ownerAlive != nil && !cfg.ownerAlive() {
			downstream.SetOutcome(Errored[R](ObjectDestroyed()))
			return
		}
		run(ctx, ant.Get(), downstream)
	}

	defaultDispatcher().submit(ant.Done(), placement, task, cancelOnAbandon)
	return downstream.Future()
}

// forwardInto attaches a trivial continuation on inner that copies its
// outcome into downstream once inner itself settles, posted through the
// dispatcher under inner's own placement. This is the unwrapping step used by
// every *Future continuation variant, so that Then*Future can return
// Future[R] rather than Future[Future[R]].
func forwardInto[R any](inner Future[R], downstream *Promise[R]) {
	cfg := continuationOptions{policy: PolicyInline}
	placement := resolvePlacement(inner.state.placement, cfg)
	task := func(ctx context.Context) {
		downstream.SetOutcome(inner.Get())
	}
	defaultDispatcher().submit(inner.Done(), placement, task, downstream.Cancel)
}

// --- value-param variants: skip and propagate when ant did not complete ---

// ThenValue attaches a continuation that runs only when ant completes,
// transforming its value into a plain R. If ant did not complete, its
// Errored/Cancelled/Incomplete state is propagated without invoking fn.
func ThenValue[T, R any](ant Future[T], fn func(ctx context.Context, v T) R, opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		if !o.IsCompleted() {
			downstream.SetOutcome(ConvertIncomplete[R](o))
			return
		}
		downstream.SetValue(fn(ctx, o.Value()))
	})
}

// ThenValueOutcome is like ThenValue but fn itself produces an Outcome,
// letting the callback settle as Errored or Cancelled explicitly.
func ThenValueOutcome[T, R any](ant Future[T], fn func(ctx context.Context, v T) Outcome[R], opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		if !o.IsCompleted() {
			downstream.SetOutcome(ConvertIncomplete[R](o))
			return
		}
		downstream.SetOutcome(fn(ctx, o.Value()))
	})
}

// ThenValueFuture is like ThenValue but fn produces a Future[R], which
// is unwrapped so the overall continuation settles when that inner
// future does.
func ThenValueFuture[T, R any](ant Future[T], fn func(ctx context.Context, v T) Future[R], opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		if !o.IsCompleted() {
			downstream.SetOutcome(ConvertIncomplete[R](o))
			return
		}
		forwardInto(fn(ctx, o.Value()), downstream)
	})
}

// --- outcome-param variants: always invoke fn, regardless of ant's state ---

// ThenOutcome attaches a continuation that always runs, regardless of
// whether ant completed, errored or was cancelled, transforming the
// whole outcome into a plain R.
func ThenOutcome[T, R any](ant Future[T], fn func(ctx context.Context, o Outcome[T]) R, opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		downstream.SetValue(fn(ctx, o))
	})
}

// ThenOutcomeOutcome is like ThenOutcome but fn itself produces an
// Outcome.
func ThenOutcomeOutcome[T, R any](ant Future[T], fn func(ctx context.Context, o Outcome[T]) Outcome[R], opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		downstream.SetOutcome(fn(ctx, o))
	})
}

// ThenOutcomeFuture is like ThenOutcome but fn produces a Future[R],
// unwrapped as in ThenValueFuture.
func ThenOutcomeFuture[T, R any](ant Future[T], fn func(ctx context.Context, o Outcome[T]) Future[R], opts ...Option) Future[R] {
	cfg := resolveOptions(opts)
	return attach(ant, cfg, func(ctx context.Context, o Outcome[T], downstream *Promise[R]) {
		forwardInto(fn(ctx, o), downstream)
	})
}

// --- unit-param variants: antecedent is Future[Unit], fn ignores its value ---

// ThenUnit attaches a continuation to a Future[Unit] antecedent that
// runs only if it completed, ignoring its (uninteresting) value.
func ThenUnit[R any](ant Future[Unit], fn func(ctx context.Context) R, opts ...Option) Future[R] {
	return ThenValue(ant, func(ctx context.Context, _ Unit) R { return fn(ctx) }, opts...)
}

// ThenUnitOutcome is the Outcome-returning counterpart of ThenUnit.
func ThenUnitOutcome[R any](ant Future[Unit], fn func(ctx context.Context) Outcome[R], opts ...Option) Future[R] {
	return ThenValueOutcome(ant, func(ctx context.Context, _ Unit) Outcome[R] { return fn(ctx) }, opts...)
}

// ThenUnitFuture is the Future-returning counterpart of ThenUnit.
func ThenUnitFuture[R any](ant Future[Unit], fn func(ctx context.Context) Future[R], opts ...Option) Future[R] {
	return ThenValueFuture(ant, func(ctx context.Context, _ Unit) Future[R] { return fn(ctx) }, opts...)
}
