// Package future implements expected futures: lightweight handles to a
// value that will be produced by work scheduled on a caller-selected
// execution context. A future settles into exactly one of three terminal
// outcomes — completed with a value, errored with a structured Error, or
// cancelled — and supports chained continuations that transform an
// outcome into a new future.
//
// The package is organized around seven pieces, in dependency order:
// Error (error.go), Outcome (outcome.go), the cancellation registry
// (cancel.go), the execution dispatcher (placement.go, pool.go,
// dispatcher.go), the promise/future shared state (state.go), the
// continuation engine (continuation.go, options.go), and the combinators
// (combinators.go).
//
// This is not a reactive-streams library: a future holds at most one
// outcome, there is no backpressure and no persistence across process
// restarts. Cancellation is cooperative and best-effort.
package future
