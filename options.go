package future

import "weak"

// continuationOptions is the resolved configuration for Async or a
// Then* continuation.
type continuationOptions struct {
	cancellation *Registry
	policy       Policy
	target       ContextID
	ownerAlive   func() bool
}

// Option configures a root task or a continuation.
type Option func(*continuationOptions)

// WithCancellation attaches r as the cancellation registry for the
// future being created; cancelling r cancels this future (and, for a
// continuation, everything chained after it that shares the registry).
func WithCancellation(r *Registry) Option {
	return func(c *continuationOptions) { c.cancellation = r }
}

// WithPolicy selects the execution policy for the future being created.
func WithPolicy(p Policy) Option {
	return func(c *continuationOptions) { c.policy = p }
}

// WithTarget selects PolicyNamedThread with the given target context.
func WithTarget(id ContextID) Option {
	return func(c *continuationOptions) {
		c.policy = PolicyNamedThread
		c.target = id
	}
}

// WithOwner ties a continuation's lifetime to owner: if owner has
// already been garbage collected by the time the continuation would
// run, it settles as Errored(ObjectDestroyed) instead of invoking the
// callback. Only a weak reference to owner is kept, so attaching a
// continuation this way never keeps owner alive.
func WithOwner[O any](owner *O) Option {
	weakOwner := weak.Make(owner)
	return func(c *continuationOptions) {
		c.ownerAlive = func() bool {
			return weakOwner.Value() != nil
		}
	}
}

func resolveOptions(opts []Option) continuationOptions {
	cfg := continuationOptions{policy: PolicyCurrent}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.sanitize()
	return cfg
}

// sanitize downgrades a NamedThread placement with no target to
// Current, logging a warning — the caller asked to run on a named
// thread but gave no thread to run on.
func (cfg *continuationOptions) sanitize() {
	if cfg.policy == PolicyNamedThread && cfg.target == "" {
		log.Warn("future: NamedThread policy requested with no target, downgrading to Current")
		cfg.policy = PolicyCurrent
	}
}
