package future

// Policy selects which execution context a task or continuation runs on.
type Policy int

const (
	// PolicyCurrent runs on the Dispatcher's current Pool (by default a
	// fresh goroutine per task), with no named context attached.
	PolicyCurrent Policy = iota
	// PolicyInline reuses the antecedent's own placement rather than
	// picking a new one, still posted through the dispatcher like any
	// other policy rather than run synchronously under the caller. For a
	// root task (no antecedent) it is sanitized down to PolicyCurrent,
	// since there is nothing to be inline with.
	PolicyInline
	// PolicyNamedThread runs on a single-worker queue identified by
	// Target. A NamedThread placement with an empty Target is sanitized
	// down to PolicyCurrent.
	PolicyNamedThread
	// PolicyPool runs on the shared, bounded worker pool and can be
	// abandoned (see the Dispatcher) if that pool is saturated.
	PolicyPool
)

func (p Policy) String() string {
	switch p {
	case PolicyCurrent:
		return "Current"
	case PolicyInline:
		return "Inline"
	case PolicyNamedThread:
		return "NamedThread"
	case PolicyPool:
		return "Pool"
	default:
		return "Unknown"
	}
}

// ContextID names a named-thread execution context, e.g. "GameThread".
type ContextID string

// Placement is a resolved, sanitized execution placement: a policy plus
// the named-thread target it applies to, if any.
type Placement struct {
	Policy Policy
	Target ContextID
}
