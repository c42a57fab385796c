package future

import (
	"sync"
	"weak"

	"github.com/google/uuid"
	uatomic "go.uber.org/atomic"
)

// cancellable is implemented by *Promise[T] for any T; the Registry
// holds weak references to listeners through this interface so it
// never keeps a promise alive on its own.
type cancellable interface {
	cancel()
}

// listenerRef is a weak reference to a cancellable promise, upgraded
// lazily when the registry actually needs to cancel its listeners.
type listenerRef struct {
	upgrade func() (cancellable, bool)
}

func newListenerRef[T any](p *Promise[T]) listenerRef {
	weakP := weak.Make(p)
	return listenerRef{
		upgrade: func() (cancellable, bool) {
			strong := weakP.Value()
			if strong == nil {
				return nil, false
			}
			return strong, true
		},
	}
}

// Registry is a cancellation handle shared between a root task and
// every future chained off it. Calling Cancel once propagates to every
// promise currently registered, and is idempotent: later calls and
// later registrations against an already-cancelled registry are no-ops
// beyond cancelling the newly added listener immediately.
type Registry struct {
	id        uuid.UUID
	mu        sync.Mutex
	cancelled uatomic.Bool
	listeners []listenerRef
}

// NewRegistry creates an empty, not-yet-cancelled Registry.
func NewRegistry() *Registry {
	return &Registry{id: uuid.New()}
}

// AddListener registers p against r. If r has already been cancelled, p
// is cancelled immediately instead of being stored. The registry keeps
// only a weak reference to p, so registering does not keep p alive.
func AddListener[T any](r *Registry, p *Promise[T]) {
	r.mu.Lock()
	if r.cancelled.Load() {
		r.mu.Unlock()
		log.WithField("registry", r.id).Debug("future: promise registered against already-cancelled registry")
		p.cancel()
		return
	}
	r.listeners = append(r.listeners, newListenerRef(p))
	r.mu.Unlock()
}

// Cancel marks r cancelled and cancels every live listener currently
// registered. It is safe to call more than once and from multiple
// goroutines; only the first call has any effect on listeners.
func (r *Registry) Cancel() {
	if !r.cancelled.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	listeners := r.listeners
	r.listeners = nil
	r.mu.Unlock()

	log.WithField("registry", r.id).WithField("listeners", len(listeners)).Debug("future: cancelling registry")
	for _, l := range listeners {
		if p, ok := l.upgrade(); ok {
			p.cancel()
		}
	}
}

// IsCancelled reports whether Cancel has been called on r.
func (r *Registry) IsCancelled() bool {
	return r.cancelled.Load()
}
