package future

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/semaphore"
)

type ctxKeyContext struct{}

// CurrentContext reports the named execution context the calling
// goroutine is running on, if the task or continuation it belongs to
// was placed with PolicyNamedThread, or with PolicyInline behind a
// NamedThread antecedent. It returns false for work running under
// PolicyCurrent or PolicyPool.
func CurrentContext(ctx context.Context) (ContextID, bool) {
	id, ok := ctx.Value(ctxKeyContext{}).(ContextID)
	return id, ok
}

func withContextID(ctx context.Context, id ContextID) context.Context {
	return context.WithValue(ctx, ctxKeyContext{}, id)
}

// alreadyDone is a closed channel reused by root-task submission, which
// has no antecedent future to wait on before running.
var alreadyDone = func() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// DispatcherConfig configures the shared worker pool backing
// PolicyPool.
type DispatcherConfig struct {
	// PoolCapacity bounds the number of goroutines the shared pool may
	// run concurrently. Zero means use the default of 256.
	PoolCapacity int
	// PoolConcurrencyCap additionally bounds in-flight PolicyPool work
	// across the whole dispatcher, independent of pool goroutine count.
	// Zero means use the default, equal to PoolCapacity.
	PoolConcurrencyCap int64
}

func (c *DispatcherConfig) sanitize() {
	if c.PoolCapacity <= 0 {
		c.PoolCapacity = 256
	}
	if c.PoolConcurrencyCap <= 0 {
		c.PoolConcurrencyCap = int64(c.PoolCapacity)
	}
}

// DispatcherOption configures a Dispatcher at construction time.
type DispatcherOption func(*DispatcherConfig)

// WithPoolCapacity overrides the shared pool's goroutine capacity.
func WithPoolCapacity(n int) DispatcherOption {
	return func(c *DispatcherConfig) { c.PoolCapacity = n }
}

// WithPoolConcurrencyCap overrides the shared pool's concurrency cap.
func WithPoolConcurrencyCap(n int64) DispatcherOption {
	return func(c *DispatcherConfig) { c.PoolConcurrencyCap = n }
}

// Dispatcher places tasks and continuations onto their selected
// execution context: the current pool, a named single-worker queue, or
// the shared bounded pool. A Dispatcher is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	current  Pool
	poolPool *ants.Pool
	sem      *semaphore.Weighted
	named    map[ContextID]*workerpool.WorkerPool
}

// NewDispatcher builds a Dispatcher with its own shared pool, sized per
// opts.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	cfg := DispatcherConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.sanitize()

	pp, err := ants.NewPool(cfg.PoolCapacity, ants.WithNonblocking(true))
	if err != nil {
		// ants.NewPool only errors on a non-positive size, which
		// sanitize() above rules out.
		panic(err)
	}

	return &Dispatcher{
		current:  DefaultPool(),
		poolPool: pp,
		sem:      semaphore.NewWeighted(cfg.PoolConcurrencyCap),
		named:    make(map[ContextID]*workerpool.WorkerPool),
	}
}

// SetCurrentPool overrides the pool backing PolicyCurrent submissions
// for this dispatcher.
func (d *Dispatcher) SetCurrentPool(p Pool) {
	d.mu.Lock()
	d.current = p
	d.mu.Unlock()
}

func (d *Dispatcher) namedPool(id ContextID) *workerpool.WorkerPool {
	d.mu.RLock()
	wp, ok := d.named[id]
	d.mu.RUnlock()
	if ok {
		return wp
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if wp, ok := d.named[id]; ok {
		return wp
	}
	wp = workerpool.New(1)
	d.named[id] = wp
	return wp
}

// submit places task on the execution context named by placement,
// waiting for antecedentDone to close before running it. If the
// placement is PolicyPool and the task cannot be accepted (the shared
// pool is saturated, or the concurrency cap has no room), cancelOnAbandon
// is invoked and task is never run.
func (d *Dispatcher) submit(antecedentDone <-chan struct{}, placement Placement, task func(ctx context.Context), cancelOnAbandon func()) {
	run := func(ctx context.Context) {
		<-antecedentDone
		task(ctx)
	}

	switch placement.Policy {
	case PolicyNamedThread:
		wp := d.namedPool(placement.Target)
		wp.Submit(func() {
			run(withContextID(context.Background(), placement.Target))
		})

	case PolicyPool:
		if !d.sem.TryAcquire(1) {
			log.Debug("future: pool placement abandoned, concurrency cap reached")
			cancelOnAbandon()
			return
		}
		err := d.poolPool.Submit(func() {
			defer d.sem.Release(1)
			run(context.Background())
		})
		if err != nil {
			d.sem.Release(1)
			log.WithField("err", err).Debug("future: pool placement abandoned, shared pool saturated")
			cancelOnAbandon()
		}

	default: // PolicyCurrent (PolicyInline is sanitized to this before reaching submit)
		d.mu.RLock()
		p := d.current
		d.mu.RUnlock()
		if err := p.Submit(func() { run(context.Background()) }); err != nil {
			log.WithField("err", err).Debug("future: current placement abandoned")
			cancelOnAbandon()
		}
	}
}

var globalDispatcher atomic.Value

func defaultDispatcher() *Dispatcher {
	return globalDispatcher.Load().(*Dispatcher)
}

// SetDefaultDispatcher replaces the package-wide default dispatcher
// used by Async and the continuation engine.
func SetDefaultDispatcher(d *Dispatcher) {
	globalDispatcher.Store(d)
}

func init() {
	globalDispatcher.Store(NewDispatcher())
}
