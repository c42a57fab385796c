package future

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllEmptyResolvesImmediately(t *testing.T) {
	fut := All([]Future[int]{})
	require.True(t, fut.IsReady())
	assert.Equal(t, []int{}, fut.Get().Value())
}

func TestAllFailFullWaitsForEveryInput(t *testing.T) {
	slow := newPromise[int](Placement{Policy: PolicyCurrent})
	futs := []Future[int]{
		ErroredFuture[int](InvalidArgument("first bad")),
		slow.Future(),
	}
	all := All(futs, FailFull)
	assert.False(t, all.IsReady())

	slow.SetValue(9)
	select {
	case <-all.Done():
	case <-time.After(time.Second):
		t.Fatal("FailFull never settled after remaining future resolved")
	}
	assert.True(t, all.Get().IsErrored())
}

func TestAllFailFastResolvesImmediately(t *testing.T) {
	never := newPromise[int](Placement{Policy: PolicyCurrent})
	futs := []Future[int]{
		ErroredFuture[int](InvalidArgument("bad")),
		never.Future(),
	}
	all := All(futs, FailFast)
	select {
	case <-all.Done():
	case <-time.After(time.Second):
		t.Fatal("FailFast never settled")
	}
	assert.True(t, all.Get().IsErrored())
}

func TestAnyResolvesWithFirstSettled(t *testing.T) {
	fast := Ready(1)
	slow := newPromise[int](Placement{Policy: PolicyCurrent})
	any := Any([]Future[int]{slow.Future(), fast})
	<-any.Done()
	assert.Equal(t, 1, any.Get().Value())
}

func TestAnyEmptyIsInvalidArgument(t *testing.T) {
	any := Any([]Future[int]{})
	require.True(t, any.IsReady())
	o := any.Get()
	assert.True(t, o.IsErrored())
	assert.Equal(t, ErrInvalidArgument, o.Err().Code())
}

type fakeClock struct {
	fns []func()
}

func (c *fakeClock) After(d time.Duration, cb func()) {
	c.fns = append(c.fns, cb)
}

func (c *fakeClock) fire() {
	for _, fn := range c.fns {
		fn()
	}
	c.fns = nil
}

func TestDelaySettlesWhenClockFires(t *testing.T) {
	fc := &fakeClock{}
	SetDefaultClock(fc)
	defer SetDefaultClock(stdClock{})

	fut := Delay(1.5)
	assert.False(t, fut.IsReady())

	fc.fire()
	require.True(t, fut.IsReady())
	assert.True(t, fut.Get().IsCompleted())
}

func TestAllVoidCompletes(t *testing.T) {
	fut := AllVoid([]Future[Unit]{ReadyVoid(), ReadyVoid()})
	<-fut.Done()
	assert.True(t, fut.Get().IsCompleted())
}
