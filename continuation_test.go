package future

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThenValueRunsOnCompleted(t *testing.T) {
	ant := Ready(10)
	fut := ThenValue(ant, func(ctx context.Context, v int) string {
		return "got"
	})
	<-fut.Done()
	o := fut.Get()
	require.True(t, o.IsCompleted())
	assert.Equal(t, "got", o.Value())
}

func TestThenValueSkipsAndPropagatesOnError(t *testing.T) {
	ant := ErroredFuture[int](InvalidArgument("nope"))
	called := false
	fut := ThenValue(ant, func(ctx context.Context, v int) string {
		called = true
		return "unused"
	})
	<-fut.Done()
	o := fut.Get()
	assert.False(t, called)
	require.True(t, o.IsErrored())
	assert.Equal(t, InvalidArgument("nope"), o.Err())
}

func TestThenValueSkipsAndPropagatesOnCancel(t *testing.T) {
	ant := CancelledFuture[int]()
	fut := ThenValue(ant, func(ctx context.Context, v int) string { return "unused" })
	<-fut.Done()
	assert.True(t, fut.Get().IsCancelled())
}

func TestThenOutcomeAlwaysRuns(t *testing.T) {
	ant := CancelledFuture[int]()
	fut := ThenOutcome(ant, func(ctx context.Context, o Outcome[int]) string {
		if o.IsCancelled() {
			return "was cancelled"
		}
		return "other"
	})
	<-fut.Done()
	o := fut.Get()
	require.True(t, o.IsCompleted())
	assert.Equal(t, "was cancelled", o.Value())
}

func TestThenValueOutcomeCanErrorExplicitly(t *testing.T) {
	ant := Ready(5)
	fut := ThenValueOutcome(ant, func(ctx context.Context, v int) Outcome[string] {
		return Errored[string](InvalidArgument("rejected"))
	})
	<-fut.Done()
	assert.True(t, fut.Get().IsErrored())
}

func TestThenValueFutureUnwraps(t *testing.T) {
	ant := Ready(3)
	fut := ThenValueFuture(ant, func(ctx context.Context, v int) Future[int] {
		return Ready(v * 2)
	})
	<-fut.Done()
	o := fut.Get()
	require.True(t, o.IsCompleted())
	assert.Equal(t, 6, o.Value())
}

func TestThenUnitIgnoresValue(t *testing.T) {
	ant := ReadyVoid()
	fut := ThenUnit(ant, func(ctx context.Context) int { return 7 })
	<-fut.Done()
	assert.Equal(t, 7, fut.Get().Value())
}

func TestOwnerAliveOptionReflectsLifetime(t *testing.T) {
	type owner struct{}
	o := &owner{}
	cfg := resolveOptions([]Option{WithOwner(o)})
	require.NotNil(t, cfg.ownerAlive)
	assert.True(t, cfg.ownerAlive())
}

func TestNamedThreadWithoutTargetSanitizesToCurrent(t *testing.T) {
	fut := Async(func(ctx context.Context) (int, error) {
		return 1, nil
	}, WithPolicy(PolicyNamedThread))
	<-fut.Done()
	assert.Equal(t, PolicyCurrent, fut.state.placement.Policy)
	assert.True(t, fut.Get().IsCompleted())
}

func TestAllSettlesWhenEverythingCompletes(t *testing.T) {
	futs := []Future[int]{Ready(1), Ready(2), Ready(3)}
	all := All(futs)
	select {
	case <-all.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	o := all.Get()
	require.True(t, o.IsCompleted())
	assert.Equal(t, []int{1, 2, 3}, o.Value())
}
