package future

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCancelsListener(t *testing.T) {
	reg := NewRegistry()
	fut := Async(func(ctx context.Context) (int, error) {
		<-time.After(50 * time.Millisecond)
		return 1, nil
	}, WithCancellation(reg), WithPolicy(PolicyPool))

	reg.Cancel()

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("future never settled after cancellation")
	}
	assert.True(t, fut.Get().IsCancelled())
}

func TestRegistryCancelIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	assert.NotPanics(t, func() {
		reg.Cancel()
		reg.Cancel()
	})
	assert.True(t, reg.IsCancelled())
}

func TestAddListenerAfterCancelCancelsImmediately(t *testing.T) {
	reg := NewRegistry()
	reg.Cancel()

	p := newPromise[int](Placement{Policy: PolicyCurrent})
	AddListener(reg, p)

	require.True(t, p.state.isReady())
	assert.True(t, p.Future().Get().IsCancelled())
}
