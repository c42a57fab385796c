package future

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeConstructorsAndPredicates(t *testing.T) {
	inc := Incomplete[int]()
	assert.True(t, inc.IsIncomplete())
	assert.False(t, inc.IsCompleted())

	comp := Completed(42)
	assert.True(t, comp.IsCompleted())
	assert.Equal(t, 42, comp.Value())

	errd := Errored[int](InvalidArgument("bad"))
	assert.True(t, errd.IsErrored())
	assert.Equal(t, InvalidArgument("bad"), errd.Err())

	canc := Cancelled[int]()
	assert.True(t, canc.IsCancelled())
}

func TestOutcomeValuePanicsWhenNotCompleted(t *testing.T) {
	o := Errored[int](InvalidArgument("bad"))
	assert.Panics(t, func() { o.Value() })
}

func TestOutcomeErrPanicsWhenNotErrored(t *testing.T) {
	o := Completed(1)
	assert.Panics(t, func() { o.Err() })
}

func TestConvertIncompletePreservesState(t *testing.T) {
	errd := Errored[int](InvalidArgument("bad"))
	converted := ConvertIncomplete[string](errd)
	assert.True(t, converted.IsErrored())
	assert.Equal(t, InvalidArgument("bad"), converted.Err())

	canc := Cancelled[int]()
	assert.True(t, ConvertIncomplete[string](canc).IsCancelled())

	inc := Incomplete[int]()
	assert.True(t, ConvertIncomplete[string](inc).IsIncomplete())
}

func TestConvertIncompletePanicsOnCompleted(t *testing.T) {
	assert.Panics(t, func() { ConvertIncomplete[string](Completed(1)) })
}

func TestConvert(t *testing.T) {
	comp := Convert(Completed(5), "fallback")
	assert.True(t, comp.IsCompleted())
	assert.Equal(t, "fallback", comp.Value())

	errd := Convert(Errored[int](InvalidArgument("x")), "fallback")
	assert.True(t, errd.IsErrored())
}
