package value_test

import (
	"testing"

	"github.com/marrow-lang/marrow/lang/value"
	"github.com/stretchr/testify/require"
)

func TestArrayHeadTailRest(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1), value.Number(2), value.Number(3)})

	head, ok := a.Head()
	require.True(t, ok)
	require.Equal(t, value.Number(1), head)
	require.Equal(t, 2, a.Len())

	rest := value.NewArray([]value.Value{value.Number(2), value.Number(3)}).Rest()
	require.Equal(t, 1, rest.Len())

	tail, ok := a.Tail()
	require.True(t, ok)
	require.Equal(t, value.Number(3), tail)
	require.Equal(t, 1, a.Len())
}

func TestArrayTailZeroesVacatedSlot(t *testing.T) {
	backing := []value.Value{value.Number(1), value.Number(2)}
	a := value.NewArray(backing)
	_, ok := a.Tail()
	require.True(t, ok)
	// The backing array's now-unused slot must not retain the popped value.
	require.Equal(t, value.NilValue, backing[1])
}

func TestArrayOutOfBounds(t *testing.T) {
	a := value.NewArray([]value.Value{value.Number(1)})
	_, ok := a.Get(5)
	require.False(t, ok)
	_, ok = a.Get(-1)
	require.False(t, ok)
}

func TestArrayHeadTailOnEmpty(t *testing.T) {
	a := value.NewArray(nil)
	_, ok := a.Head()
	require.False(t, ok)
	_, ok = a.Tail()
	require.False(t, ok)
}
