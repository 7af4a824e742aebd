package value_test

import (
	"testing"

	"github.com/marrow-lang/marrow/lang/value"
	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	require.False(t, value.IsTruthy(value.NilValue))
	require.False(t, value.IsTruthy(value.Bool(false)))
	require.True(t, value.IsTruthy(value.Bool(true)))
	require.True(t, value.IsTruthy(value.Number(0)))
	require.True(t, value.IsTruthy(value.Number(1)))
}

func TestEqualNumbersAndBools(t *testing.T) {
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	require.False(t, value.Equal(value.Number(1), value.Bool(true)))
}

func TestStringInterningIsIdentity(t *testing.T) {
	alloc := &value.AllocList{}
	strs := value.NewStrings(alloc)
	a := strs.Intern("hello")
	b := strs.Intern("hello")
	require.True(t, a == b, "equal byte sequences must resolve to the same *String")
	require.True(t, value.Equal(a, b))

	c := strs.Intern("world")
	require.False(t, a == c)
}

func TestNumberStringFormat(t *testing.T) {
	require.Equal(t, "7", value.Number(7).String())
	require.Equal(t, "3.5", value.Number(3.5).String())
}

func TestAllocListTracksEveryObject(t *testing.T) {
	alloc := &value.AllocList{}
	strs := value.NewStrings(alloc)
	strs.Intern("a")
	strs.Intern("b")
	strs.Intern("a") // duplicate, must not add a second allocation

	var count int
	alloc.Each(func(value.Object) { count++ })
	require.Equal(t, 2, count)
}
