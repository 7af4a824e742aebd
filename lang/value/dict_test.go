package value_test

import (
	"testing"

	"github.com/marrow-lang/marrow/lang/value"
	"github.com/stretchr/testify/require"
)

func TestDictSetGetDelete(t *testing.T) {
	d := value.NewDict(0)
	d.Set("x", value.Number(1))

	v, ok := d.Get("x")
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)

	d.Set("x", value.Number(2)) // overwrite
	v, ok = d.Get("x")
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)

	d.Delete("x")
	_, ok = d.Get("x")
	require.False(t, ok)
}

func TestDictLen(t *testing.T) {
	d := value.NewDict(0)
	require.Equal(t, 0, d.Len())
	d.Set("a", value.NilValue)
	d.Set("b", value.NilValue)
	require.Equal(t, 2, d.Len())
}
