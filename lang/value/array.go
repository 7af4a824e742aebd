package value

import "golang.org/x/exp/slices"

// Array is a contiguous, growable sequence of Value (spec.md §3).
type Array struct {
	Header
	Elems []Value
}

var (
	_ Value  = (*Array)(nil)
	_ Object = (*Array)(nil)
)

func NewArray(elems []Value) *Array {
	return &Array{Elems: elems}
}

func (a *Array) Type() string   { return "array" }
func (a *Array) String() string { return "<array>" }

func (a *Array) Len() int { return len(a.Elems) }

// Get returns element i, reporting ok=false if i is out of bounds. Negative
// indices are rejected rather than wrapped (SPEC_FULL.md §4, following
// original_source/'s behavior).
func (a *Array) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.Elems) {
		return nil, false
	}
	return a.Elems[i], true
}

// Set overwrites element i, reporting ok=false if i is out of bounds.
func (a *Array) Set(i int, v Value) bool {
	if i < 0 || i >= len(a.Elems) {
		return false
	}
	a.Elems[i] = v
	return true
}

// Prepend inserts v at index 0, shifting every other element up by one.
func (a *Array) Prepend(v Value) {
	a.Elems = slices.Insert(a.Elems, 0, v)
}

// Append adds v as the new last element.
func (a *Array) Append(v Value) {
	a.Elems = append(a.Elems, v)
}

// Head removes and returns element 0, shifting every remaining element down
// by one. ok is false for an empty array.
func (a *Array) Head() (Value, bool) {
	if len(a.Elems) == 0 {
		return nil, false
	}
	v := a.Elems[0]
	a.Elems = slices.Delete(a.Elems, 0, 1)
	return v, true
}

// Tail removes and returns the last element. ok is false for an empty
// array. The vacated slot is zeroed before the backing slice shrinks, so no
// stale reference to the popped value survives in the backing array
// (SPEC_FULL.md §5, resolving spec.md §9's open question on arrayTail).
func (a *Array) Tail() (Value, bool) {
	n := len(a.Elems)
	if n == 0 {
		return nil, false
	}
	v := a.Elems[n-1]
	a.Elems[n-1] = NilValue
	a.Elems = a.Elems[:n-1]
	return v, true
}

// Rest returns a new Array holding elements 1..n-1 of a, leaving a itself
// unmodified.
func (a *Array) Rest() *Array {
	if len(a.Elems) <= 1 {
		return NewArray(nil)
	}
	rest := make([]Value, len(a.Elems)-1)
	copy(rest, a.Elems[1:])
	return NewArray(rest)
}
