// Package value implements the runtime value representation described in
// spec.md §3: a tagged sum over {nil, bool, number, object reference}, the
// object variants built on it, and the per-function Chunk (bytecode +
// constants + line table) that a Function prototype owns.
//
// Go's interface values already carry a type tag alongside the payload, so
// the "tagged sum" is realized directly as the Value interface rather than
// as a hand-rolled discriminated union or NaN-boxed word; spec.md §9 permits
// this ("NaN-boxing is permissible as an optimization but not required").
package value

import "strconv"

// Value is implemented by every value the VM can hold on its stack, store in
// a local/global/upvalue slot, or place in a constant pool.
type Value interface {
	// Type returns a short tag naming the value's runtime type, used in
	// error messages ("expected number, got string").
	Type() string
	// String renders the value the way OUT would print it: numbers as their
	// shortest round-trip decimal, strings without quotes, booleans as
	// true/false, nil as nil, objects by a short tag.
	String() string
}

// Nil is the language's singular nil value.
type Nil struct{}

func (Nil) Type() string   { return "nil" }
func (Nil) String() string { return "nil" }

// NilValue is the canonical Nil instance; every nil in the system is this
// same value; there is no meaningful distinct identity for nil.
var NilValue Value = Nil{}

// Bool is the boolean value type.
type Bool bool

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is the language's sole numeric type: an IEEE-754 double, per
// spec.md §1's non-goal of "no numeric tower beyond IEEE-754 doubles".
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	return formatNumber(float64(n))
}

func formatNumber(f float64) string {
	// Shortest round-trip decimal representation (spec.md §4.3, OUT).
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy implements the language's truthiness rule (spec.md §4.3, NOT):
// nil and false are falsey, everything else -- including 0 and the empty
// string -- is truthy.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements value equality. Numbers and bools compare by value; nil
// equals only nil; objects other than strings compare by identity (pointer
// equality), and strings -- being interned -- inherit identity equality for
// free (spec.md §3).
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bb, ok := b.(Number)
		return ok && a == bb
	case *String:
		bb, ok := b.(*String)
		return ok && a == bb
	default:
		return a == b
	}
}

// Object is implemented by every heap-allocated value kind. Objects are
// linked into a single intrusive list at creation (spec.md §5) so that an
// external sweeper -- not implemented here, per spec.md §1's GC non-goal --
// could walk every live allocation at teardown.
type Object interface {
	Value
	objNext() Object
	objSetNext(Object)
}

// Header is embedded by every Object implementation to provide the
// intrusive-list link.
type Header struct {
	next Object
}

func (h *Header) objNext() Object     { return h.next }
func (h *Header) objSetNext(o Object) { h.next = o }

// AllocList is the VM-owned intrusive list of every heap object created
// during a run, used only so an external sweeper has something to walk;
// this package performs no collection itself.
type AllocList struct {
	head Object
}

// Track links o at the head of the list.
func (l *AllocList) Track(o Object) {
	o.objSetNext(l.head)
	l.head = o
}

// Each calls fn once for every tracked object, head to tail.
func (l *AllocList) Each(fn func(Object)) {
	for o := l.head; o != nil; o = o.objNext() {
		fn(o)
	}
}
