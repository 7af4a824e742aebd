package value

import "github.com/dolthub/swiss"

// Dict is a string-keyed mapping to Value (spec.md §3), backed by the same
// open-addressed swiss table the teacher repo's lang/machine/map.go wraps
// for its own Map value -- here keyed by the Go string content of an
// interned *String rather than by Value, since dict keys are constrained to
// strings (spec.md §4.3, "dict key non-string" is a runtime error) and
// keying directly by string content lets remove/GET_PROPERTY work without
// needing the key's *String identity.
type Dict struct {
	Header
	m *swiss.Map[string, Value]
}

var (
	_ Value  = (*Dict)(nil)
	_ Object = (*Dict)(nil)
)

// NewDict returns an empty dict sized for at least size entries.
func NewDict(size int) *Dict {
	if size < 1 {
		size = 1
	}
	return &Dict{m: swiss.NewMap[string, Value](uint32(size))}
}

func (d *Dict) Type() string   { return "dict" }
func (d *Dict) String() string { return "<dict>" }

// Get returns the value stored under key, or (nil, false) if absent.
func (d *Dict) Get(key string) (Value, bool) {
	return d.m.Get(key)
}

// Set stores v under key, overwriting any existing entry (spec.md §4.3).
func (d *Dict) Set(key string, v Value) {
	d.m.Put(key, v)
}

// Delete removes key's entry, if any.
func (d *Dict) Delete(key string) {
	d.m.Delete(key)
}

// Len reports the number of entries.
func (d *Dict) Len() int { return int(d.m.Count()) }
