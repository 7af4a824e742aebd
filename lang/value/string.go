package value

import "github.com/dolthub/swiss"

// String is a length-prefixed (via Go's native string header), UTF-8-agnostic
// byte sequence. Strings are interned by the Strings table below: equal byte
// sequences resolve to the same *String, so equality on strings is pointer
// identity (spec.md §3).
type String struct {
	Header
	s string
}

var (
	_ Value  = (*String)(nil)
	_ Object = (*String)(nil)
)

func (s *String) Type() string   { return "string" }
func (s *String) String() string { return s.s }

// Go returns the underlying Go string.
func (s *String) Go() string { return s.s }

// Len returns the byte length of the string.
func (s *String) Len() int { return len(s.s) }

// Strings is the VM's interning table: a string-keyed, open-addressed hash
// table with the load factor and collision behavior of dolthub/swiss,
// mirrored here exactly as lang/machine/map.go in the teacher repo wraps the
// same swiss.Map type for its own Map value -- here it is keyed by the raw
// Go string (compared by bytes, spec.md §9's "FNV-1a-class hashing" lookup
// path) rather than by Value, since interning must happen before identity
// comparison is even possible.
type Strings struct {
	m     *swiss.Map[string, *String]
	alloc *AllocList
}

// NewStrings returns an empty intern table that tracks every string object
// it creates in alloc.
func NewStrings(alloc *AllocList) *Strings {
	return &Strings{m: swiss.NewMap[string, *String](64), alloc: alloc}
}

// Intern returns the canonical *String for s, allocating and tracking a new
// one the first time s is seen.
func (t *Strings) Intern(s string) *String {
	if existing, ok := t.m.Get(s); ok {
		return existing
	}
	obj := &String{s: s}
	t.m.Put(s, obj)
	t.alloc.Track(obj)
	return obj
}

// Lookup reports whether s has already been interned, without creating it.
func (t *Strings) Lookup(s string) (*String, bool) {
	return t.m.Get(s)
}
