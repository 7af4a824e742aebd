package value

// Upvalue is a closure's handle onto a variable defined in an enclosing
// function (spec.md §3). It is always accessed through location, which
// starts out pointing into a live stack slot ("open") and is redirected to
// point at the Upvalue's own closed field the moment the enclosing scope
// exits ("closed") -- the classic trick that lets Get/Set stay branch-free
// regardless of state.
//
// NextOpen links Upvalue nodes into the VM's open-upvalue list, kept sorted
// by descending stack address (spec.md §3) so the VM can find an existing
// upvalue for a slot instead of creating a duplicate, and can close a
// contiguous run in one pass when a scope exits.
type Upvalue struct {
	Header
	location *Value
	closed   Value
	NextOpen *Upvalue
}

var (
	_ Value  = (*Upvalue)(nil)
	_ Object = (*Upvalue)(nil)
)

// NewOpenUpvalue returns an Upvalue whose location is slot, a live pointer
// into the VM's value stack.
func NewOpenUpvalue(slot *Value) *Upvalue {
	return &Upvalue{location: slot}
}

func (u *Upvalue) Type() string   { return "upvalue" }
func (u *Upvalue) String() string { return "<upvalue>" }

// Location reports the stack slot this upvalue currently observes, valid
// only while the upvalue is open; used by the VM to compare addresses when
// walking the open list.
func (u *Upvalue) Location() *Value { return u.location }

// IsOpen reports whether this upvalue still observes a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.location != &u.closed }

// Get returns the upvalue's current value, whether open or closed.
func (u *Upvalue) Get() Value { return *u.location }

// Set assigns the upvalue's current value, whether open or closed.
func (u *Upvalue) Set(v Value) { *u.location = v }

// Close copies the referent out of the stack and redirects location to the
// upvalue's own storage, severing the borrow on the now-dead stack slot.
func (u *Upvalue) Close() {
	u.closed = *u.location
	u.location = &u.closed
}

// Closure is a Function prototype plus the vector of Upvalue handles it
// captured at creation time; |Upvalues| == Function.UpvalueCount always
// (spec.md §8).
type Closure struct {
	Header
	Fn       *Function
	Upvalues []*Upvalue
}

var (
	_ Value  = (*Closure)(nil)
	_ Object = (*Closure)(nil)
)

func (c *Closure) Type() string   { return "closure" }
func (c *Closure) String() string { return c.Fn.String() }
