package value

// InitName is the name of the initializer method: the compiler compiles a
// method with this name as an initializer, and the VM looks it up in the
// class's method table on OP_CALL of a Class (spec.md §4.3).
const InitName = "init"

// Class is a name plus a mapping from method name to the Closure that
// implements it (spec.md §3).
type Class struct {
	Header
	Name    *String
	Methods map[string]*Closure
}

var (
	_ Value  = (*Class)(nil)
	_ Object = (*Class)(nil)
)

func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: make(map[string]*Closure)}
}

func (c *Class) Type() string   { return "class" }
func (c *Class) String() string { return "<class " + c.Name.Go() + ">" }

// Method looks up name on the class, walking no further than this class:
// inheritance is realized at compile/class-definition time by OP_INHERIT
// copying the superclass's method table into the subclass (spec.md §4.2),
// so a single map lookup here sees inherited methods too.
func (c *Class) Method(name string) (*Closure, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// Instance is a reference to its Class plus a per-instance mapping from
// field name to Value. Fields come into existence on first assignment
// (spec.md §3); a field name is never present unless a SET_PROPERTY wrote
// it (spec.md §8).
type Instance struct {
	Header
	Class  *Class
	Fields map[string]Value
}

var (
	_ Value  = (*Instance)(nil)
	_ Object = (*Instance)(nil)
)

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (i *Instance) Type() string   { return "instance" }
func (i *Instance) String() string { return "<instance " + i.Class.Name.Go() + ">" }

// BoundMethod pre-attaches a method to a receiver; created on property
// access when the name resolves to a method rather than a field (spec.md
// §3, §4.3).
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

var (
	_ Value  = (*BoundMethod)(nil)
	_ Object = (*BoundMethod)(nil)
)

func (b *BoundMethod) Type() string   { return "bound method" }
func (b *BoundMethod) String() string { return b.Method.String() }
