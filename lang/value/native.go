package value

// NativeFn is the native function ABI (spec.md §6): given the argument
// count and a slice of exactly that many arguments, return a result. A
// native signals a failure by returning ok=false; the VM (vm.callValue) then
// raises a runtime error whose message is the returned value if that is a
// *String, or a generic message otherwise.
type NativeFn func(argc int, args []Value) (Value, bool)

// Native borrows a non-owning Go function pointer (spec.md §5): the VM does
// not manage the native function's lifetime, only the wrapper Value that
// names it.
type Native struct {
	Header
	Name string
	Fn   NativeFn
}

var (
	_ Value  = (*Native)(nil)
	_ Object = (*Native)(nil)
)

func (n *Native) Type() string   { return "native" }
func (n *Native) String() string { return "<native " + n.Name + ">" }
