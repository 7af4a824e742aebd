package value

// ReturnType is the set of declared return-type annotations a function may
// carry (spec.md §3, §4.2). NONE means no annotation was written; VOID means
// the function was annotated `@void`.
type ReturnType uint8

const (
	RETURN_NONE ReturnType = iota
	RETURN_VOID
	RETURN_INT
	RETURN_FLOAT
	RETURN_STRING
	RETURN_BOOL
)

func (rt ReturnType) String() string {
	switch rt {
	case RETURN_VOID:
		return "void"
	case RETURN_INT:
		return "int"
	case RETURN_FLOAT:
		return "float"
	case RETURN_STRING:
		return "str"
	case RETURN_BOOL:
		return "bool"
	default:
		return "none"
	}
}

// ReturnTypeByName maps the return-type annotation tokens legal after `@`
// (spec.md §6) to a ReturnType; it reports ok=false for anything else.
func ReturnTypeByName(name string) (ReturnType, bool) {
	switch name {
	case "void":
		return RETURN_VOID, true
	case "int":
		return RETURN_INT, true
	case "float":
		return RETURN_FLOAT, true
	case "str":
		return RETURN_STRING, true
	case "bool":
		return RETURN_BOOL, true
	default:
		return RETURN_NONE, false
	}
}

// Satisfies reports whether a dynamic result value is compatible with rt,
// the authoritative check performed at OP_RETURN (spec.md §4.2, §9).
// RETURN_NONE and RETURN_VOID accept anything (VOID's return value is
// unobserved by callers; NONE means no check was requested).
func (rt ReturnType) Satisfies(v Value) bool {
	switch rt {
	case RETURN_NONE, RETURN_VOID:
		return true
	case RETURN_INT, RETURN_FLOAT:
		_, ok := v.(Number)
		return ok
	case RETURN_STRING:
		_, ok := v.(*String)
		return ok
	case RETURN_BOOL:
		_, ok := v.(Bool)
		return ok
	default:
		return true
	}
}

// UpvalueDesc describes one upvalue a Function captures from its enclosing
// function, recorded at compile time (spec.md §4.2).
type UpvalueDesc struct {
	Index   uint8
	IsLocal bool
}

// Function is a function prototype: the static, compiled form shared by
// every Closure created from it (spec.md §3).
type Function struct {
	Header
	Name         *String // nullable: nil for the top-level script function
	Arity        int
	UpvalueCount int
	ReturnType   ReturnType
	Chunk        Chunk
	Upvalues     []UpvalueDesc
}

var (
	_ Value  = (*Function)(nil)
	_ Object = (*Function)(nil)
)

func (f *Function) Type() string { return "function" }
func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Go() + ">"
}
