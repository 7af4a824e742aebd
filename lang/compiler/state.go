package compiler

import "github.com/marrow-lang/marrow/lang/value"

// FuncType distinguishes the kind of function currently being compiled; it
// drives slot-0 reservation, the implicit-`this`/`super` behavior, and the
// initializer's implicit-return-the-instance rule (spec.md §4.2).
type FuncType uint8

const (
	TYPE_SCRIPT FuncType = iota
	TYPE_FUNCTION
	TYPE_METHOD
	TYPE_INITIALIZER
)

// maxLocals and maxUpvalues are the fixed capacities named in spec.md §4.2
// ("a fixed-size array of up to 256 locals" / "up to 256 upvalue
// descriptors").
const (
	maxLocals   = 256
	maxUpvalues = 256
)

// exprKind is a best-effort static classification of the value an
// expression just pushed, tracked alongside bytecode emission so the
// return-type checker (spec.md §4.2, §9) can tell a string constant from a
// numeric one -- something the last-opcode-alone algorithm in
// original_source/ cannot do. It is
// reset to exprUnknown by any expression form not explicitly tracked, which
// makes the check permissive rather than falsely rejecting valid code.
type exprKind uint8

const (
	exprUnknown exprKind = iota
	exprNumber
	exprString
	exprBool
)

// local is a compile-time local-variable binding. depth == -1 marks a local
// whose initializer has not finished running yet (spec.md §4.2,
// "read in own initializer" check).
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueRef is the compile-time record of one upvalue a function captures:
// either a local slot of the immediately enclosing function (isLocal) or an
// upvalue already captured by that enclosing function.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcState holds the compiler state for a single function body, linked to
// its lexically enclosing function via enclosing (spec.md §4.2: "a stack of
// per-function compiler contexts, linked via enclosing").
type funcState struct {
	enclosing *funcState

	fn       *value.Function
	fnType   FuncType
	lastExpr exprKind

	locals     []local
	scopeDepth int

	upvalues []upvalueRef
}

func newFuncState(enclosing *funcState, fnType FuncType, name *value.String) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		fnType:    fnType,
		fn:        &value.Function{Name: name},
	}
	// Slot 0 is reserved: unnamed for FUNCTION/SCRIPT, "this" for
	// METHOD/INITIALIZER (spec.md §4.2).
	slot0 := local{depth: 0}
	if fnType == TYPE_METHOD || fnType == TYPE_INITIALIZER {
		slot0.name = "this"
	}
	fs.locals = append(fs.locals, slot0)
	return fs
}

// classState holds the compiler state for a class body currently being
// compiled, linked via enclosing to support nested classes (spec.md §4.2).
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}
