// Package vm implements the stack-based virtual machine described in
// spec.md §4.3: it executes the bytecode a lang/compiler Compile call
// produces, maintaining a value stack, a call-frame stack, a globals table,
// and the shared string-intern table.
package vm

import (
	"fmt"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/dolthub/swiss"
	"github.com/marrow-lang/marrow/lang/compiler"
	"github.com/marrow-lang/marrow/lang/value"
)

// addr gives a comparable/orderable address for a stack slot pointer. Go
// forbids ordering comparisons (<, >) on pointers directly; the open-upvalue
// list needs to stay sorted by descending stack address (spec.md §3), so we
// compare via uintptr instead, same as the standard library's own pointer-
// address tricks (e.g. runtime/internal atomics).
func addr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

const (
	// DefaultMaxStack bounds the value stack. Unlike a growable slice, a
	// fixed capacity means an Upvalue's raw *Value pointer into the stack
	// never dangles from a reallocation -- the relocation hazard spec.md §5
	// calls out explicitly. Overridable via NewWithLimits.
	DefaultMaxStack = 1 << 16
	// DefaultMaxFrames bounds recursion depth.
	DefaultMaxFrames = 1024
)

// InterpretResult reports how an Interpret call ended (spec.md §7).
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM is one execution context: its own stack, frames, globals, and
// string-intern table, sharable with an importer driving further compiles
// against the same globals (spec.md §4.2, §6).
type VM struct {
	Stdout io.Writer
	Stderr io.Writer

	// MaxStack and MaxFrames record the capacities NewWithLimits
	// preallocated the stack and frame array at; read-only after
	// construction.
	MaxStack  int
	MaxFrames int

	stack []value.Value
	sp    int

	frames     []CallFrame
	frameCount int

	globals *swiss.Map[string, value.Value]
	strings *value.Strings
	alloc   *value.AllocList

	openUpvalues *value.Upvalue
}

// New returns a VM ready to Interpret, with its natives registered and the
// default stack/frame capacities.
func New() *VM {
	return NewWithLimits(DefaultMaxStack, DefaultMaxFrames)
}

// NewWithLimits is like New but preallocates the value stack and frame
// array at the given capacities, for callers honoring the
// MARROW_MAX_STACK/MARROW_MAX_FRAMES environment overrides (internal/maincmd).
// The sizes can't be changed after this call: a fixed capacity is exactly
// what avoids the stack-relocation hazard DefaultMaxStack's comment
// describes.
func NewWithLimits(maxStack, maxFrames int) *VM {
	vm := &VM{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		MaxStack:  maxStack,
		MaxFrames: maxFrames,
		globals:   swiss.NewMap[string, value.Value](64),
		alloc:     &value.AllocList{},
	}
	vm.strings = value.NewStrings(vm.alloc)
	vm.stack = make([]value.Value, vm.MaxStack)
	vm.frames = make([]CallFrame, vm.MaxFrames)
	registerNatives(vm)
	return vm
}

// Strings exposes the shared intern table, for an importer compiling further
// source against this same VM (spec.md §4.2).
func (vm *VM) Strings() *value.Strings { return vm.strings }

// DefineGlobal installs a global binding directly, bypassing OP_DEFINE_GLOBAL
// -- used to seed natives and by the importer to expose an imported module's
// top-level bindings under its module name.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Put(name, v)
}

// Global looks up a top-level binding by name, for an importer copying the
// bindings a module introduced into that module's dict.
func (vm *VM) Global(name string) (value.Value, bool) {
	return vm.globals.Get(name)
}

// GlobalKeys returns a snapshot of every currently-defined global name, used
// by an importer to diff before/after a module's top-level script runs and
// collect exactly the bindings that script introduced.
func (vm *VM) GlobalKeys() []string {
	keys := make([]string, 0, vm.globals.Count())
	vm.globals.Iter(func(k string, _ value.Value) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// Interpret compiles and runs source as a top-level script against this VM's
// existing globals and intern table (spec.md §2). importHook, if non-nil, is
// wired to the compiler so `import` statements in source can pull in further
// modules; see lang/importer.
func (vm *VM) Interpret(source string, importHook compiler.ImportFunc) (value.Value, InterpretResult, error) {
	fn, err := compiler.Compile(source, vm.strings, importHook)
	if err != nil {
		return nil, InterpretCompileError, err
	}
	return vm.RunFunction(fn)
}

// RunFunction executes an already-compiled top-level script function
// against this VM's existing stack and globals. Interpret is the thin
// compile-then-run wrapper around this; lang/importer calls it directly
// since it compiles each imported module itself (so the same ImportFunc
// closure threads through nested imports).
func (vm *VM) RunFunction(fn *value.Function) (value.Value, InterpretResult, error) {
	closure := &value.Closure{Fn: fn}
	vm.alloc.Track(closure)
	vm.push(closure)
	if err := vm.call(closure, 0); err != nil {
		vm.pop()
		return nil, InterpretRuntimeError, err
	}

	result, err := vm.run()
	if err != nil {
		vm.reportRuntimeError(err)
		vm.resetStack()
		return nil, InterpretRuntimeError, err
	}
	return result, InterpretOK, nil
}

// run executes frames until the outermost call returns, implementing the
// opcode table of spec.md §4.3.
func (vm *VM) run() (value.Value, error) {
	frame := &vm.frames[vm.frameCount-1]

	for {
		op := value.OpCode(frame.readByte())

		switch op {
		case value.OP_CONSTANT:
			vm.push(frame.readConstant())
		case value.OP_CONSTANT_LONG:
			vm.push(frame.readConstantLong())
		case value.OP_NIL:
			vm.push(value.NilValue)
		case value.OP_TRUE:
			vm.push(value.Bool(true))
		case value.OP_FALSE:
			vm.push(value.Bool(false))
		case value.OP_POP:
			vm.pop()

		case value.OP_GET_LOCAL:
			slot := frame.readByte()
			vm.push(vm.stack[frame.base+int(slot)])
		case value.OP_SET_LOCAL:
			slot := frame.readByte()
			vm.stack[frame.base+int(slot)] = vm.peek(0)

		case value.OP_GET_GLOBAL:
			name := frame.readString()
			v, ok := vm.globals.Get(name.Go())
			if !ok {
				return nil, vm.runtimeErrorf("Undefined variable '%s'.", name.Go())
			}
			vm.push(v)
		case value.OP_DEFINE_GLOBAL:
			name := frame.readString()
			vm.globals.Put(name.Go(), vm.peek(0))
			vm.pop()
		case value.OP_SET_GLOBAL:
			name := frame.readString()
			if _, ok := vm.globals.Get(name.Go()); !ok {
				return nil, vm.runtimeErrorf("Undefined variable '%s'.", name.Go())
			}
			vm.globals.Put(name.Go(), vm.peek(0))

		case value.OP_GET_UPVALUE:
			slot := frame.readByte()
			vm.push(frame.closure.Upvalues[slot].Get())
		case value.OP_SET_UPVALUE:
			slot := frame.readByte()
			frame.closure.Upvalues[slot].Set(vm.peek(0))
		case value.OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case value.OP_GET_PROPERTY:
			if err := vm.getProperty(frame); err != nil {
				return nil, err
			}
		case value.OP_SET_PROPERTY:
			if err := vm.setProperty(frame); err != nil {
				return nil, err
			}
		case value.OP_GET_SUPER:
			if err := vm.getSuper(frame); err != nil {
				return nil, err
			}

		case value.OP_EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OP_GREATER:
			if err := vm.numericCompare(func(a, b float64) bool { return a > b }); err != nil {
				return nil, err
			}
		case value.OP_LESS:
			if err := vm.numericCompare(func(a, b float64) bool { return a < b }); err != nil {
				return nil, err
			}
		case value.OP_ADD:
			if err := vm.add(); err != nil {
				return nil, err
			}
		case value.OP_SUBTRACT:
			if err := vm.numericBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return nil, err
			}
		case value.OP_MULTIPLY:
			if err := vm.numericBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return nil, err
			}
		case value.OP_DIVIDE:
			if err := vm.numericBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return nil, err
			}
		case value.OP_MODULO:
			if err := vm.numericBinary(math.Mod); err != nil {
				return nil, err
			}
		case value.OP_NEGATE:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return nil, vm.runtimeErrorf("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)
		case value.OP_NOT:
			vm.push(value.Bool(!value.IsTruthy(vm.pop())))

		case value.OP_BITWISE_AND:
			if err := vm.bitwiseBinary(func(a, b int64) int64 { return a & b }); err != nil {
				return nil, err
			}
		case value.OP_BITWISE_OR:
			if err := vm.bitwiseBinary(func(a, b int64) int64 { return a | b }); err != nil {
				return nil, err
			}
		case value.OP_BITWISE_XOR:
			if err := vm.bitwiseBinary(func(a, b int64) int64 { return a ^ b }); err != nil {
				return nil, err
			}
		case value.OP_BITWISE_LS:
			if err := vm.bitwiseBinary(func(a, b int64) int64 { return a << uint(b) }); err != nil {
				return nil, err
			}
		case value.OP_BITWISE_RS:
			if err := vm.bitwiseBinary(func(a, b int64) int64 { return a >> uint(b) }); err != nil {
				return nil, err
			}
		case value.OP_BITWISE_NOT:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return nil, vm.runtimeErrorf("Operand must be a number.")
			}
			vm.pop()
			vm.push(value.Number(^int64(n)))

		case value.OP_JUMP:
			offset := frame.readU16()
			frame.ip += offset
		case value.OP_JUMP_IF_FALSE:
			offset := frame.readU16()
			if !value.IsTruthy(vm.peek(0)) {
				frame.ip += offset
			}
		case value.OP_LOOP:
			offset := frame.readU16()
			frame.ip -= offset

		case value.OP_CALL:
			argCount := int(frame.readByte())
			callee := vm.peek(argCount)
			if err := vm.callValue(callee, argCount); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]
		case value.OP_INVOKE:
			name := frame.readString()
			argCount := int(frame.readByte())
			if err := vm.invoke(name.Go(), argCount); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]
		case value.OP_SUPER_INVOKE:
			name := frame.readString()
			argCount := int(frame.readByte())
			superclass, ok := vm.pop().(*value.Class)
			if !ok {
				return nil, vm.runtimeErrorf("Superclass must be a class.")
			}
			if err := vm.invokeFromClass(superclass, name.Go(), argCount); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OP_RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			returningFn := frame.closure.Fn
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return result, nil
			}
			if rt := returningFn.ReturnType; rt != value.RETURN_NONE && !rt.Satisfies(result) {
				return nil, vm.runtimeErrorf("Function must return a value of type %s.", rt)
			}
			vm.sp = frame.base
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case value.OP_CLOSURE:
			fn := frame.readConstant().(*value.Function)
			closure := &value.Closure{Fn: fn, Upvalues: make([]*value.Upvalue, fn.UpvalueCount)}
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[frame.base+int(index)])
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.alloc.Track(closure)
			vm.push(closure)

		case value.OP_CLASS:
			name := frame.readString()
			class := value.NewClass(name)
			vm.alloc.Track(class)
			vm.push(class)
		case value.OP_INHERIT:
			superclass, ok := vm.peek(1).(*value.Class)
			if !ok {
				return nil, vm.runtimeErrorf("Superclass must be a class.")
			}
			subclass := vm.peek(0).(*value.Class)
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			vm.pop()
		case value.OP_METHOD:
			name := frame.readString()
			method := vm.peek(0).(*value.Closure)
			class := vm.peek(1).(*value.Class)
			class.Methods[name.Go()] = method
			vm.pop()

		case value.OP_ARRAY:
			n := int(frame.readByte())
			elems := make([]value.Value, n)
			copy(elems, vm.stack[vm.sp-n:vm.sp])
			vm.sp -= n
			arr := value.NewArray(elems)
			vm.alloc.Track(arr)
			vm.push(arr)
		case value.OP_DICT:
			if err := vm.makeDict(frame); err != nil {
				return nil, err
			}
		case value.OP_OBJECT_GET:
			if err := vm.objectGet(); err != nil {
				return nil, err
			}
		case value.OP_OBJECT_SET:
			if err := vm.objectSet(); err != nil {
				return nil, err
			}
		case value.OP_OUT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		default:
			return nil, vm.runtimeErrorf("Unknown opcode %d.", byte(op))
		}
	}
}

func (vm *VM) numericBinary(f func(a, b float64) float64) error {
	b, bok := vm.peek(0).(value.Number)
	a, aok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(f(float64(a), float64(b))))
	return nil
}

func (vm *VM) numericCompare(f func(a, b float64) bool) error {
	b, bok := vm.peek(0).(value.Number)
	a, aok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Bool(f(float64(a), float64(b))))
	return nil
}

// bitwiseBinary truncates operands to int64 before applying f: bitwise
// operators work at a 64-bit width (spec.md §9 leaves the width to the
// implementation, requiring only "at least 32 bits").
func (vm *VM) bitwiseBinary(f func(a, b int64) int64) error {
	b, bok := vm.peek(0).(value.Number)
	a, aok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(f(int64(a), int64(b))))
	return nil
}

// add implements OP_ADD's overload: number+number or string+string
// (spec.md §4.3); anything else is a type error.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return vm.runtimeErrorf("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(av + bv)
		return nil
	case *value.String:
		bv, ok := b.(*value.String)
		if !ok {
			return vm.runtimeErrorf("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(vm.strings.Intern(av.Go() + bv.Go()))
		return nil
	default:
		return vm.runtimeErrorf("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) getProperty(frame *CallFrame) error {
	name := frame.readString()
	switch obj := vm.peek(0).(type) {
	case *value.Instance:
		if v, ok := obj.Fields[name.Go()]; ok {
			vm.stack[vm.sp-1] = v
			return nil
		}
		method, ok := obj.Class.Method(name.Go())
		if !ok {
			return vm.runtimeErrorf("Undefined property '%s'.", name.Go())
		}
		bound := &value.BoundMethod{Receiver: obj, Method: method}
		vm.alloc.Track(bound)
		vm.stack[vm.sp-1] = bound
	case *value.Dict:
		v, ok := obj.Get(name.Go())
		if !ok {
			v = value.NilValue
		}
		vm.stack[vm.sp-1] = v
	default:
		return vm.runtimeErrorf("Only instances and dicts have properties.")
	}
	return nil
}

func (vm *VM) setProperty(frame *CallFrame) error {
	name := frame.readString()
	val := vm.peek(0)
	switch obj := vm.peek(1).(type) {
	case *value.Instance:
		obj.Fields[name.Go()] = val
	case *value.Dict:
		obj.Set(name.Go(), val)
	default:
		return vm.runtimeErrorf("Only instances and dicts have settable properties.")
	}
	vm.stack[vm.sp-2] = val
	vm.sp--
	return nil
}

func (vm *VM) getSuper(frame *CallFrame) error {
	name := frame.readString()
	superclass, ok := vm.pop().(*value.Class)
	if !ok {
		return vm.runtimeErrorf("Superclass must be a class.")
	}
	instance := vm.peek(0)
	method, ok := superclass.Method(name.Go())
	if !ok {
		return vm.runtimeErrorf("Undefined property '%s'.", name.Go())
	}
	bound := &value.BoundMethod{Receiver: instance, Method: method}
	vm.alloc.Track(bound)
	vm.stack[vm.sp-1] = bound
	return nil
}

// makeDict consumes 2n stack slots (alternating key, value, value popped
// first per chunk.go's stack picture for OP_DICT) and builds a Dict,
// assigning pairs in source order so that, per spec.md §4.3, a duplicate key
// later in the literal overwrites an earlier one.
func (vm *VM) makeDict(frame *CallFrame) error {
	n := int(frame.readByte())
	keys := make([]*value.String, n)
	vals := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v := vm.pop()
		k := vm.pop()
		ks, ok := k.(*value.String)
		if !ok {
			return vm.runtimeErrorf("Dict keys must be strings.")
		}
		keys[i] = ks
		vals[i] = v
	}
	dict := value.NewDict(n)
	for i := 0; i < n; i++ {
		dict.Set(keys[i].Go(), vals[i])
	}
	vm.alloc.Track(dict)
	vm.push(dict)
	return nil
}

func (vm *VM) objectGet() error {
	key := vm.pop()
	obj := vm.pop()
	switch o := obj.(type) {
	case *value.Array:
		idx, ok := key.(value.Number)
		if !ok {
			return vm.runtimeErrorf("Array index must be a number.")
		}
		v, ok := o.Get(int(idx))
		if !ok {
			return vm.runtimeErrorf("Array index out of bounds.")
		}
		vm.push(v)
	case *value.Dict:
		ks, ok := key.(*value.String)
		if !ok {
			return vm.runtimeErrorf("Dict key must be a string.")
		}
		v, ok := o.Get(ks.Go())
		if !ok {
			v = value.NilValue
		}
		vm.push(v)
	default:
		return vm.runtimeErrorf("Can only index arrays and dicts.")
	}
	return nil
}

func (vm *VM) objectSet() error {
	val := vm.pop()
	key := vm.pop()
	obj := vm.pop()
	switch o := obj.(type) {
	case *value.Array:
		idx, ok := key.(value.Number)
		if !ok {
			return vm.runtimeErrorf("Array index must be a number.")
		}
		if !o.Set(int(idx), val) {
			return vm.runtimeErrorf("Array index out of bounds.")
		}
	case *value.Dict:
		ks, ok := key.(*value.String)
		if !ok {
			return vm.runtimeErrorf("Dict key must be a string.")
		}
		o.Set(ks.Go(), val)
	default:
		return vm.runtimeErrorf("Can only index arrays and dicts.")
	}
	vm.push(val)
	return nil
}

// captureUpvalue returns an existing open Upvalue for slot, or creates one,
// keeping the open list sorted by descending stack address (spec.md §3, §4.3
// "CLOSURE").
func (vm *VM) captureUpvalue(slot *value.Value) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && addr(cur.Location()) > addr(slot) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location() == slot {
		return cur
	}

	created := value.NewOpenUpvalue(slot)
	vm.alloc.Track(created)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose slot is at or above
// stackIndex, hoisting its value off the stack (spec.md §3).
func (vm *VM) closeUpvalues(stackIndex int) {
	threshold := &vm.stack[stackIndex]
	for vm.openUpvalues != nil && addr(vm.openUpvalues.Location()) >= addr(threshold) {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.NextOpen
	}
}

// callValue dispatches OP_CALL's callee by dynamic type (spec.md §4.3):
// closures call directly, classes construct an Instance and run `init` if
// present, bound methods rebind the receiver into slot 0, and natives invoke
// synchronously without a frame.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case *value.Closure:
		return vm.call(c, argCount)
	case *value.Class:
		inst := value.NewInstance(c)
		vm.alloc.Track(inst)
		vm.stack[vm.sp-argCount-1] = inst
		if init, ok := c.Method(value.InitName); ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeErrorf("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		vm.stack[vm.sp-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)
	case *value.Native:
		args := vm.stack[vm.sp-argCount : vm.sp]
		result, ok := c.Fn(argCount, args)
		vm.sp -= argCount + 1
		if !ok {
			msg := "native function call failed"
			if s, isStr := result.(*value.String); isStr {
				msg = s.Go()
			}
			return vm.runtimeErrorf("%s", msg)
		}
		vm.push(result)
		return nil
	default:
		return vm.runtimeErrorf("Can only call functions and classes.")
	}
}

func (vm *VM) call(closure *value.Closure, argCount int) error {
	if argCount != closure.Fn.Arity {
		return vm.runtimeErrorf("Expected %d arguments but got %d.", closure.Fn.Arity, argCount)
	}
	if vm.frameCount == len(vm.frames) {
		return vm.runtimeErrorf("Stack overflow.")
	}
	frame := &vm.frames[vm.frameCount]
	frame.closure = closure
	frame.ip = 0
	frame.base = vm.sp - argCount - 1
	vm.frameCount++
	return nil
}

func (vm *VM) invoke(name string, argCount int) error {
	receiver := vm.peek(argCount)
	inst, ok := receiver.(*value.Instance)
	if !ok {
		if d, ok := receiver.(*value.Dict); ok {
			v, ok := d.Get(name)
			if !ok {
				return vm.runtimeErrorf("Undefined property '%s'.", name)
			}
			vm.stack[vm.sp-argCount-1] = v
			return vm.callValue(v, argCount)
		}
		return vm.runtimeErrorf("Only instances have methods.")
	}
	if v, ok := inst.Fields[name]; ok {
		vm.stack[vm.sp-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	return vm.invokeFromClass(inst.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *value.Class, name string, argCount int) error {
	method, ok := class.Method(name)
	if !ok {
		return vm.runtimeErrorf("Undefined property '%s'.", name)
	}
	return vm.call(method, argCount)
}

