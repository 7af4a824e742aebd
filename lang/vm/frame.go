package vm

import "github.com/marrow-lang/marrow/lang/value"

// CallFrame records one active invocation of a Closure (spec.md §3): the
// closure being executed, its instruction pointer, and the base index into
// the VM's value stack where its locals begin (slot 0 is the callee itself,
// or `this` for methods/initializers).
type CallFrame struct {
	closure *value.Closure
	ip      int
	base    int
}

func (f *CallFrame) readByte() byte {
	b := f.closure.Fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *CallFrame) readU16() int {
	hi := f.readByte()
	lo := f.readByte()
	return int(hi)<<8 | int(lo)
}

func (f *CallFrame) readConstant() value.Value {
	return f.closure.Fn.Chunk.Constants[f.readByte()]
}

func (f *CallFrame) readConstantLong() value.Value {
	return f.closure.Fn.Chunk.Constants[f.readU16()]
}

func (f *CallFrame) readString() *value.String {
	return f.readConstant().(*value.String)
}

// line returns the source line of the instruction just executed, for
// backtraces and runtime error messages.
func (f *CallFrame) line() int {
	return f.closure.Fn.Chunk.Line(f.ip - 1)
}

func (f *CallFrame) funcName() string {
	if f.closure.Fn.Name == nil {
		return "script"
	}
	return f.closure.Fn.Name.Go()
}
