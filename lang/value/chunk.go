package value

// OpCode is a single bytecode instruction's operation. Opcodes are one byte,
// some with inline operands of their own, per spec.md §4.3.
type OpCode uint8

// "x CONSTANT i8 -> x v" is a stack picture describing the state of the
// stack before and after execution of the instruction, in the style the
// pack's bytecode-table comments use (see e.g. lang/compiler/opcode.go in
// the teacher repo, or kristofer-smog/pkg/bytecode).
const ( //nolint:revive
	OP_CONSTANT      OpCode = iota // -            CONSTANT<u8>       v
	OP_CONSTANT_LONG               // -            CONSTANT_LONG<u16> v
	OP_NIL                         // -            NIL                nil
	OP_TRUE                        // -            TRUE               true
	OP_FALSE                       // -            FALSE              false
	OP_POP                         // v            POP                -

	OP_GET_LOCAL    // -            GET_LOCAL<u8>     v
	OP_SET_LOCAL    // v            SET_LOCAL<u8>     v
	OP_GET_GLOBAL   // -            GET_GLOBAL<s>     v
	OP_DEFINE_GLOBAL // v          DEFINE_GLOBAL<s>   -
	OP_SET_GLOBAL   // v            SET_GLOBAL<s>     v
	OP_GET_UPVALUE  // -            GET_UPVALUE<u8>   v
	OP_SET_UPVALUE  // v            SET_UPVALUE<u8>   v
	OP_CLOSE_UPVALUE // v          CLOSE_UPVALUE      -

	OP_GET_PROPERTY // inst        GET_PROPERTY<s>    v
	OP_SET_PROPERTY // inst v      SET_PROPERTY<s>    v
	OP_GET_SUPER    // inst super  GET_SUPER<s>       bound

	OP_EQUAL
	OP_GREATER
	OP_LESS
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_MODULO
	OP_NEGATE
	OP_NOT

	OP_BITWISE_AND
	OP_BITWISE_OR
	OP_BITWISE_XOR
	OP_BITWISE_LS
	OP_BITWISE_RS
	OP_BITWISE_NOT

	OP_JUMP          // -            JUMP<u16>          -            (unconditional)
	OP_JUMP_IF_FALSE // v            JUMP_IF_FALSE<u16> v            (does not pop)
	OP_LOOP          // -            LOOP<u16>          -            (backward jump)

	OP_CALL         // fn a1..an    CALL<u8 n>         result
	OP_INVOKE       // recv a1..an  INVOKE<s,u8 n>     result
	OP_SUPER_INVOKE // recv a1..an super SUPER_INVOKE<s,u8 n> result
	OP_RETURN       // v            RETURN             -            (unwinds frame)

	OP_CLOSURE // -                 CLOSURE<c,[isLocal,index]*> closure
	OP_CLASS   // -                 CLASS<s>                    class
	OP_INHERIT // super sub         INHERIT                     super
	OP_METHOD  // class fn          METHOD<s>                   class

	OP_ARRAY      // v1..vn        ARRAY<u8 n>        array
	OP_DICT       // k1 v1..kn vn  DICT<u8 n>         dict
	OP_OBJECT_GET // obj key       OBJECT_GET         v
	OP_OBJECT_SET // obj key v     OBJECT_SET         v
	OP_OUT        // v             OUT                -
)

var opcodeNames = [...]string{
	OP_CONSTANT:       "constant",
	OP_CONSTANT_LONG:  "constant_long",
	OP_NIL:            "nil",
	OP_TRUE:           "true",
	OP_FALSE:          "false",
	OP_POP:            "pop",
	OP_GET_LOCAL:      "get_local",
	OP_SET_LOCAL:      "set_local",
	OP_GET_GLOBAL:     "get_global",
	OP_DEFINE_GLOBAL:  "define_global",
	OP_SET_GLOBAL:     "set_global",
	OP_GET_UPVALUE:    "get_upvalue",
	OP_SET_UPVALUE:    "set_upvalue",
	OP_CLOSE_UPVALUE:  "close_upvalue",
	OP_GET_PROPERTY:   "get_property",
	OP_SET_PROPERTY:   "set_property",
	OP_GET_SUPER:      "get_super",
	OP_EQUAL:          "equal",
	OP_GREATER:        "greater",
	OP_LESS:           "less",
	OP_ADD:            "add",
	OP_SUBTRACT:       "subtract",
	OP_MULTIPLY:       "multiply",
	OP_DIVIDE:         "divide",
	OP_MODULO:         "modulo",
	OP_NEGATE:         "negate",
	OP_NOT:            "not",
	OP_BITWISE_AND:    "bitwise_and",
	OP_BITWISE_OR:     "bitwise_or",
	OP_BITWISE_XOR:    "bitwise_xor",
	OP_BITWISE_LS:     "bitwise_ls",
	OP_BITWISE_RS:     "bitwise_rs",
	OP_BITWISE_NOT:    "bitwise_not",
	OP_JUMP:           "jump",
	OP_JUMP_IF_FALSE:  "jump_if_false",
	OP_LOOP:           "loop",
	OP_CALL:           "call",
	OP_INVOKE:         "invoke",
	OP_SUPER_INVOKE:   "super_invoke",
	OP_RETURN:         "return",
	OP_CLOSURE:        "closure",
	OP_CLASS:          "class",
	OP_INHERIT:        "inherit",
	OP_METHOD:         "method",
	OP_ARRAY:          "array",
	OP_DICT:           "dict",
	OP_OBJECT_GET:     "object_get",
	OP_OBJECT_SET:     "object_set",
	OP_OUT:            "out",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "unknown"
}

// lineRun is one run-length entry of the line table: `count` consecutive
// bytes of Code map to source line `line`.
type lineRun struct {
	line  int
	count int
}

// Chunk is a per-function instruction buffer: an append-only byte sequence
// of opcodes and inline operands, a constant pool of Values (indexed by a
// one-byte operand for the short form, two bytes for the long form), and a
// run-length-encoded offset-to-line map (spec.md §3).
type Chunk struct {
	Code      []byte
	Constants []Value
	lines     []lineRun
}

// Write appends one raw byte to the instruction stream, recording that it
// originated at source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.addLine(line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

func (c *Chunk) addLine(line int) {
	if n := len(c.lines); n > 0 && c.lines[n-1].line == line {
		c.lines[n-1].count++
		return
	}
	c.lines = append(c.lines, lineRun{line: line, count: 1})
}

// AddConstant appends v to the constant pool and returns its index. Callers
// needing the short one-byte form must check the returned index fits in
// uint8 themselves (the compiler reports "too many constants" at that
// point); the pool itself is not bounded.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Line returns the source line that produced the byte at offset, by
// scanning the run-length table. O(runs), not O(1), which is the standard
// trade-off for this representation (spec.md §3).
func (c *Chunk) Line(offset int) int {
	pos := 0
	for _, run := range c.lines {
		pos += run.count
		if offset < pos {
			return run.line
		}
	}
	if len(c.lines) > 0 {
		return c.lines[len(c.lines)-1].line
	}
	return 0
}
