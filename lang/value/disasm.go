package value

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk's bytecode as human-readable text, recursing
// into any nested function constants reached via CLOSURE. Grounded on the
// pack's clox-derived disassemblers (e.g. funvibe-funxy's internal/vm's
// disasm.go), adapted to this chunk's one-byte/two-byte constant scheme
// (spec.md §3, §4.3).
func Disassemble(chunk *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && chunk.Line(offset) == chunk.Line(offset-1) {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(b, "%4d ", chunk.Line(offset))
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case OP_CONSTANT:
		return shortConstantInstruction(b, op.String(), chunk, offset)
	case OP_CONSTANT_LONG:
		return longConstantInstruction(b, op.String(), chunk, offset)

	case OP_NIL, OP_TRUE, OP_FALSE, OP_POP,
		OP_CLOSE_UPVALUE,
		OP_EQUAL, OP_GREATER, OP_LESS,
		OP_ADD, OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE, OP_MODULO, OP_NEGATE, OP_NOT,
		OP_BITWISE_AND, OP_BITWISE_OR, OP_BITWISE_XOR, OP_BITWISE_LS, OP_BITWISE_RS, OP_BITWISE_NOT,
		OP_RETURN, OP_INHERIT, OP_OBJECT_GET, OP_OBJECT_SET, OP_OUT:
		return simpleInstruction(b, op.String(), offset)

	case OP_GET_LOCAL, OP_SET_LOCAL, OP_GET_UPVALUE, OP_SET_UPVALUE, OP_CALL, OP_ARRAY, OP_DICT:
		return byteInstruction(b, op.String(), chunk, offset)

	case OP_GET_GLOBAL, OP_DEFINE_GLOBAL, OP_SET_GLOBAL,
		OP_GET_PROPERTY, OP_SET_PROPERTY, OP_GET_SUPER,
		OP_CLASS, OP_METHOD:
		return shortConstantInstruction(b, op.String(), chunk, offset)

	case OP_INVOKE, OP_SUPER_INVOKE:
		return invokeInstruction(b, op.String(), chunk, offset)

	case OP_JUMP, OP_JUMP_IF_FALSE:
		return jumpInstruction(b, op.String(), 1, chunk, offset)
	case OP_LOOP:
		return jumpInstruction(b, op.String(), -1, chunk, offset)

	case OP_CLOSURE:
		return closureInstruction(b, op.String(), chunk, offset)

	default:
		fmt.Fprintf(b, "unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(b *strings.Builder, name string, offset int) int {
	fmt.Fprintf(b, "%s\n", name)
	return offset + 1
}

func byteInstruction(b *strings.Builder, name string, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", name, slot)
	return offset + 2
}

// shortConstantInstruction handles the one-byte-index operand shared by
// GET_GLOBAL, GET_PROPERTY, CLASS, METHOD, OP_CONSTANT, etc.
func shortConstantInstruction(b *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])
	printConstant(b, name, chunk, idx)
	return offset + 2
}

// longConstantInstruction handles OP_CONSTANT_LONG's two-byte index.
func longConstantInstruction(b *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	printConstant(b, name, chunk, idx)
	return offset + 3
}

func printConstant(b *strings.Builder, name string, chunk *Chunk, idx int) {
	if idx >= 0 && idx < len(chunk.Constants) {
		fmt.Fprintf(b, "%-16s %4d '%s'\n", name, idx, chunk.Constants[idx].String())
	} else {
		fmt.Fprintf(b, "%-16s %4d (invalid)\n", name, idx)
	}
}

func invokeInstruction(b *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])
	argCount := int(chunk.Code[offset+2])
	if idx >= 0 && idx < len(chunk.Constants) {
		fmt.Fprintf(b, "%-16s (%d args) %4d '%s'\n", name, argCount, idx, chunk.Constants[idx].String())
	} else {
		fmt.Fprintf(b, "%-16s (%d args) %4d (invalid)\n", name, argCount, idx)
	}
	return offset + 3
}

func jumpInstruction(b *strings.Builder, name string, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(b, "%-16s %4d -> %d\n", name, jump, target)
	return offset + 3
}

func closureInstruction(b *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])
	offset += 2

	if idx < 0 || idx >= len(chunk.Constants) {
		fmt.Fprintf(b, "%-16s %4d (invalid)\n", name, idx)
		return offset
	}
	fn, ok := chunk.Constants[idx].(*Function)
	if !ok {
		fmt.Fprintf(b, "%-16s %4d (not a function)\n", name, idx)
		return offset
	}
	fmt.Fprintf(b, "%-16s %4d '%s'\n", name, idx, fn.String())

	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2

		kind := "upvalue"
		if isLocal == 1 {
			kind = "local"
		}
		fmt.Fprintf(b, "%04d    |                     %s %d\n", offset-2, kind, index)
	}

	nested := Disassemble(&fn.Chunk, fn.String())
	b.WriteString("    | " + strings.ReplaceAll(strings.TrimRight(nested, "\n"), "\n", "\n    | ") + "\n")
	return offset
}
