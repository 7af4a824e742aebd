// Package compiler implements the single-pass Pratt parser/compiler of
// spec.md §4.2: it consumes a token stream from lang/scanner and emits
// bytecode directly into a lang/value Chunk, one per function, with no
// intermediate AST.
package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"

	"github.com/marrow-lang/marrow/lang/scanner"
	"github.com/marrow-lang/marrow/lang/token"
	"github.com/marrow-lang/marrow/lang/value"
)

// ImportFunc is called synchronously when the compiler parses
// `import <ident>;` (spec.md §4.2). It is responsible for resolving the
// identifier to a file, reading it, and recursively running the whole
// compile+execute pipeline against the caller's VM before this compile
// continues -- see lang/importer. A nil ImportFunc makes `import` a compile
// error.
type ImportFunc func(name string) error

// Compiler drives a single compilation: it owns the parser's one-token
// lookahead and error/panic state, the stack of per-function funcStates,
// and the stack of classStates, exactly as spec.md §4.2 describes.
type Compiler struct {
	scan *scanner.Scanner

	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errs      *multierror.Error

	strings *value.Strings
	fs      *funcState
	cs      *classState

	importHook ImportFunc
}

// Compile compiles source as a top-level script and returns the resulting
// top-level Function (spec.md §2: "compile() yields a top-level function").
// On any compile error, Compile returns (nil, err) where err aggregates
// every reported error (spec.md §7: "compile() returns a sentinel (null
// function) iff hadError is set at end").
//
// strings is the intern table shared with the VM that will execute the
// result, so that name constants compare by identity the same way at
// compile time and at run time. importHook may be nil if the caller does
// not support `import`.
func Compile(source string, strings *value.Strings, importHook ImportFunc) (*value.Function, error) {
	c := &Compiler{
		scan:       scanner.NewKeepNewlines(source),
		strings:    strings,
		importHook: importHook,
	}
	c.fs = newFuncState(nil, TYPE_SCRIPT, nil)

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if c.hadError {
		return nil, c.errs.ErrorOrNil()
	}
	return fn, nil
}

// --- token stream helpers ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.Next()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, message string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- error reporting (spec.md §7) ---

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	var where string
	switch {
	case tok.Kind == token.EOF:
		where = "at end"
	case tok.Kind == token.ILLEGAL:
		// lexeme already holds the scan error message
	default:
		where = fmt.Sprintf("at '%s'", tok.Lexeme)
	}

	var msg string
	if where == "" {
		msg = fmt.Sprintf("[line %d] Error: %s", tok.Line, message)
	} else {
		msg = fmt.Sprintf("[line %d] Error %s: %s", tok.Line, where, message)
	}
	c.errs = multierror.Append(c.errs, fmt.Errorf("%s", msg))
	c.hadError = true
}

// synchronize resynchronizes the parser after a panic, per spec.md §4.2:
// "report once per statement, then resynchronize forward until after a
// semicolon or at a statement-starting keyword."
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FN, token.VAR, token.FOR, token.IF, token.WHILE,
			token.UNTIL, token.RETURN, token.OUT, token.IMPORT:
			return
		}
		c.advance()
	}
}

// --- emission helpers ---

func (c *Compiler) currentChunk() *value.Chunk { return &c.fs.fn.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op value.OpCode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitBytes(op value.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(value.OP_LOOP)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset & 0xff))
}

// emitJump emits op followed by a 2-byte placeholder operand and returns the
// offset of the first placeholder byte, to be patched later by patchJump.
func (c *Compiler) emitJump(op value.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	code := c.currentChunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) makeConstant(v value.Value) int {
	return c.currentChunk().AddConstant(v)
}

// emitConstant emits CONSTANT or, if the pool index does not fit a byte,
// CONSTANT_LONG (spec.md §3: "indexed 0..≤255 for the short form and
// 0..≤2¹⁶-1 for the long form").
func (c *Compiler) emitConstant(v value.Value) {
	idx := c.makeConstant(v)
	if idx <= 0xff {
		c.emitBytes(value.OP_CONSTANT, byte(idx))
		return
	}
	if idx > 0xffff {
		c.error("Too many constants in one chunk.")
		return
	}
	c.emitOp(value.OP_CONSTANT_LONG)
	c.emitByte(byte(idx >> 8))
	c.emitByte(byte(idx & 0xff))
}

// byteConstant returns idx as a byte, reporting a compile error instead of
// truncating if it doesn't fit -- used by every opcode whose operand is
// specified as a one-byte constant-pool index (GET_GLOBAL, GET_PROPERTY,
// CLASS, METHOD, ...).
func (c *Compiler) byteConstant(idx int, errMsg string) byte {
	if idx > 0xff {
		c.error(errMsg)
		return 0
	}
	return byte(idx)
}

// emitReturn emits the implicit-return sequence for the current function.
// In an initializer, slot 0 (the instance, i.e. `this`) is returned instead
// of nil (spec.md §4.2: "Initializers").
func (c *Compiler) emitReturn() {
	if c.fs.fnType == TYPE_INITIALIZER {
		c.emitBytes(value.OP_GET_LOCAL, 0)
	} else {
		c.emitOp(value.OP_NIL)
	}
	c.emitOp(value.OP_RETURN)
}

func (c *Compiler) endCompiler() *value.Function {
	c.emitReturn()
	fn := c.fs.fn
	fn.UpvalueCount = len(c.fs.upvalues)
	fn.Upvalues = make([]value.UpvalueDesc, len(c.fs.upvalues))
	for i, uv := range c.fs.upvalues {
		fn.Upvalues[i] = value.UpvalueDesc{Index: uv.index, IsLocal: uv.isLocal}
	}
	c.fs = c.fs.enclosing
	return fn
}

// --- scopes ---

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops every local declared in the scope being closed, emitting
// OP_CLOSE_UPVALUE for the ones that were captured and OP_POP for the rest
// (spec.md §4.2).
func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	for len(c.fs.locals) > 0 && c.fs.locals[len(c.fs.locals)-1].depth > c.fs.scopeDepth {
		last := c.fs.locals[len(c.fs.locals)-1]
		if last.isCaptured {
			c.emitOp(value.OP_CLOSE_UPVALUE)
		} else {
			c.emitOp(value.OP_POP)
		}
		c.fs.locals = c.fs.locals[:len(c.fs.locals)-1]
	}
}

// --- variables ---

func (c *Compiler) identifierConstant(name string) int {
	return c.makeConstant(c.strings.Intern(name))
}

func (c *Compiler) declareVariable(name token.Token) {
	if c.fs.scopeDepth == 0 {
		return // globals are late-bound, not declared
	}
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	if len(c.fs.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name.Lexeme, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// parseVariable consumes an identifier and returns the constant-pool index
// to use for a global definition (ignored for locals).
func (c *Compiler) parseVariable(errMsg string) int {
	c.consume(token.IDENT, errMsg)
	c.declareVariable(c.previous)
	if c.fs.scopeDepth > 0 {
		return -1
	}
	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) defineVariable(global int) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(value.OP_DEFINE_GLOBAL, c.byteConstant(global, "Too many globals defined."))
}

func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	if i := slices.IndexFunc(fs.upvalues, func(uv upvalueRef) bool {
		return uv.index == index && uv.isLocal == isLocal
	}); i != -1 {
		return i
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// resolveUpvalue implements spec.md §4.2's upvalue resolution: recurse into
// the enclosing function; a local found there is marked captured and
// recorded as a local upvalue here; an upvalue found there is recorded as a
// non-local upvalue here; deduplicated by (index, isLocal).
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fs, uint8(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}
	return -1
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp value.OpCode
	var arg byte

	if local := c.resolveLocal(c.fs, name.Lexeme); local != -1 {
		getOp, setOp, arg = value.OP_GET_LOCAL, value.OP_SET_LOCAL, byte(local)
	} else if up := c.resolveUpvalue(c.fs, name.Lexeme); up != -1 {
		getOp, setOp, arg = value.OP_GET_UPVALUE, value.OP_SET_UPVALUE, byte(up)
	} else {
		getOp, setOp = value.OP_GET_GLOBAL, value.OP_SET_GLOBAL
		arg = c.byteConstant(c.identifierConstant(name.Lexeme), "Too many globals referenced in one chunk.")
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitBytes(setOp, arg)
	} else {
		c.emitBytes(getOp, arg)
	}
	c.fs.lastExpr = exprUnknown
}
