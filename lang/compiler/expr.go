package compiler

import (
	"strconv"

	"github.com/marrow-lang/marrow/lang/token"
	"github.com/marrow-lang/marrow/lang/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(PREC_ASSIGNMENT)
}

// parsePrecedence is the heart of the Pratt parser (spec.md §4.2): consume
// one token, dispatch its prefix handler with canAssign = (p <= ASSIGNMENT),
// then while the next token's infix precedence >= p, advance and dispatch
// its infix handler. A stray `=` that no handler consumed is reported as an
// invalid assignment target.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := p <= PREC_ASSIGNMENT
	prefix(c, canAssign)

	for p <= ruleFor(c.current.Kind).precedence {
		c.advance()
		infix := ruleFor(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	f, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(f))
	c.fs.lastExpr = exprNumber
}

// string strips the surrounding quotes and resolves recognized escapes
// (SPEC_FULL.md §4), then interns the result.
func (c *Compiler) string(_ bool) {
	raw := c.previous.Lexeme
	inner := raw[1 : len(raw)-1]
	unescaped := unescape(inner)
	c.emitConstant(c.strings.Intern(unescaped))
	c.fs.lastExpr = exprString
}

func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			case '\'':
				out = append(out, '\'')
			default:
				out = append(out, '\\', s[i])
			}
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(value.OP_FALSE)
		c.fs.lastExpr = exprBool
	case token.TRUE:
		c.emitOp(value.OP_TRUE)
		c.fs.lastExpr = exprBool
	case token.NIL:
		c.emitOp(value.OP_NIL)
		c.fs.lastExpr = exprUnknown
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(PREC_UNARY)

	switch opKind {
	case token.MINUS:
		c.emitOp(value.OP_NEGATE)
		// lastExpr unchanged: negating a number is still a number
	case token.BANG:
		c.emitOp(value.OP_NOT)
		c.fs.lastExpr = exprBool
	case token.TILDE:
		c.emitOp(value.OP_BITWISE_NOT)
		c.fs.lastExpr = exprNumber
	}
}

func (c *Compiler) binary(_ bool) {
	opKind := c.previous.Kind
	r := ruleFor(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case token.BANG_EQ:
		c.emitOp(value.OP_EQUAL)
		c.emitOp(value.OP_NOT)
		c.fs.lastExpr = exprBool
	case token.EQ_EQ:
		c.emitOp(value.OP_EQUAL)
		c.fs.lastExpr = exprBool
	case token.GT:
		c.emitOp(value.OP_GREATER)
		c.fs.lastExpr = exprBool
	case token.GT_EQ:
		c.emitOp(value.OP_LESS)
		c.emitOp(value.OP_NOT)
		c.fs.lastExpr = exprBool
	case token.LT:
		c.emitOp(value.OP_LESS)
		c.fs.lastExpr = exprBool
	case token.LT_EQ:
		c.emitOp(value.OP_GREATER)
		c.emitOp(value.OP_NOT)
		c.fs.lastExpr = exprBool
	case token.PLUS:
		c.emitOp(value.OP_ADD)
		c.fs.lastExpr = exprUnknown // number+number or string+string, can't tell statically
	case token.MINUS:
		c.emitOp(value.OP_SUBTRACT)
		c.fs.lastExpr = exprNumber
	case token.STAR:
		c.emitOp(value.OP_MULTIPLY)
		c.fs.lastExpr = exprNumber
	case token.SLASH:
		c.emitOp(value.OP_DIVIDE)
		c.fs.lastExpr = exprNumber
	case token.PERCENT:
		c.emitOp(value.OP_MODULO)
		c.fs.lastExpr = exprNumber
	case token.AMP:
		c.emitOp(value.OP_BITWISE_AND)
		c.fs.lastExpr = exprNumber
	case token.PIPE:
		c.emitOp(value.OP_BITWISE_OR)
		c.fs.lastExpr = exprNumber
	case token.CARET:
		c.emitOp(value.OP_BITWISE_XOR)
		c.fs.lastExpr = exprNumber
	case token.LTLT:
		c.emitOp(value.OP_BITWISE_LS)
		c.fs.lastExpr = exprNumber
	case token.GTGT:
		c.emitOp(value.OP_BITWISE_RS)
		c.fs.lastExpr = exprNumber
	}
}

// and_ and or_ compile short-circuit evaluation (SPEC_FULL.md §4): for
// `and`, if the left operand is falsey, skip the right operand entirely,
// leaving the falsey left value on the stack; for `or`, the mirror image.
func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(value.OP_JUMP_IF_FALSE)
	c.emitOp(value.OP_POP)
	c.parsePrecedence(PREC_AND)
	c.patchJump(endJump)
	c.fs.lastExpr = exprUnknown
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(value.OP_JUMP_IF_FALSE)
	endJump := c.emitJump(value.OP_JUMP)
	c.patchJump(elseJump)
	c.emitOp(value.OP_POP)
	c.parsePrecedence(PREC_OR)
	c.patchJump(endJump)
	c.fs.lastExpr = exprUnknown
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) this_(_ bool) {
	if c.cs == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "this", Line: c.previous.Line}, false)
}

func (c *Compiler) super_(_ bool) {
	if c.cs == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.cs.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "this", Line: c.previous.Line}, false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "super", Line: c.previous.Line}, false)
		c.emitBytes(value.OP_SUPER_INVOKE, c.byteConstant(name, "Too many constants in one chunk."))
		c.emitByte(byte(argCount))
	} else {
		c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "super", Line: c.previous.Line}, false)
		c.emitBytes(value.OP_GET_SUPER, c.byteConstant(name, "Too many constants in one chunk."))
	}
	c.fs.lastExpr = exprUnknown
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

func (c *Compiler) call(_ bool) {
	argCount := c.argumentList()
	c.emitBytes(value.OP_CALL, byte(argCount))
	c.fs.lastExpr = exprUnknown
}

// dot compiles property access/assignment and the INVOKE fast path for a
// method call immediately following the dot (spec.md §4.3).
func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)
	nameByte := c.byteConstant(name, "Too many constants in one chunk.")

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitBytes(value.OP_SET_PROPERTY, nameByte)
	case c.match(token.LPAREN):
		argCount := c.argumentList()
		c.emitBytes(value.OP_INVOKE, nameByte)
		c.emitByte(byte(argCount))
	default:
		c.emitBytes(value.OP_GET_PROPERTY, nameByte)
	}
	c.fs.lastExpr = exprUnknown
}

// index compiles `a[expr]` (read) and `a[expr] = v` (write) using the
// generic OBJECT_GET/OBJECT_SET opcodes, which at runtime work on both
// arrays and dicts (spec.md §4.3).
func (c *Compiler) index(canAssign bool) {
	c.expression()
	c.consume(token.RBRACK, "Expect ']' after index.")

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(value.OP_OBJECT_SET)
	} else {
		c.emitOp(value.OP_OBJECT_GET)
	}
	c.fs.lastExpr = exprUnknown
}

// arrayLiteral compiles `[e1, e2, ...]`. Elements are pushed in source
// order and ARRAY<n> consumes exactly n values from the stack top,
// producing elements 0..n-1 (spec.md §4.3).
func (c *Compiler) arrayLiteral(_ bool) {
	count := 0
	if !c.check(token.RBRACK) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 elements in an array literal.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACK, "Expect ']' after array elements.")
	c.emitBytes(value.OP_ARRAY, byte(count))
	c.fs.lastExpr = exprUnknown
}

// dictLiteral compiles `{"k1": v1, "k2": v2, ...}`. Per spec.md §4.3, DICT<n>
// pops 2n entries as alternating key,value pairs with the value popped
// first, so each pair must be emitted key-then-value to match that stack
// order.
func (c *Compiler) dictLiteral(_ bool) {
	count := 0
	if !c.check(token.RBRACE) {
		for {
			c.expression() // key
			c.consume(token.COLON, "Expect ':' after dict key.")
			c.expression() // value
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACE, "Expect '}' after dict entries.")
	c.emitBytes(value.OP_DICT, byte(count))
	c.fs.lastExpr = exprUnknown
}
