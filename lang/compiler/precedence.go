package compiler

import "github.com/marrow-lang/marrow/lang/token"

// Precedence is the Pratt-parser precedence ladder from spec.md §4.2. The
// BITWISE level sits above FACTOR -- tighter-binding than * and / -- which
// is called out there as idiosyncratic and must be preserved verbatim.
type Precedence uint8

const (
	PREC_NONE       Precedence = iota
	PREC_ASSIGNMENT            // =
	PREC_OR                    // or
	PREC_AND                   // and
	PREC_EQUALITY              // == !=
	PREC_COMPARISON            // < > <= >=
	PREC_TERM                  // + -
	PREC_FACTOR                // * / %
	PREC_BITWISE               // & | ^ << >>  (idiosyncratic: above FACTOR)
	PREC_UNARY                 // ! - ~
	PREC_CALL                  // . () [] ++ --
	PREC_PRIMARY
)

type prefixFn func(c *Compiler, canAssign bool)
type infixFn func(c *Compiler, canAssign bool)

// rule is one row of the parse-rule table: for a given token kind, how to
// parse it in prefix position, how to parse it in infix position, and at
// what precedence it binds as an infix operator.
type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LPAREN:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: PREC_CALL},
		token.LBRACK:    {prefix: (*Compiler).arrayLiteral, infix: (*Compiler).index, precedence: PREC_CALL},
		token.DOT:       {infix: (*Compiler).dot, precedence: PREC_CALL},
		token.MINUS:     {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PREC_TERM},
		token.PLUS:      {infix: (*Compiler).binary, precedence: PREC_TERM},
		token.SLASH:     {infix: (*Compiler).binary, precedence: PREC_FACTOR},
		token.STAR:      {infix: (*Compiler).binary, precedence: PREC_FACTOR},
		token.PERCENT:   {infix: (*Compiler).binary, precedence: PREC_FACTOR},
		token.AMP:       {infix: (*Compiler).binary, precedence: PREC_BITWISE},
		token.PIPE:      {infix: (*Compiler).binary, precedence: PREC_BITWISE},
		token.CARET:     {infix: (*Compiler).binary, precedence: PREC_BITWISE},
		token.LTLT:      {infix: (*Compiler).binary, precedence: PREC_BITWISE},
		token.GTGT:      {infix: (*Compiler).binary, precedence: PREC_BITWISE},
		token.TILDE:     {prefix: (*Compiler).unary, precedence: PREC_UNARY},
		token.BANG:      {prefix: (*Compiler).unary, precedence: PREC_UNARY},
		token.BANG_EQ:   {infix: (*Compiler).binary, precedence: PREC_EQUALITY},
		token.EQ_EQ:     {infix: (*Compiler).binary, precedence: PREC_EQUALITY},
		token.GT:        {infix: (*Compiler).binary, precedence: PREC_COMPARISON},
		token.GT_EQ:     {infix: (*Compiler).binary, precedence: PREC_COMPARISON},
		token.LT:        {infix: (*Compiler).binary, precedence: PREC_COMPARISON},
		token.LT_EQ:     {infix: (*Compiler).binary, precedence: PREC_COMPARISON},
		token.NUMBER:    {prefix: (*Compiler).number},
		token.STRING:    {prefix: (*Compiler).string},
		token.IDENT:     {prefix: (*Compiler).variable},
		token.AND:       {infix: (*Compiler).and_, precedence: PREC_AND},
		token.OR:        {infix: (*Compiler).or_, precedence: PREC_OR},
		token.FALSE:     {prefix: (*Compiler).literal},
		token.TRUE:      {prefix: (*Compiler).literal},
		token.NIL:       {prefix: (*Compiler).literal},
		token.THIS:      {prefix: (*Compiler).this_},
		token.SUPER:     {prefix: (*Compiler).super_},
		token.LBRACE:    {prefix: (*Compiler).dictLiteral},
	}
}

func ruleFor(k token.Kind) rule { return rules[k] }
