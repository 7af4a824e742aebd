package scanner_test

import (
	"testing"

	"github.com/marrow-lang/marrow/lang/scanner"
	"github.com/marrow-lang/marrow/lang/token"
	"github.com/stretchr/testify/require"
)

func collect(src string) []token.Token {
	s := scanner.NewKeepNewlines(src)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScannerPunctuationAndKeywords(t *testing.T) {
	toks := collect(`var x = 1 + 2 * 3; out x;`)
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQ, token.NUMBER, token.PLUS, token.NUMBER,
		token.STAR, token.NUMBER, token.SEMICOLON, token.OUT, token.IDENT,
		token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestScannerBitwiseOperators(t *testing.T) {
	toks := collect(`a & b | c ^ d ~e << 1 >> 2`)
	require.Equal(t, []token.Kind{
		token.IDENT, token.AMP, token.IDENT, token.PIPE, token.IDENT, token.CARET,
		token.IDENT, token.TILDE, token.IDENT, token.LTLT, token.NUMBER, token.GTGT,
		token.NUMBER, token.EOF,
	}, kinds(toks))
}

func TestScannerReturnTypeAnnotation(t *testing.T) {
	toks := collect(`fn f() @int { return 1; }`)
	require.Equal(t, token.AT, toks[4].Kind)
	require.Equal(t, "int", toks[5].Lexeme)
}

func TestScannerStringLiteralKeepsQuotes(t *testing.T) {
	toks := collect(`"ab\ncd"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"ab\ncd"`, toks[0].Lexeme)
}

func TestScannerUnterminatedString(t *testing.T) {
	toks := collect(`"oops`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScannerLineComment(t *testing.T) {
	toks := collect("1 // a comment\n2")
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
}

func TestScannerNewlinesFoldedForImports(t *testing.T) {
	s := scanner.New("var\r\nx")
	toks := []token.Token{s.Next(), s.Next()}
	require.Equal(t, token.VAR, toks[0].Kind)
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, 1, toks[1].Line, "folded newlines must not advance the line counter")
}
