package vlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "module endmodule input output inout wire reg posedge negedge myWire"
	expected := []TokenType{
		MODULE, ENDMODULE, INPUT, OUTPUT, INOUT, WIRE, REG, POSEDGE, NEGEDGE, IDENT,
	}

	toks, err := New("t.v", input).ScanTokens()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), len(expected))

	for i, exp := range expected {
		assert.Equal(t, exp, toks[i].Type, "token %d", i)
	}
	assert.Equal(t, EOF, toks[len(toks)-1].Type)
}

func TestOperatorsAndPunctuation(t *testing.T) {
	input := `( ) { } [ ] , ; . # @ : :: ? -> ~ ~& ~| ~^ & && | || ^ == === != !== < <= << > >= >>`
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACK, RBRACK, COMMA, SEMI, DOT, HASH, AT,
		COLON, COLONCOLON, QUESTION, ARROW, TILDE, TILDEAMP, TILDEPIPE, TILDECARET,
		AMP, AMPAMP, PIPE, PIPEPIPE, CARET, EQEQ, EQEQEQ, BANGEQ, BANGEQEQ,
		LT, LTEQ, LTLT, GT, GTEQ, GTGT,
	}

	toks, err := New("t.v", input).ScanTokens()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), len(expected))

	for i, exp := range expected {
		assert.Equal(t, exp, toks[i].Type, "token %d (%q)", i, toks[i].Text)
	}
}

func TestNumbersAndStrings(t *testing.T) {
	toks, err := New("t.v", `42 8'hFF "hello"`).ScanTokens()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, NUMBER, toks[0].Type)
	assert.Equal(t, STRING, toks[len(toks)-2].Type)
}

func TestSysIdent(t *testing.T) {
	toks, err := New("t.v", `$display $finish`).ScanTokens()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, SYSIDENT, toks[0].Type)
	assert.Equal(t, "$display", toks[0].Text)
	assert.Equal(t, SYSIDENT, toks[1].Type)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := New("t.v", "module\n  m;").ScanTokens()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 3, toks[1].Pos.Column)
}
