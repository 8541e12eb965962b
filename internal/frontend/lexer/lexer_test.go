package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectToken(t *testing.T, input string, expected TokenKind, value string) {
	t.Helper()
	tok := New(input).Next()
	assert.Equal(t, expected, tok.Kind, "input %q", input)
	if value != "" {
		assert.Equal(t, value, tok.Value, "input %q", input)
	}
}

func kinds(input string) []TokenKind {
	var out []TokenKind
	for _, tok := range New(input).Tokenize() {
		out = append(out, tok.Kind)
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	expectToken(t, "for", TokFor, "for")
	expectToken(t, "uniform", TokUniform, "uniform")
	expectToken(t, "vec4", TokIdent, "vec4")
	expectToken(t, "gl_FragColor", TokIdent, "gl_FragColor")
	expectToken(t, "true", TokTrue, "true")
	expectToken(t, "a__b", TokError, "")
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
		value string
	}{
		{"10", TokIntLiteral, "10"},
		{"0x1F", TokIntLiteral, "0x1F"},
		{"7u", TokUintLiteral, "7"},
		{"1.0", TokFloatLiteral, "1.0"},
		{".5", TokFloatLiteral, ".5"},
		{"2.", TokFloatLiteral, "2."},
		{"1e3", TokFloatLiteral, "1e3"},
		{"1.5e-2f", TokFloatLiteral, "1.5e-2"},
		{"3x", TokError, ""},
		{"1e", TokError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			expectToken(t, tc.input, tc.kind, tc.value)
		})
	}
}

func TestOperatorsMaximalMunch(t *testing.T) {
	assert.Equal(t,
		[]TokenKind{TokIdent, TokLtLtEq, TokIntLiteral, TokSemicolon, TokEOF},
		kinds("a <<= 2;"))
	assert.Equal(t,
		[]TokenKind{TokIdent, TokPlusPlus, TokPlus, TokIdent, TokEOF},
		kinds("i+++j"))
	assert.Equal(t,
		[]TokenKind{TokIdent, TokCaretCaret, TokIdent, TokEOF},
		kinds("a ^^ b"))
}

func TestCommentsAndLines(t *testing.T) {
	src := "// header\nfloat x; /* multi\nline */ x\n  = 1.0;"
	toks := New(src).Tokenize()
	require.Len(t, toks, 8)

	assert.Equal(t, "float", toks[0].Value)
	assert.Equal(t, 2, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)

	assert.Equal(t, "x", toks[3].Value)
	assert.Equal(t, 3, toks[3].Line)

	assert.Equal(t, TokEq, toks[4].Kind)
	assert.Equal(t, 4, toks[4].Line)
	assert.Equal(t, 3, toks[4].Column)
}

func TestDirectives(t *testing.T) {
	toks := New("#version 100\n#define N 8 // count\nfloat a # b").Tokenize()

	require.Equal(t, TokDirective, toks[0].Kind)
	assert.Equal(t, "version 100", toks[0].Value)
	require.Equal(t, TokDirective, toks[1].Kind)
	assert.Equal(t, "define N 8", toks[1].Value)
	assert.Equal(t, 2, toks[1].Line)

	// '#' in the middle of a line is not a directive
	last := toks[len(toks)-1]
	assert.Equal(t, TokError, last.Kind)
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "+=", TokPlusEq.String())
	assert.Equal(t, "identifier", TokIdent.String())
	assert.Equal(t, "unknown", TokenKind(250).String())
}
