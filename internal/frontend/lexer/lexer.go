// Package lexer provides tokenization for GLSL shader source.
//
// The lexer handles the subset of GLSL ES that the cost analysis needs:
// keywords and type names, identifiers, int/float literals, every operator
// including compound assignment, line and block comments, and preprocessor
// lines, which are returned whole as a single directive token.
package lexer

import (
	"strings"
)

// ----------------------------------------------------------------------------
// Token Types
// ----------------------------------------------------------------------------

// TokenKind represents the type of a token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	// Literals
	TokIntLiteral
	TokUintLiteral
	TokFloatLiteral
	TokTrue
	TokFalse

	TokIdent
	TokDirective // # ... to end of line

	// Keywords
	TokAttribute
	TokBreak
	TokCentroid
	TokConst
	TokContinue
	TokDiscard
	TokDo
	TokElse
	TokFlat
	TokFor
	TokHighp
	TokIf
	TokIn
	TokInout
	TokInvariant
	TokLayout
	TokLowp
	TokMediump
	TokNoperspective
	TokOut
	TokPrecision
	TokReturn
	TokSmooth
	TokStruct
	TokUniform
	TokVarying
	TokWhile

	// Operators
	TokPlus     // +
	TokMinus    // -
	TokStar     // *
	TokSlash    // /
	TokPercent  // %
	TokAmp      // &
	TokPipe     // |
	TokCaret    // ^
	TokTilde    // ~
	TokBang     // !
	TokLt       // <
	TokGt       // >
	TokEq       // =
	TokDot      // .
	TokQuestion // ?

	// Multi-char operators
	TokPlusPlus   // ++
	TokMinusMinus // --
	TokAmpAmp     // &&
	TokPipePipe   // ||
	TokCaretCaret // ^^
	TokLtLt       // <<
	TokGtGt       // >>
	TokLtEq       // <=
	TokGtEq       // >=
	TokEqEq       // ==
	TokBangEq     // !=
	TokPlusEq     // +=
	TokMinusEq    // -=
	TokStarEq     // *=
	TokSlashEq    // /=
	TokPercentEq  // %=
	TokAmpEq      // &=
	TokPipeEq     // |=
	TokCaretEq    // ^=
	TokLtLtEq     // <<=
	TokGtGtEq     // >>=

	// Delimiters
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokSemicolon // ;
	TokColon     // :
	TokComma     // ,
)

// String returns the string representation of a token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

var tokenNames = [...]string{
	TokError:         "error",
	TokEOF:           "EOF",
	TokIntLiteral:    "int",
	TokUintLiteral:   "uint",
	TokFloatLiteral:  "float",
	TokTrue:          "true",
	TokFalse:         "false",
	TokIdent:         "identifier",
	TokDirective:     "directive",
	TokAttribute:     "attribute",
	TokBreak:         "break",
	TokCentroid:      "centroid",
	TokConst:         "const",
	TokContinue:      "continue",
	TokDiscard:       "discard",
	TokDo:            "do",
	TokElse:          "else",
	TokFlat:          "flat",
	TokFor:           "for",
	TokHighp:         "highp",
	TokIf:            "if",
	TokIn:            "in",
	TokInout:         "inout",
	TokInvariant:     "invariant",
	TokLayout:        "layout",
	TokLowp:          "lowp",
	TokMediump:       "mediump",
	TokNoperspective: "noperspective",
	TokOut:           "out",
	TokPrecision:     "precision",
	TokReturn:        "return",
	TokSmooth:        "smooth",
	TokStruct:        "struct",
	TokUniform:       "uniform",
	TokVarying:       "varying",
	TokWhile:         "while",
	TokPlus:          "+",
	TokMinus:         "-",
	TokStar:          "*",
	TokSlash:         "/",
	TokPercent:       "%",
	TokAmp:           "&",
	TokPipe:          "|",
	TokCaret:         "^",
	TokTilde:         "~",
	TokBang:          "!",
	TokLt:            "<",
	TokGt:            ">",
	TokEq:            "=",
	TokDot:           ".",
	TokQuestion:      "?",
	TokPlusPlus:      "++",
	TokMinusMinus:    "--",
	TokAmpAmp:        "&&",
	TokPipePipe:      "||",
	TokCaretCaret:    "^^",
	TokLtLt:          "<<",
	TokGtGt:          ">>",
	TokLtEq:          "<=",
	TokGtEq:          ">=",
	TokEqEq:          "==",
	TokBangEq:        "!=",
	TokPlusEq:        "+=",
	TokMinusEq:       "-=",
	TokStarEq:        "*=",
	TokSlashEq:       "/=",
	TokPercentEq:     "%=",
	TokAmpEq:         "&=",
	TokPipeEq:        "|=",
	TokCaretEq:       "^=",
	TokLtLtEq:        "<<=",
	TokGtGtEq:        ">>=",
	TokLParen:        "(",
	TokRParen:        ")",
	TokLBrace:        "{",
	TokRBrace:        "}",
	TokLBracket:      "[",
	TokRBracket:      "]",
	TokSemicolon:     ";",
	TokColon:         ":",
	TokComma:         ",",
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Start  int    // Byte offset in source
	End    int    // Byte offset of end (exclusive)
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Value  string // For identifiers, literals, directives and errors
}

// Keywords maps keyword strings to their token kinds. Type names such as
// vec4 are identifiers; the parser resolves them.
var Keywords = map[string]TokenKind{
	"attribute":     TokAttribute,
	"break":         TokBreak,
	"centroid":      TokCentroid,
	"const":         TokConst,
	"continue":      TokContinue,
	"discard":       TokDiscard,
	"do":            TokDo,
	"else":          TokElse,
	"false":         TokFalse,
	"flat":          TokFlat,
	"for":           TokFor,
	"highp":         TokHighp,
	"if":            TokIf,
	"in":            TokIn,
	"inout":         TokInout,
	"invariant":     TokInvariant,
	"layout":        TokLayout,
	"lowp":          TokLowp,
	"mediump":       TokMediump,
	"noperspective": TokNoperspective,
	"out":           TokOut,
	"precision":     TokPrecision,
	"return":        TokReturn,
	"smooth":        TokSmooth,
	"struct":        TokStruct,
	"true":          TokTrue,
	"uniform":       TokUniform,
	"varying":       TokVarying,
	"while":         TokWhile,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes GLSL source code.
type Lexer struct {
	source    string
	pos       int
	line      int
	lineStart int

	// true until the first token of the current line is produced
	atLineStart bool
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{
		source:      source,
		line:        1,
		atLineStart: true,
	}
}

// Tokenize returns all tokens in the source, ending with EOF or the first
// error token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.source)/4)
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF || tok.Kind == TokError {
			break
		}
	}
	return tokens
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.source) {
		return l.token(TokEOF, l.pos, "")
	}

	start := l.pos
	ch := l.source[l.pos]
	first := l.atLineStart
	l.atLineStart = false

	if ch == '#' && first {
		return l.scanDirective()
	}
	if isIdentStart(ch) {
		return l.scanIdentOrKeyword()
	}
	if isDigit(ch) || (ch == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])) {
		return l.scanNumber()
	}
	if tok, ok := l.scanOperator(); ok {
		return tok
	}

	l.pos++
	return l.token(TokError, start, "unexpected character "+string(ch))
}

func (l *Lexer) token(kind TokenKind, start int, value string) Token {
	return Token{
		Kind:   kind,
		Start:  start,
		End:    l.pos,
		Line:   l.line,
		Column: start - l.lineStart + 1,
		Value:  value,
	}
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.pos
	l.atLineStart = true
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		switch {
		case ch == '\n':
			l.pos++
			l.newline()
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			l.pos++
		case ch == '\\' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '\n':
			// line continuation
			l.pos += 2
			l.line++
			l.lineStart = l.pos
		case ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/':
			l.pos += 2
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*':
			l.pos += 2
			for l.pos < len(l.source) {
				if l.source[l.pos] == '*' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				if l.source[l.pos] == '\n' {
					l.pos++
					l.line++
					l.lineStart = l.pos
					continue
				}
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanDirective() Token {
	start := l.pos
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.pos++
	}
	text := strings.TrimSpace(l.source[start+1 : l.pos])
	if i := strings.Index(text, "//"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return l.token(TokDirective, start, text)
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		l.pos++
	}
	text := l.source[start:l.pos]

	if kind, ok := Keywords[text]; ok {
		return l.token(kind, start, text)
	}
	if strings.HasPrefix(text, "gl_") || !strings.Contains(text, "__") {
		return l.token(TokIdent, start, text)
	}
	return l.token(TokError, start, "identifiers containing __ are reserved: "+text)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	kind := TokIntLiteral

	if l.source[l.pos] == '0' && l.pos+1 < len(l.source) &&
		(l.source[l.pos+1] == 'x' || l.source[l.pos+1] == 'X') {
		l.pos += 2
		digits := l.pos
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.pos++
		}
		if l.pos == digits {
			return l.token(TokError, start, "malformed hex literal")
		}
	} else {
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
		if l.pos < len(l.source) && l.source[l.pos] == '.' {
			kind = TokFloatLiteral
			l.pos++
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.pos++
			}
		}
		if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
			kind = TokFloatLiteral
			l.pos++
			if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
				l.pos++
			}
			exp := l.pos
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.pos++
			}
			if l.pos == exp {
				return l.token(TokError, start, "malformed exponent")
			}
		}
	}

	value := l.source[start:l.pos]

	if l.pos < len(l.source) {
		switch l.source[l.pos] {
		case 'u', 'U':
			if kind == TokIntLiteral {
				l.pos++
				return l.token(TokUintLiteral, start, value)
			}
		case 'f', 'F':
			if kind == TokFloatLiteral {
				l.pos++
				return l.token(TokFloatLiteral, start, value)
			}
		}
	}
	if l.pos < len(l.source) && isIdentStart(l.source[l.pos]) {
		return l.token(TokError, start, "invalid suffix on numeric literal")
	}

	return l.token(kind, start, value)
}

type operator struct {
	text string
	kind TokenKind
}

// operators ordered longest first so the scanner takes maximal munch.
var operators = []operator{
	{"<<=", TokLtLtEq}, {">>=", TokGtGtEq},
	{"++", TokPlusPlus}, {"--", TokMinusMinus}, {"&&", TokAmpAmp},
	{"||", TokPipePipe}, {"^^", TokCaretCaret}, {"<<", TokLtLt},
	{">>", TokGtGt}, {"<=", TokLtEq}, {">=", TokGtEq}, {"==", TokEqEq},
	{"!=", TokBangEq}, {"+=", TokPlusEq}, {"-=", TokMinusEq},
	{"*=", TokStarEq}, {"/=", TokSlashEq}, {"%=", TokPercentEq},
	{"&=", TokAmpEq}, {"|=", TokPipeEq}, {"^=", TokCaretEq},
	{"+", TokPlus}, {"-", TokMinus}, {"*", TokStar}, {"/", TokSlash},
	{"%", TokPercent}, {"&", TokAmp}, {"|", TokPipe}, {"^", TokCaret},
	{"~", TokTilde}, {"!", TokBang}, {"<", TokLt}, {">", TokGt},
	{"=", TokEq}, {".", TokDot}, {"?", TokQuestion}, {"(", TokLParen},
	{")", TokRParen}, {"{", TokLBrace}, {"}", TokRBrace}, {"[", TokLBracket},
	{"]", TokRBracket}, {";", TokSemicolon}, {":", TokColon}, {",", TokComma},
}

func (l *Lexer) scanOperator() (Token, bool) {
	rest := l.source[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			start := l.pos
			l.pos += len(op.text)
			return l.token(op.kind, start, op.text), true
		}
	}
	return Token{}, false
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
