// Package parser turns GLSL source into the arena tree used by the cost
// engine.
//
// Parsing and type checking happen in one recursive-descent pass: every
// expression node is created with its result shape already known, so the
// resulting tree is complete and immutable once Parse returns. The tree
// layout follows the usual reference-compiler conventions: declarations with
// initializers become assignments, for-loop initializers precede the loop in
// a sequence, single-argument built-ins are unary nodes, single-component
// swizzles are direct indexes, and const scalars fold into literals.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shadertune/internal/ast"
	"shadertune/internal/frontend/lexer"
)

// ParseError represents a parsing or type-checking error.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// bailout unwinds the parser after the first error.
type bailout struct{}

// Parser parses GLSL source into an ast.Tree.
type Parser struct {
	source string
	tokens []lexer.Token
	pos    int

	tree      *ast.Tree
	scope     *scope
	functions map[string][]*funcDecl
	structs   map[string]*structDecl
	macros    map[string]ast.Constant
	linker    []ast.NodeID

	errors []ParseError
}

// New creates a new parser for the given source.
func New(source string) *Parser {
	p := &Parser{
		source:    source,
		tokens:    lexer.New(source).Tokenize(),
		tree:      ast.NewTree(),
		scope:     newScope(nil),
		functions: make(map[string][]*funcDecl),
		structs:   make(map[string]*structDecl),
		macros:    make(map[string]ast.Constant),
	}
	for name, shape := range builtinVariables {
		p.scope.vars[name] = &variable{name: name, shape: shape}
	}
	return p
}

// Parse is shorthand for New(source).Parse().
func Parse(source string) (*ast.Tree, []ParseError) {
	return New(source).Parse()
}

// Parse parses the whole translation unit. On error the tree is nil and the
// returned slice holds the diagnostic.
func (p *Parser) Parse() (tree *ast.Tree, errs []ParseError) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			tree, errs = nil, p.errors
		}
	}()

	root := p.parseTranslationUnit()
	p.tree.Root = root
	return p.tree, nil
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if tok.Kind == lexer.TokError {
		p.failAt(tok, tok.Value)
	}
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.TokenKind) lexer.Token {
	tok := p.current()
	if tok.Kind != kind {
		p.fail(fmt.Sprintf("expected %s, got %s", kind, describe(tok)))
	}
	return p.advance()
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) fail(msg string) {
	p.failAt(p.current(), msg)
}

func (p *Parser) failAt(tok lexer.Token, msg string) {
	if tok.Kind == lexer.TokError && msg != tok.Value {
		msg = tok.Value
	}
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Line:    tok.Line,
		Column:  tok.Column,
	})
	panic(bailout{})
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokIdent, lexer.TokIntLiteral, lexer.TokFloatLiteral, lexer.TokUintLiteral:
		return fmt.Sprintf("'%s'", tok.Value)
	case lexer.TokError:
		return tok.Value
	default:
		return tok.Kind.String()
	}
}

func (p *Parser) pushScope() {
	p.scope = newScope(p.scope)
}

func (p *Parser) popScope() {
	if p.scope.parent != nil {
		p.scope = p.scope.parent
	}
}

func (p *Parser) add(n ast.Node) ast.NodeID {
	return p.tree.Add(n)
}

// ----------------------------------------------------------------------------
// Translation Unit
// ----------------------------------------------------------------------------

func (p *Parser) parseTranslationUnit() ast.NodeID {
	var items []ast.NodeID

	for p.current().Kind != lexer.TokEOF {
		switch p.current().Kind {
		case lexer.TokDirective:
			p.parseDirective(p.advance())
		case lexer.TokSemicolon:
			p.advance()
		case lexer.TokPrecision:
			p.advance()
			p.skipPrecision()
			p.parseTypeSpecifier()
			p.expect(lexer.TokSemicolon)
		default:
			items = append(items, p.parseExternalDeclaration()...)
		}
	}

	linker := p.add(ast.Node{
		Kind:     ast.KindSequence,
		Op:       ast.OpLinkerObjects,
		Children: p.linker,
	})
	items = append(items, linker)

	return p.add(ast.Node{
		Kind:     ast.KindSequence,
		Op:       ast.OpSequence,
		Line:     1,
		Children: items,
	})
}

func (p *Parser) parseDirective(tok lexer.Token) {
	fields := strings.Fields(tok.Value)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "version", "extension", "pragma", "line":
		return
	case "define":
		p.parseDefine(tok, fields[1:])
	case "if", "ifdef", "ifndef", "elif", "else", "endif", "undef":
		p.failAt(tok, fmt.Sprintf("preprocessor directive #%s is not supported", fields[0]))
	default:
		p.failAt(tok, fmt.Sprintf("unknown preprocessor directive #%s", fields[0]))
	}
}

// parseDefine accepts object-like macros whose body is one literal,
// optionally negated.
func (p *Parser) parseDefine(tok lexer.Token, fields []string) {
	if len(fields) == 0 {
		p.failAt(tok, "#define requires a name")
	}
	name := fields[0]
	if strings.Contains(name, "(") {
		p.failAt(tok, fmt.Sprintf("function-like macro %s is not supported", name))
	}

	body := lexer.New(strings.Join(fields[1:], " ")).Tokenize()
	negate := false
	if len(body) > 0 && body[0].Kind == lexer.TokMinus {
		negate = true
		body = body[1:]
	}
	if len(body) != 2 || body[1].Kind != lexer.TokEOF {
		p.failAt(tok, fmt.Sprintf("macro %s must expand to a single literal", name))
	}
	c, err := literalValue(body[0])
	if errors.Is(err, errLiteralTooBig) {
		p.failAt(tok, fmt.Sprintf("'%s' : %v", body[0].Value, err))
	}
	if err != nil {
		p.failAt(tok, fmt.Sprintf("macro %s must expand to a single literal", name))
	}
	if negate {
		c = negateConstant(c)
	}
	p.macros[name] = c
}

// errLiteralTooBig marks an int or uint literal that does not fit in 32 bits.
var errLiteralTooBig = errors.New("integer literal too big")

// literalValue converts a literal token. Integer literals are 32-bit: values
// up to 0xFFFFFFFF are accepted and int literals above math.MaxInt32 keep
// their two's complement bit pattern.
func literalValue(tok lexer.Token) (ast.Constant, error) {
	switch tok.Kind {
	case lexer.TokIntLiteral, lexer.TokUintLiteral:
		u, err := strconv.ParseUint(tok.Value, 0, 32)
		if errors.Is(err, strconv.ErrRange) {
			return ast.Constant{}, errLiteralTooBig
		}
		if err != nil {
			return ast.Constant{}, err
		}
		if tok.Kind == lexer.TokUintLiteral {
			return ast.Constant{Basic: ast.Uint, Int: int64(u)}, nil
		}
		return ast.Constant{Basic: ast.Int, Int: int64(int32(uint32(u)))}, nil
	case lexer.TokFloatLiteral:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return ast.Constant{}, err
		}
		return ast.Constant{Basic: ast.Float, Float: v}, nil
	case lexer.TokTrue:
		return ast.Constant{Basic: ast.Bool, Bool: true}, nil
	case lexer.TokFalse:
		return ast.Constant{Basic: ast.Bool, Bool: false}, nil
	}
	return ast.Constant{}, fmt.Errorf("not a literal")
}

func negateConstant(c ast.Constant) ast.Constant {
	switch c.Basic {
	case ast.Int, ast.Uint:
		c.Int = -c.Int
	case ast.Float:
		c.Float = -c.Float
	}
	return c
}

// ----------------------------------------------------------------------------
// Qualifiers and Types
// ----------------------------------------------------------------------------

type qualifiers struct {
	constant bool
	uniform  bool
}

func (p *Parser) parseQualifiers() qualifiers {
	var q qualifiers
	for {
		switch p.current().Kind {
		case lexer.TokConst:
			q.constant = true
		case lexer.TokUniform, lexer.TokAttribute:
			q.uniform = true
		case lexer.TokVarying, lexer.TokIn, lexer.TokOut, lexer.TokInout,
			lexer.TokCentroid, lexer.TokFlat, lexer.TokSmooth, lexer.TokNoperspective,
			lexer.TokInvariant, lexer.TokHighp, lexer.TokMediump, lexer.TokLowp:
		case lexer.TokLayout:
			p.advance()
			p.skipParens()
			continue
		default:
			return q
		}
		p.advance()
	}
}

func (p *Parser) skipPrecision() {
	switch p.current().Kind {
	case lexer.TokHighp, lexer.TokMediump, lexer.TokLowp:
		p.advance()
	default:
		p.fail("expected precision qualifier")
	}
}

func (p *Parser) skipParens() {
	p.expect(lexer.TokLParen)
	depth := 1
	for depth > 0 {
		switch p.advance().Kind {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
		case lexer.TokEOF:
			p.fail("unterminated parenthesis")
		}
	}
}

// isTypeName reports whether an identifier names a type.
func (p *Parser) isTypeName(name string) bool {
	if _, ok := builtinTypes[name]; ok {
		return true
	}
	_, ok := p.structs[name]
	return ok
}

func (p *Parser) startsDeclaration() bool {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokConst, lexer.TokUniform, lexer.TokAttribute, lexer.TokVarying,
		lexer.TokIn, lexer.TokOut, lexer.TokInout, lexer.TokCentroid, lexer.TokFlat,
		lexer.TokSmooth, lexer.TokNoperspective, lexer.TokInvariant, lexer.TokHighp,
		lexer.TokMediump, lexer.TokLowp, lexer.TokLayout, lexer.TokStruct:
		return true
	case lexer.TokIdent:
		return p.isTypeName(tok.Value) && p.peek(1).Kind == lexer.TokIdent
	}
	return false
}

func (p *Parser) parseTypeSpecifier() ast.Shape {
	tok := p.current()
	if tok.Kind == lexer.TokStruct {
		return p.parseStruct()
	}
	if tok.Kind != lexer.TokIdent {
		p.fail(fmt.Sprintf("expected type, got %s", describe(tok)))
	}
	p.advance()
	if shape, ok := builtinTypes[tok.Value]; ok {
		return shape
	}
	if _, ok := p.structs[tok.Value]; ok {
		return ast.Shape{Basic: ast.Struct, TypeName: tok.Value}
	}
	p.failAt(tok, fmt.Sprintf("'%s' : unknown type", tok.Value))
	return ast.VoidShape
}

func (p *Parser) parseStruct() ast.Shape {
	p.expect(lexer.TokStruct)
	nameTok := p.expect(lexer.TokIdent)
	if p.isTypeName(nameTok.Value) {
		p.failAt(nameTok, fmt.Sprintf("'%s' : redefinition", nameTok.Value))
	}
	decl := &structDecl{name: nameTok.Value}
	p.expect(lexer.TokLBrace)
	for !p.match(lexer.TokRBrace) {
		p.parseQualifiers()
		fieldShape := p.parseTypeSpecifier()
		for {
			fieldTok := p.expect(lexer.TokIdent)
			shape := p.parseArraySuffix(fieldShape)
			if idx, _ := decl.field(fieldTok.Value); idx >= 0 {
				p.failAt(fieldTok, fmt.Sprintf("'%s' : duplicate field name", fieldTok.Value))
			}
			decl.fields = append(decl.fields, structField{name: fieldTok.Value, shape: shape})
			if !p.match(lexer.TokComma) {
				break
			}
		}
		p.expect(lexer.TokSemicolon)
	}
	p.structs[decl.name] = decl
	return ast.Shape{Basic: ast.Struct, TypeName: decl.name}
}

func (p *Parser) parseArraySuffix(shape ast.Shape) ast.Shape {
	if !p.match(lexer.TokLBracket) {
		return shape
	}
	if shape.IsArray() {
		p.fail("arrays of arrays are not supported")
	}
	tok := p.current()
	size := p.parseConditional()
	n := p.tree.Node(size)
	if n.Kind != ast.KindConstant || (n.Value.Basic != ast.Int && n.Value.Basic != ast.Uint) || n.Value.Int <= 0 {
		p.failAt(tok, "array size must be a positive integer constant")
	}
	p.expect(lexer.TokRBracket)
	shape.ArrayLen = int(n.Value.Int)
	return shape
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseExternalDeclaration() []ast.NodeID {
	q := p.parseQualifiers()

	// "invariant gl_Position;" style redeclarations
	if p.current().Kind == lexer.TokIdent && !p.isTypeName(p.current().Value) && p.peek(1).Kind == lexer.TokSemicolon {
		p.advance()
		p.advance()
		return nil
	}

	shape := p.parseTypeSpecifier()
	if p.match(lexer.TokSemicolon) {
		// bare struct declaration
		return nil
	}

	if p.current().Kind == lexer.TokIdent && p.peek(1).Kind == lexer.TokLParen {
		if fn := p.parseFunction(shape); fn.Valid() {
			return []ast.NodeID{fn}
		}
		return nil
	}

	decl := p.parseDeclarators(q, shape, true)
	if decl.Valid() {
		return []ast.NodeID{decl}
	}
	return nil
}

// parseDeclarators parses "name [N] [= init], ..." and the trailing
// semicolon. Initialized declarations become assignments; the returned id is
// NoNode when nothing was initialized.
func (p *Parser) parseDeclarators(q qualifiers, shape ast.Shape, global bool) ast.NodeID {
	if shape.Basic == ast.Void {
		p.fail("illegal use of type 'void'")
	}

	var assigns []ast.NodeID
	for {
		nameTok := p.expect(lexer.TokIdent)
		if p.isTypeName(nameTok.Value) || p.scope.vars[nameTok.Value] != nil {
			p.failAt(nameTok, fmt.Sprintf("'%s' : redefinition", nameTok.Value))
		}
		varShape := p.parseArraySuffix(shape)
		v := &variable{name: nameTok.Value, shape: varShape, readonly: q.constant || q.uniform}

		if p.match(lexer.TokEq) {
			if q.uniform {
				p.failAt(nameTok, fmt.Sprintf("'%s' : cannot initialize this type of qualifier", nameTok.Value))
			}
			init := p.parseAssignment()
			initNode := p.tree.Node(init)
			if !assignable(varShape, initNode.Shape) {
				p.failAt(nameTok, fmt.Sprintf("'=' : cannot convert from '%s' to '%s'", initNode.Shape, varShape))
			}
			if q.constant && initNode.Kind == ast.KindConstant && varShape.IsScalar() {
				c := initNode.Value
				if varShape.Basic == ast.Float && c.Basic != ast.Float {
					c = ast.Constant{Basic: ast.Float, Float: float64(c.Int)}
				}
				v.constant = &c
			} else {
				sym := p.add(ast.Node{Kind: ast.KindSymbol, Name: v.name, Shape: varShape, Line: nameTok.Line})
				assigns = append(assigns, p.add(ast.Node{
					Kind:     ast.KindBinary,
					Op:       ast.OpAssign,
					Shape:    varShape,
					Line:     nameTok.Line,
					Children: []ast.NodeID{sym, init},
				}))
			}
		} else if q.constant {
			p.failAt(nameTok, fmt.Sprintf("'%s' : variables with qualifier 'const' must be initialized", nameTok.Value))
		}

		p.scope.vars[v.name] = v
		if global && v.constant == nil {
			p.linker = append(p.linker, p.add(ast.Node{
				Kind:  ast.KindSymbol,
				Name:  v.name,
				Shape: varShape,
				Line:  nameTok.Line,
			}))
		}

		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokSemicolon)

	switch len(assigns) {
	case 0:
		return ast.NoNode
	case 1:
		return assigns[0]
	default:
		return p.add(ast.Node{
			Kind:     ast.KindSequence,
			Op:       ast.OpSequence,
			Line:     p.tree.Node(assigns[0]).Line,
			Children: assigns,
		})
	}
}

type param struct {
	name  string
	shape ast.Shape
	line  int
}

func (p *Parser) parseFunction(ret ast.Shape) ast.NodeID {
	nameTok := p.expect(lexer.TokIdent)
	if _, ok := builtinFuncs[nameTok.Value]; ok {
		p.failAt(nameTok, fmt.Sprintf("'%s' : cannot redefine a built-in function", nameTok.Value))
	}
	if p.isTypeName(nameTok.Value) {
		p.failAt(nameTok, fmt.Sprintf("'%s' : redefinition", nameTok.Value))
	}
	p.expect(lexer.TokLParen)

	var params []param
	if p.current().Kind == lexer.TokIdent && p.current().Value == "void" && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
	}
	for p.current().Kind != lexer.TokRParen {
		if len(params) > 0 {
			p.expect(lexer.TokComma)
		}
		p.parseQualifiers()
		shape := p.parseTypeSpecifier()
		if shape.Basic == ast.Void {
			p.fail("illegal use of type 'void'")
		}
		prm := param{shape: shape, line: p.current().Line}
		if p.current().Kind == lexer.TokIdent {
			prm.name = p.advance().Value
		}
		prm.shape = p.parseArraySuffix(prm.shape)
		params = append(params, prm)
	}
	p.expect(lexer.TokRParen)

	shapes := make([]ast.Shape, len(params))
	for i, prm := range params {
		shapes[i] = prm.shape
	}
	decl := p.declareFunction(nameTok, ret, shapes)

	if p.match(lexer.TokSemicolon) {
		return ast.NoNode
	}
	if decl.defined {
		p.failAt(nameTok, fmt.Sprintf("'%s' : function already has a body", nameTok.Value))
	}
	decl.defined = true

	p.pushScope()
	defer p.popScope()

	paramIDs := make([]ast.NodeID, 0, len(params))
	for _, prm := range params {
		if prm.name == "" {
			continue
		}
		p.scope.vars[prm.name] = &variable{name: prm.name, shape: prm.shape}
		paramIDs = append(paramIDs, p.add(ast.Node{
			Kind:  ast.KindSymbol,
			Name:  prm.name,
			Shape: prm.shape,
			Line:  prm.line,
		}))
	}
	paramSeq := p.add(ast.Node{
		Kind:     ast.KindSequence,
		Op:       ast.OpParameters,
		Line:     nameTok.Line,
		Children: paramIDs,
	})

	body := p.parseBlock(false)

	return p.add(ast.Node{
		Kind:      ast.KindFunction,
		Op:        ast.OpFunction,
		Name:      decl.name,
		Signature: decl.signature,
		Shape:     ret,
		Line:      nameTok.Line,
		Children:  []ast.NodeID{paramSeq, body},
	})
}

func (p *Parser) declareFunction(nameTok lexer.Token, ret ast.Shape, params []ast.Shape) *funcDecl {
	sig := signatureOf(nameTok.Value, params)
	for _, existing := range p.functions[nameTok.Value] {
		if existing.signature == sig {
			if !existing.ret.Equal(ret) {
				p.failAt(nameTok, fmt.Sprintf("'%s' : overloaded functions must have the same return type", nameTok.Value))
			}
			return existing
		}
	}
	decl := &funcDecl{name: nameTok.Value, signature: sig, params: params, ret: ret}
	p.functions[decl.name] = append(p.functions[decl.name], decl)
	return decl
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// parseBlock parses "{ ... }". newScope is false for function bodies, whose
// scope already holds the parameters.
func (p *Parser) parseBlock(newScope bool) ast.NodeID {
	open := p.expect(lexer.TokLBrace)
	if newScope {
		p.pushScope()
		defer p.popScope()
	}

	var stmts []ast.NodeID
	for p.current().Kind != lexer.TokRBrace {
		if p.current().Kind == lexer.TokEOF {
			p.fail("unexpected end of file, expected }")
		}
		if stmt := p.parseStatement(); stmt.Valid() {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(lexer.TokRBrace)

	return p.add(ast.Node{
		Kind:     ast.KindSequence,
		Op:       ast.OpSequence,
		Line:     open.Line,
		Children: stmts,
	})
}

func (p *Parser) parseStatement() ast.NodeID {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokLBrace:
		return p.parseBlock(true)
	case lexer.TokSemicolon:
		p.advance()
		return ast.NoNode
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokDo:
		return p.parseDoWhile()
	case lexer.TokReturn:
		p.advance()
		var children []ast.NodeID
		if p.current().Kind != lexer.TokSemicolon {
			children = append(children, p.parseExpression())
		}
		p.expect(lexer.TokSemicolon)
		return p.add(ast.Node{Kind: ast.KindBranch, Op: ast.OpReturn, Line: tok.Line, Children: children})
	case lexer.TokBreak, lexer.TokContinue, lexer.TokDiscard:
		p.advance()
		p.expect(lexer.TokSemicolon)
		op := map[lexer.TokenKind]ast.Op{
			lexer.TokBreak:    ast.OpBreak,
			lexer.TokContinue: ast.OpContinue,
			lexer.TokDiscard:  ast.OpDiscard,
		}[tok.Kind]
		return p.add(ast.Node{Kind: ast.KindBranch, Op: op, Line: tok.Line})
	case lexer.TokDirective:
		p.parseDirective(p.advance())
		return ast.NoNode
	}

	if p.startsDeclaration() {
		q := p.parseQualifiers()
		shape := p.parseTypeSpecifier()
		if p.match(lexer.TokSemicolon) {
			return ast.NoNode
		}
		return p.parseDeclarators(q, shape, false)
	}

	expr := p.parseExpression()
	p.expect(lexer.TokSemicolon)
	return expr
}

// parseSubStatement parses the body of a control statement; an empty
// statement becomes an empty sequence so the parent always has a body.
func (p *Parser) parseSubStatement() ast.NodeID {
	line := p.current().Line
	p.pushScope()
	stmt := p.parseStatement()
	p.popScope()
	if stmt.Valid() {
		return stmt
	}
	return p.add(ast.Node{Kind: ast.KindSequence, Op: ast.OpSequence, Line: line})
}

func (p *Parser) parseCondition() ast.NodeID {
	p.expect(lexer.TokLParen)
	tok := p.current()
	cond := p.parseExpression()
	if !p.tree.Node(cond).Shape.Equal(ast.ScalarOf(ast.Bool)) {
		p.failAt(tok, "boolean expression expected")
	}
	p.expect(lexer.TokRParen)
	return cond
}

func (p *Parser) parseIf() ast.NodeID {
	tok := p.expect(lexer.TokIf)
	cond := p.parseCondition()
	children := []ast.NodeID{cond, p.parseSubStatement()}
	if p.match(lexer.TokElse) {
		children = append(children, p.parseSubStatement())
	}
	return p.add(ast.Node{Kind: ast.KindSelection, Shape: ast.VoidShape, Line: tok.Line, Children: children})
}

func (p *Parser) parseFor() ast.NodeID {
	tok := p.expect(lexer.TokFor)
	p.expect(lexer.TokLParen)
	p.pushScope()
	defer p.popScope()

	init := ast.NoNode
	switch {
	case p.match(lexer.TokSemicolon):
	case p.startsDeclaration():
		q := p.parseQualifiers()
		init = p.parseDeclarators(q, p.parseTypeSpecifier(), false)
	default:
		init = p.parseExpression()
		p.expect(lexer.TokSemicolon)
	}

	test := ast.NoNode
	if p.current().Kind != lexer.TokSemicolon {
		condTok := p.current()
		test = p.parseExpression()
		if !p.tree.Node(test).Shape.Equal(ast.ScalarOf(ast.Bool)) {
			p.failAt(condTok, "boolean expression expected")
		}
	}
	p.expect(lexer.TokSemicolon)

	terminal := ast.NoNode
	if p.current().Kind != lexer.TokRParen {
		terminal = p.parseExpression()
	}
	p.expect(lexer.TokRParen)

	body := p.parseSubStatement()
	loop := p.add(ast.Node{
		Kind:     ast.KindLoop,
		Line:     tok.Line,
		Test:     test,
		Body:     body,
		Terminal: terminal,
	})
	if !init.Valid() {
		return loop
	}
	return p.add(ast.Node{
		Kind:     ast.KindSequence,
		Op:       ast.OpSequence,
		Line:     tok.Line,
		Children: []ast.NodeID{init, loop},
	})
}

func (p *Parser) parseWhile() ast.NodeID {
	tok := p.expect(lexer.TokWhile)
	test := p.parseCondition()
	body := p.parseSubStatement()
	return p.add(ast.Node{
		Kind:     ast.KindLoop,
		Line:     tok.Line,
		Test:     test,
		Body:     body,
		Terminal: ast.NoNode,
	})
}

func (p *Parser) parseDoWhile() ast.NodeID {
	tok := p.expect(lexer.TokDo)
	body := p.parseSubStatement()
	p.expect(lexer.TokWhile)
	test := p.parseCondition()
	p.expect(lexer.TokSemicolon)
	return p.add(ast.Node{
		Kind:     ast.KindLoop,
		Line:     tok.Line,
		Test:     test,
		Body:     body,
		Terminal: ast.NoNode,
		DoWhile:  true,
	})
}
