package parser

import (
	"errors"
	"fmt"
	"strings"

	"shadertune/internal/ast"
	"shadertune/internal/frontend/lexer"
)

// ----------------------------------------------------------------------------
// Comma and Assignment
// ----------------------------------------------------------------------------

func (p *Parser) parseExpression() ast.NodeID {
	expr := p.parseAssignment()
	for p.current().Kind == lexer.TokComma {
		tok := p.advance()
		right := p.parseAssignment()
		expr = p.add(ast.Node{
			Kind:     ast.KindBinary,
			Op:       ast.OpComma,
			Shape:    p.tree.Node(right).Shape,
			Line:     tok.Line,
			Children: []ast.NodeID{expr, right},
		})
	}
	return expr
}

var assignOps = map[lexer.TokenKind]ast.Op{
	lexer.TokEq:        ast.OpAssign,
	lexer.TokPlusEq:    ast.OpAddAssign,
	lexer.TokMinusEq:   ast.OpSubAssign,
	lexer.TokStarEq:    ast.OpMulAssign,
	lexer.TokSlashEq:   ast.OpDivAssign,
	lexer.TokPercentEq: ast.OpModAssign,
	lexer.TokAmpEq:     ast.OpAndAssign,
	lexer.TokPipeEq:    ast.OpOrAssign,
	lexer.TokCaretEq:   ast.OpXorAssign,
	lexer.TokLtLtEq:    ast.OpShlAssign,
	lexer.TokGtGtEq:    ast.OpShrAssign,
}

// compoundBase maps a compound assignment to the arithmetic it performs.
var compoundBase = map[ast.Op]ast.Op{
	ast.OpAddAssign: ast.OpAdd,
	ast.OpSubAssign: ast.OpSub,
	ast.OpMulAssign: ast.OpMul,
	ast.OpDivAssign: ast.OpDiv,
	ast.OpModAssign: ast.OpMod,
	ast.OpAndAssign: ast.OpBitAnd,
	ast.OpOrAssign:  ast.OpBitOr,
	ast.OpXorAssign: ast.OpBitXor,
	ast.OpShlAssign: ast.OpShl,
	ast.OpShrAssign: ast.OpShr,
}

func (p *Parser) parseAssignment() ast.NodeID {
	startTok := p.current()
	left := p.parseConditional()

	op, ok := assignOps[p.current().Kind]
	if !ok {
		return left
	}
	opTok := p.advance()
	p.checkLValue(left, startTok, opTok.Kind.String())
	right := p.parseAssignment()

	leftShape := p.tree.Node(left).Shape
	rightShape := p.tree.Node(right).Shape
	if op == ast.OpAssign {
		if !assignable(leftShape, rightShape) {
			p.failAt(opTok, fmt.Sprintf("'=' : cannot convert from '%s' to '%s'", rightShape, leftShape))
		}
	} else {
		result, ok := binaryResult(compoundBase[op], leftShape, rightShape)
		if !ok || !assignable(leftShape, result) {
			p.failAt(opTok, fmt.Sprintf("'%s' : wrong operand types: '%s' and '%s'", opTok.Kind, leftShape, rightShape))
		}
	}

	return p.add(ast.Node{
		Kind:     ast.KindBinary,
		Op:       op,
		Shape:    leftShape,
		Line:     opTok.Line,
		Children: []ast.NodeID{left, right},
	})
}

// checkLValue fails unless id names writable storage.
func (p *Parser) checkLValue(id ast.NodeID, tok lexer.Token, op string) {
	n := p.tree.Node(id)
	switch {
	case n.Kind == ast.KindSymbol:
		if v := p.scope.lookup(n.Name); v != nil && v.readonly {
			p.failAt(tok, fmt.Sprintf("'%s' : l-value required (can't modify a const or uniform '%s')", op, n.Name))
		}
		return
	case n.Kind == ast.KindBinary && (n.Op == ast.OpIndexDirect || n.Op == ast.OpIndexIndirect ||
		n.Op == ast.OpIndexDirectStruct || n.Op == ast.OpVectorSwizzle):
		p.checkLValue(n.Left(), tok, op)
		return
	}
	p.failAt(tok, fmt.Sprintf("'%s' : l-value required", op))
}

// assignable reports whether a value of shape from can be stored in to.
// Integer values convert implicitly to float of the same dimensions.
func assignable(to, from ast.Shape) bool {
	if to.Equal(from) {
		return true
	}
	if to.Basic == ast.Float && (from.Basic == ast.Int || from.Basic == ast.Uint) {
		from.Basic = ast.Float
		return to.Equal(from)
	}
	return false
}

// ----------------------------------------------------------------------------
// Conditional and Binary Operators
// ----------------------------------------------------------------------------

func (p *Parser) parseConditional() ast.NodeID {
	cond := p.parseBinary(1)
	if p.current().Kind != lexer.TokQuestion {
		return cond
	}
	tok := p.advance()
	if !p.tree.Node(cond).Shape.Equal(ast.ScalarOf(ast.Bool)) {
		p.failAt(tok, "boolean expression expected")
	}
	then := p.parseExpression()
	colon := p.expect(lexer.TokColon)
	els := p.parseAssignment()

	thenShape := p.tree.Node(then).Shape
	elsShape := p.tree.Node(els).Shape
	shape, ok := commonShape(thenShape, elsShape)
	if !ok {
		p.failAt(colon, fmt.Sprintf("':' : wrong operand types: '%s' and '%s'", thenShape, elsShape))
	}
	return p.add(ast.Node{
		Kind:     ast.KindSelection,
		Shape:    shape,
		Line:     tok.Line,
		Children: []ast.NodeID{cond, then, els},
	})
}

type binaryOp struct {
	prec int
	op   ast.Op
}

var binaryOps = map[lexer.TokenKind]binaryOp{
	lexer.TokPipePipe:   {1, ast.OpLogicalOr},
	lexer.TokCaretCaret: {2, ast.OpLogicalXor},
	lexer.TokAmpAmp:     {3, ast.OpLogicalAnd},
	lexer.TokPipe:       {4, ast.OpBitOr},
	lexer.TokCaret:      {5, ast.OpBitXor},
	lexer.TokAmp:        {6, ast.OpBitAnd},
	lexer.TokEqEq:       {7, ast.OpEqual},
	lexer.TokBangEq:     {7, ast.OpNotEqual},
	lexer.TokLt:         {8, ast.OpLessThan},
	lexer.TokGt:         {8, ast.OpGreaterThan},
	lexer.TokLtEq:       {8, ast.OpLessThanEqual},
	lexer.TokGtEq:       {8, ast.OpGreaterThanEqual},
	lexer.TokLtLt:       {9, ast.OpShl},
	lexer.TokGtGt:       {9, ast.OpShr},
	lexer.TokPlus:       {10, ast.OpAdd},
	lexer.TokMinus:      {10, ast.OpSub},
	lexer.TokStar:       {11, ast.OpMul},
	lexer.TokSlash:      {11, ast.OpDiv},
	lexer.TokPercent:    {11, ast.OpMod},
}

// parseBinary implements precedence climbing over the left-associative
// binary operators.
func (p *Parser) parseBinary(minPrec int) ast.NodeID {
	left := p.parseUnary()
	for {
		info, ok := binaryOps[p.current().Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		tok := p.advance()
		right := p.parseBinary(info.prec + 1)

		leftShape := p.tree.Node(left).Shape
		rightShape := p.tree.Node(right).Shape
		shape, ok := binaryResult(info.op, leftShape, rightShape)
		if !ok {
			p.failAt(tok, fmt.Sprintf("'%s' : wrong operand types: no operation '%s' exists that takes a left-hand operand of type '%s' and a right operand of type '%s'",
				tok.Kind, tok.Kind, leftShape, rightShape))
		}
		left = p.add(ast.Node{
			Kind:     ast.KindBinary,
			Op:       info.op,
			Shape:    shape,
			Line:     tok.Line,
			Children: []ast.NodeID{left, right},
		})
	}
}

// commonShape returns the shape two operands share after implicit
// int-to-float conversion.
func commonShape(a, b ast.Shape) (ast.Shape, bool) {
	switch {
	case a.Equal(b):
		return a, true
	case assignable(a, b):
		return a, true
	case assignable(b, a):
		return b, true
	}
	return ast.Shape{}, false
}

func isNumeric(s ast.Shape) bool {
	return s.Elements() > 0 && s.Basic != ast.Bool
}

func isInteger(s ast.Shape) bool {
	return s.Elements() > 0 && !s.IsMatrix() && (s.Basic == ast.Int || s.Basic == ast.Uint)
}

// binaryResult type-checks a binary operator and returns its result shape.
func binaryResult(op ast.Op, l, r ast.Shape) (ast.Shape, bool) {
	boolean := ast.ScalarOf(ast.Bool)

	switch op {
	case ast.OpLogicalOr, ast.OpLogicalXor, ast.OpLogicalAnd:
		return boolean, l.Equal(boolean) && r.Equal(boolean)

	case ast.OpEqual, ast.OpNotEqual:
		_, ok := commonShape(l, r)
		return boolean, ok && !l.IsArray() && l.Basic != ast.Sampler && l.Basic != ast.Void

	case ast.OpLessThan, ast.OpGreaterThan, ast.OpLessThanEqual, ast.OpGreaterThanEqual:
		_, ok := commonShape(l, r)
		return boolean, ok && l.IsScalar() && isNumeric(l)

	case ast.OpMod, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		if !isInteger(l) || !isInteger(r) {
			return ast.Shape{}, false
		}
		if op == ast.OpShl || op == ast.OpShr {
			return l, r.IsScalar() || r.Elements() == l.Elements()
		}
		return componentwise(l, r)

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if !isNumeric(l) || !isNumeric(r) {
			return ast.Shape{}, false
		}
		if op == ast.OpMul {
			if shape, ok, handled := linearAlgebra(l, r); handled {
				return shape, ok
			}
		}
		return componentwise(l, r)
	}
	return ast.Shape{}, false
}

// componentwise handles same-shape operands and scalar broadcast.
func componentwise(l, r ast.Shape) (ast.Shape, bool) {
	if s, ok := commonShape(l, r); ok {
		return s, true
	}
	lb, rb := ast.ScalarOf(l.Basic), ast.ScalarOf(r.Basic)
	switch {
	case l.IsScalar():
		if _, ok := commonShape(l, rb); ok {
			return promote(r, l.Basic), true
		}
	case r.IsScalar():
		if _, ok := commonShape(lb, r); ok {
			return promote(l, r.Basic), true
		}
	}
	return ast.Shape{}, false
}

func promote(s ast.Shape, other ast.Basic) ast.Shape {
	if other == ast.Float {
		s.Basic = ast.Float
	}
	return s
}

// linearAlgebra handles matrix products. handled is false when neither
// operand is a matrix.
func linearAlgebra(l, r ast.Shape) (shape ast.Shape, ok, handled bool) {
	switch {
	case l.IsMatrix() && r.IsMatrix():
		if l.Cols != r.Rows {
			return ast.Shape{}, false, true
		}
		return ast.MatrixOf(int(r.Cols), int(l.Rows)), true, true
	case l.IsMatrix() && r.IsVector():
		if int(l.Cols) != r.Elements() {
			return ast.Shape{}, false, true
		}
		return ast.VectorOf(ast.Float, int(l.Rows)), true, true
	case l.IsVector() && r.IsMatrix():
		if l.Elements() != int(r.Rows) {
			return ast.Shape{}, false, true
		}
		return ast.VectorOf(ast.Float, int(r.Cols)), true, true
	}
	return ast.Shape{}, false, false
}

// ----------------------------------------------------------------------------
// Unary and Postfix
// ----------------------------------------------------------------------------

func (p *Parser) parseUnary() ast.NodeID {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokPlus:
		p.advance()
		operand := p.parseUnary()
		if !isNumeric(p.tree.Node(operand).Shape) {
			p.failAt(tok, "'+' : wrong operand type")
		}
		return operand

	case lexer.TokMinus:
		p.advance()
		operand := p.parseUnary()
		n := p.tree.Node(operand)
		if !isNumeric(n.Shape) {
			p.failAt(tok, fmt.Sprintf("'-' : wrong operand type '%s'", n.Shape))
		}
		if n.Kind == ast.KindConstant {
			return p.add(ast.Node{
				Kind:  ast.KindConstant,
				Value: negateConstant(n.Value),
				Shape: n.Shape,
				Line:  tok.Line,
			})
		}
		return p.unary(ast.OpNegate, operand, n.Shape, tok.Line)

	case lexer.TokBang:
		p.advance()
		operand := p.parseUnary()
		shape := p.tree.Node(operand).Shape
		if !shape.Equal(ast.ScalarOf(ast.Bool)) {
			p.failAt(tok, fmt.Sprintf("'!' : wrong operand type '%s'", shape))
		}
		return p.unary(ast.OpLogicalNot, operand, shape, tok.Line)

	case lexer.TokTilde:
		p.advance()
		operand := p.parseUnary()
		shape := p.tree.Node(operand).Shape
		if !isInteger(shape) {
			p.failAt(tok, fmt.Sprintf("'~' : wrong operand type '%s'", shape))
		}
		return p.unary(ast.OpBitwiseNot, operand, shape, tok.Line)

	case lexer.TokPlusPlus, lexer.TokMinusMinus:
		p.advance()
		start := p.current()
		operand := p.parseUnary()
		p.checkLValue(operand, start, tok.Kind.String())
		shape := p.tree.Node(operand).Shape
		if !isNumeric(shape) {
			p.failAt(tok, fmt.Sprintf("'%s' : wrong operand type '%s'", tok.Kind, shape))
		}
		op := ast.OpPreIncrement
		if tok.Kind == lexer.TokMinusMinus {
			op = ast.OpPreDecrement
		}
		return p.unary(op, operand, shape, tok.Line)
	}
	return p.parsePostfix()
}

func (p *Parser) unary(op ast.Op, operand ast.NodeID, shape ast.Shape, line int) ast.NodeID {
	return p.add(ast.Node{
		Kind:     ast.KindUnary,
		Op:       op,
		Shape:    shape,
		Line:     line,
		Children: []ast.NodeID{operand},
	})
}

func (p *Parser) parsePostfix() ast.NodeID {
	start := p.current()
	expr := p.parsePrimary()

	for {
		tok := p.current()
		switch tok.Kind {
		case lexer.TokLBracket:
			p.advance()
			expr = p.parseIndex(expr, tok)
			p.expect(lexer.TokRBracket)

		case lexer.TokDot:
			p.advance()
			expr = p.parseSelector(expr, p.expect(lexer.TokIdent))

		case lexer.TokPlusPlus, lexer.TokMinusMinus:
			p.advance()
			p.checkLValue(expr, start, tok.Kind.String())
			shape := p.tree.Node(expr).Shape
			if !isNumeric(shape) {
				p.failAt(tok, fmt.Sprintf("'%s' : wrong operand type '%s'", tok.Kind, shape))
			}
			op := ast.OpPostIncrement
			if tok.Kind == lexer.TokMinusMinus {
				op = ast.OpPostDecrement
			}
			expr = p.unary(op, expr, shape, tok.Line)

		default:
			return expr
		}
	}
}

func (p *Parser) parseIndex(base ast.NodeID, tok lexer.Token) ast.NodeID {
	baseShape := p.tree.Node(base).Shape
	if !baseShape.IsArray() && !baseShape.IsVector() && !baseShape.IsMatrix() {
		p.failAt(tok, "'[' : left of '[' is not of type array, matrix, or vector")
	}

	index := p.parseExpression()
	idx := p.tree.Node(index)
	if !idx.Shape.IsScalar() || (idx.Shape.Basic != ast.Int && idx.Shape.Basic != ast.Uint) {
		p.failAt(tok, "'[' : integer expression required")
	}

	op := ast.OpIndexIndirect
	if idx.Kind == ast.KindConstant {
		op = ast.OpIndexDirect
		limit := indexLimit(baseShape)
		if idx.Value.Int < 0 || idx.Value.Int >= int64(limit) {
			p.failAt(tok, fmt.Sprintf("'[' : index out of range '%d'", idx.Value.Int))
		}
	}

	return p.add(ast.Node{
		Kind:     ast.KindBinary,
		Op:       op,
		Shape:    baseShape.Elem(),
		Line:     tok.Line,
		Children: []ast.NodeID{base, index},
	})
}

func indexLimit(s ast.Shape) int {
	switch {
	case s.IsArray():
		return s.ArrayLen
	case s.IsMatrix():
		return int(s.Cols)
	default:
		return int(s.Rows)
	}
}

var swizzleSets = []string{"xyzw", "rgba", "stpq"}

// parseSelector handles ".field" on structs and ".xyzw" swizzles on
// vectors and scalars. A single component becomes a direct index.
func (p *Parser) parseSelector(base ast.NodeID, nameTok lexer.Token) ast.NodeID {
	baseShape := p.tree.Node(base).Shape
	name := nameTok.Value

	if baseShape.Basic == ast.Struct && !baseShape.IsArray() {
		decl := p.structs[baseShape.TypeName]
		idx, field := decl.field(name)
		if field == nil {
			p.failAt(nameTok, fmt.Sprintf("'%s' : no such field in structure", name))
		}
		return p.add(ast.Node{
			Kind:     ast.KindBinary,
			Op:       ast.OpIndexDirectStruct,
			Shape:    field.shape,
			Line:     nameTok.Line,
			Children: []ast.NodeID{base, p.intConstant(int64(idx), nameTok.Line)},
		})
	}

	if !baseShape.IsVector() && !baseShape.IsScalar() {
		p.failAt(nameTok, fmt.Sprintf("'%s' : field selection requires structure, vector, or scalar on left hand side", name))
	}

	components := swizzleComponents(name, int(baseShape.Rows))
	if components == nil {
		p.failAt(nameTok, fmt.Sprintf("'%s' : vector swizzle selection out of range or illegal", name))
	}

	if len(components) == 1 {
		return p.add(ast.Node{
			Kind:     ast.KindBinary,
			Op:       ast.OpIndexDirect,
			Shape:    ast.ScalarOf(baseShape.Basic),
			Line:     nameTok.Line,
			Children: []ast.NodeID{base, p.intConstant(int64(components[0]), nameTok.Line)},
		})
	}

	selectors := make([]ast.NodeID, len(components))
	for i, c := range components {
		selectors[i] = p.intConstant(int64(c), nameTok.Line)
	}
	selector := p.add(ast.Node{
		Kind:     ast.KindAggregate,
		Op:       ast.OpSwizzleSelector,
		Line:     nameTok.Line,
		Children: selectors,
	})
	return p.add(ast.Node{
		Kind:     ast.KindBinary,
		Op:       ast.OpVectorSwizzle,
		Shape:    ast.VectorOf(baseShape.Basic, len(components)),
		Line:     nameTok.Line,
		Children: []ast.NodeID{base, selector},
	})
}

// swizzleComponents maps a swizzle to component indexes, or nil when it
// mixes sets, is too long or reaches past width.
func swizzleComponents(name string, width int) []int {
	if len(name) == 0 || len(name) > 4 {
		return nil
	}
	for _, set := range swizzleSets {
		if !strings.ContainsRune(set, rune(name[0])) {
			continue
		}
		out := make([]int, len(name))
		for i := 0; i < len(name); i++ {
			idx := strings.IndexByte(set, name[i])
			if idx < 0 || idx >= width {
				return nil
			}
			out[i] = idx
		}
		return out
	}
	return nil
}

// ----------------------------------------------------------------------------
// Primary Expressions
// ----------------------------------------------------------------------------

func (p *Parser) parsePrimary() ast.NodeID {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokIntLiteral, lexer.TokUintLiteral, lexer.TokFloatLiteral, lexer.TokTrue, lexer.TokFalse:
		p.advance()
		c, err := literalValue(tok)
		if errors.Is(err, errLiteralTooBig) {
			p.failAt(tok, fmt.Sprintf("'%s' : %v", tok.Value, err))
		}
		if err != nil {
			p.failAt(tok, fmt.Sprintf("'%s' : invalid literal", tok.Value))
		}
		return p.constant(c, tok.Line)

	case lexer.TokLParen:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.TokRParen)
		return expr

	case lexer.TokIdent:
		p.advance()
		if p.current().Kind == lexer.TokLParen {
			return p.parseCall(tok)
		}
		return p.parseIdentifier(tok)

	case lexer.TokError:
		p.failAt(tok, tok.Value)
	}
	p.fail(fmt.Sprintf("syntax error: unexpected %s", describe(tok)))
	return ast.NoNode
}

func (p *Parser) constant(c ast.Constant, line int) ast.NodeID {
	return p.add(ast.Node{
		Kind:  ast.KindConstant,
		Value: c,
		Shape: ast.ScalarOf(c.Basic),
		Line:  line,
	})
}

func (p *Parser) intConstant(v int64, line int) ast.NodeID {
	return p.constant(ast.Constant{Basic: ast.Int, Int: v}, line)
}

func (p *Parser) parseIdentifier(tok lexer.Token) ast.NodeID {
	if c, ok := p.macros[tok.Value]; ok {
		return p.constant(c, tok.Line)
	}
	v := p.scope.lookup(tok.Value)
	if v == nil {
		p.failAt(tok, fmt.Sprintf("'%s' : undeclared identifier", tok.Value))
	}
	if v.constant != nil {
		return p.constant(*v.constant, tok.Line)
	}
	return p.add(ast.Node{
		Kind:  ast.KindSymbol,
		Name:  v.name,
		Shape: v.shape,
		Line:  tok.Line,
	})
}

func (p *Parser) parseArguments() []ast.NodeID {
	p.expect(lexer.TokLParen)
	var args []ast.NodeID
	if p.current().Kind == lexer.TokIdent && p.current().Value == "void" && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
	}
	for p.current().Kind != lexer.TokRParen {
		if len(args) > 0 {
			p.expect(lexer.TokComma)
		}
		args = append(args, p.parseAssignment())
	}
	p.expect(lexer.TokRParen)
	return args
}

func (p *Parser) shapesOf(ids []ast.NodeID) []ast.Shape {
	shapes := make([]ast.Shape, len(ids))
	for i, id := range ids {
		shapes[i] = p.tree.Node(id).Shape
	}
	return shapes
}

// parseCall handles constructors, built-in calls and user function calls.
func (p *Parser) parseCall(nameTok lexer.Token) ast.NodeID {
	name := nameTok.Value
	args := p.parseArguments()
	shapes := p.shapesOf(args)

	if p.isTypeName(name) {
		shape := builtinTypes[name]
		if s, ok := p.structs[name]; ok {
			shape = ast.Shape{Basic: ast.Struct, TypeName: s.name}
		}
		p.checkConstructor(nameTok, shape, shapes)
		return p.add(ast.Node{
			Kind:     ast.KindAggregate,
			Op:       ast.OpConstruct,
			Shape:    shape,
			Line:     nameTok.Line,
			Children: args,
		})
	}

	if fn, ok := builtinFuncs[name]; ok {
		if len(args) < fn.minArgs || len(args) > fn.maxArgs {
			p.failAt(nameTok, fmt.Sprintf("'%s' : no matching overloaded function found", name))
		}
		for _, s := range shapes {
			if s.Basic == ast.Void {
				p.failAt(nameTok, fmt.Sprintf("'%s' : no matching overloaded function found", name))
			}
		}
		shape := fn.result(shapes)
		if len(args) == 1 {
			return p.add(ast.Node{
				Kind:     ast.KindUnary,
				Op:       ast.OpBuiltin,
				Name:     name,
				Shape:    shape,
				Line:     nameTok.Line,
				Children: args,
			})
		}
		return p.add(ast.Node{
			Kind:     ast.KindAggregate,
			Op:       ast.OpBuiltin,
			Name:     name,
			Shape:    shape,
			Line:     nameTok.Line,
			Children: args,
		})
	}

	overloads, ok := p.functions[name]
	if !ok {
		if p.scope.lookup(name) != nil {
			p.failAt(nameTok, fmt.Sprintf("'%s' : function name expected", name))
		}
		p.failAt(nameTok, fmt.Sprintf("'%s' : no matching overloaded function found", name))
	}
	decl := resolveOverload(overloads, shapes)
	if decl == nil {
		p.failAt(nameTok, fmt.Sprintf("'%s' : no matching overloaded function found", signatureOf(name, shapes)))
	}

	return p.add(ast.Node{
		Kind:      ast.KindAggregate,
		Op:        ast.OpFunctionCall,
		Name:      decl.name,
		Signature: decl.signature,
		Shape:     decl.ret,
		Line:      nameTok.Line,
		Children:  args,
	})
}

// resolveOverload prefers an exact match, then the first overload the
// arguments convert to.
func resolveOverload(overloads []*funcDecl, args []ast.Shape) *funcDecl {
	var converted *funcDecl
	for _, decl := range overloads {
		if len(decl.params) != len(args) {
			continue
		}
		exact, ok := true, true
		for i, param := range decl.params {
			if !param.Equal(args[i]) {
				exact = false
				if !assignable(param, args[i]) {
					ok = false
					break
				}
			}
		}
		if exact {
			return decl
		}
		if ok && converted == nil {
			converted = decl
		}
	}
	return converted
}

func (p *Parser) checkConstructor(tok lexer.Token, target ast.Shape, args []ast.Shape) {
	if len(args) == 0 {
		p.failAt(tok, fmt.Sprintf("'%s' : constructor does not have any arguments", target))
	}

	if target.Basic == ast.Struct {
		decl := p.structs[target.TypeName]
		if len(args) != len(decl.fields) {
			p.failAt(tok, fmt.Sprintf("'%s' : Number of constructor parameters does not match the number of structure fields", target))
		}
		for i, f := range decl.fields {
			if !assignable(f.shape, args[i]) {
				p.failAt(tok, fmt.Sprintf("'%s' : cannot convert parameter %d from '%s' to '%s'", target, i+1, args[i], f.shape))
			}
		}
		return
	}

	if target.Elements() == 0 {
		p.failAt(tok, fmt.Sprintf("'%s' : cannot construct this type", target))
	}

	total := 0
	for i, a := range args {
		if a.Elements() == 0 {
			p.failAt(tok, fmt.Sprintf("'%s' : cannot convert parameter %d from '%s'", target, i+1, a))
		}
		if i > 0 && total >= target.Elements() {
			p.failAt(tok, fmt.Sprintf("'%s' : too many arguments", target))
		}
		total += a.Elements()
	}

	if len(args) == 1 && (args[0].IsScalar() || args[0].IsMatrix() && target.IsMatrix()) {
		return
	}
	if total < target.Elements() {
		p.failAt(tok, fmt.Sprintf("'%s' : not enough data provided for construction", target))
	}
}
