package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeElements(t *testing.T) {
	cases := []struct {
		shape    Shape
		elements int
		elemSize int
		str      string
	}{
		{ScalarOf(Float), 1, 1, "float"},
		{VectorOf(Float, 2), 2, 1, "vec2"},
		{VectorOf(Int, 3), 3, 1, "ivec3"},
		{VectorOf(Bool, 4), 4, 1, "bvec4"},
		{MatrixOf(4, 4), 16, 4, "mat4"},
		{MatrixOf(2, 3), 6, 2, "mat2x3"},
		{Shape{Basic: Float, Rows: 1, Cols: 1, ArrayLen: 4}, 0, 0, "float[4]"},
		{Shape{Basic: Sampler, TypeName: "sampler2D"}, 0, 0, "sampler2D"},
		{VoidShape, 0, 0, "void"},
	}

	for _, tc := range cases {
		t.Run(tc.str, func(t *testing.T) {
			assert.Equal(t, tc.elements, tc.shape.Elements())
			assert.Equal(t, tc.elemSize, tc.shape.ElementSize())
			assert.Equal(t, tc.str, tc.shape.String())
		})
	}
}

func TestShapeElem(t *testing.T) {
	assert.Equal(t, ScalarOf(Float), VectorOf(Float, 4).Elem())
	assert.Equal(t, VectorOf(Float, 3), MatrixOf(4, 3).Elem())

	arr := VectorOf(Float, 3)
	arr.ArrayLen = 8
	assert.Equal(t, VectorOf(Float, 3), arr.Elem())
}

func TestOpCounted(t *testing.T) {
	uncounted := []Op{
		OpFunction, OpSequence, OpParameters, OpLinkerObjects, OpAssign,
		OpSwizzleSelector, OpEqual, OpNotEqual, OpLessThan, OpGreaterThan,
		OpLessThanEqual, OpGreaterThanEqual, OpLogicalAnd, OpLogicalOr,
		OpLogicalXor, OpComma,
	}
	for _, op := range uncounted {
		assert.False(t, op.Counted(), op.String())
	}

	counted := []Op{
		OpAdd, OpMul, OpAddAssign, OpFunctionCall, OpConstruct, OpBuiltin,
		OpVectorSwizzle, OpIndexDirect, OpNegate, OpPostIncrement,
	}
	for _, op := range counted {
		assert.True(t, op.Counted(), op.String())
	}
}

func TestTreeTraversal(t *testing.T) {
	tree := NewTree()
	a := tree.Add(Node{Kind: KindSymbol, Name: "a", Shape: ScalarOf(Float), Line: 1})
	b := tree.Add(Node{Kind: KindConstant, Value: Constant{Basic: Float, Float: 2}, Shape: ScalarOf(Float), Line: 1})
	add := tree.Add(Node{Kind: KindBinary, Op: OpAdd, Shape: ScalarOf(Float), Children: []NodeID{a, b}, Line: 1})
	body := tree.Add(Node{Kind: KindSequence, Op: OpSequence, Children: []NodeID{add}, Line: 1})
	loop := tree.Add(Node{Kind: KindLoop, Body: body, Test: NoNode, Terminal: NoNode, Line: 1})
	tree.Root = tree.Add(Node{Kind: KindSequence, Op: OpSequence, Children: []NodeID{loop}})

	var order []NodeID
	tree.PostOrder(func(id NodeID, n *Node) {
		order = append(order, id)
	})

	require.Equal(t, []NodeID{a, b, add, body, loop, tree.Root}, order)
	assert.Equal(t, a, tree.Node(add).Left())
	assert.Equal(t, b, tree.Node(add).Right())
	assert.Equal(t, NoNode, tree.Node(a).Left())
	assert.Equal(t, NoNode, tree.Node(a).Test, "non-loop nodes get NoNode loop fields")
}

func TestDoWhileVisitsBodyFirst(t *testing.T) {
	tree := NewTree()
	body := tree.Add(Node{Kind: KindSequence, Op: OpSequence})
	test := tree.Add(Node{Kind: KindBinary, Op: OpLessThan})
	loop := tree.Add(Node{Kind: KindLoop, Body: body, Test: test, Terminal: NoNode, DoWhile: true})

	assert.Equal(t, []NodeID{body, test}, tree.Children(loop))
}
