package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadertune/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, errs := Parse(src)
	require.Empty(t, errs, "unexpected parse errors")
	require.NotNil(t, tree)
	return tree
}

func parseError(t *testing.T, src string) ParseError {
	t.Helper()
	tree, errs := Parse(src)
	require.Nil(t, tree)
	require.Len(t, errs, 1)
	return errs[0]
}

// collect returns every reachable node matching pred, in post-order.
func collect(tree *ast.Tree, pred func(*ast.Node) bool) []*ast.Node {
	var out []*ast.Node
	tree.PostOrder(func(_ ast.NodeID, n *ast.Node) {
		if pred(n) {
			out = append(out, n)
		}
	})
	return out
}

func withOp(op ast.Op) func(*ast.Node) bool {
	return func(n *ast.Node) bool {
		return n.Kind.IsOperation() && n.Op == op
	}
}

func TestGlobalInitializer(t *testing.T) {
	tree := mustParse(t, "float x = 1.0 + 2.0;\n")

	adds := collect(tree, withOp(ast.OpAdd))
	require.Len(t, adds, 1)
	assert.Equal(t, ast.ScalarOf(ast.Float), adds[0].Shape)
	assert.Equal(t, 1, adds[0].Line)

	assigns := collect(tree, withOp(ast.OpAssign))
	require.Len(t, assigns, 1)
	assert.Equal(t, 1, assigns[0].Line)

	linker := collect(tree, func(n *ast.Node) bool { return n.Op == ast.OpLinkerObjects })
	require.Len(t, linker, 1)
	assert.Len(t, linker[0].Children, 1)
}

func TestForLoopLayout(t *testing.T) {
	src := `vec4 v;
uniform vec4 w;
void main() {
    for (int i = 0; i < 10; i++) {
        v = v + w;
    }
}
`
	tree := mustParse(t, src)

	loops := collect(tree, func(n *ast.Node) bool { return n.Kind == ast.KindLoop })
	require.Len(t, loops, 1)
	loop := loops[0]

	test := tree.Node(loop.Test)
	assert.Equal(t, ast.OpLessThan, test.Op)
	right := tree.Node(test.Right())
	assert.Equal(t, ast.KindConstant, right.Kind)
	assert.Equal(t, int64(10), right.Value.Int)

	assert.Equal(t, ast.OpPostIncrement, tree.Node(loop.Terminal).Op)

	adds := collect(tree, withOp(ast.OpAdd))
	require.Len(t, adds, 1)
	assert.Equal(t, ast.VectorOf(ast.Float, 4), adds[0].Shape)
	assert.Equal(t, 5, adds[0].Line)

	// the initializer sits beside the loop, not inside it
	seqs := collect(tree, func(n *ast.Node) bool {
		return n.Kind == ast.KindSequence && len(n.Children) == 2 && n.Children[1] == loopID(tree)
	})
	require.Len(t, seqs, 1)
	assert.Equal(t, ast.OpAssign, tree.Node(seqs[0].Children[0]).Op)
}

func loopID(tree *ast.Tree) ast.NodeID {
	found := ast.NoNode
	tree.PostOrder(func(id ast.NodeID, n *ast.Node) {
		if n.Kind == ast.KindLoop {
			found = id
		}
	})
	return found
}

func TestSwizzleShapes(t *testing.T) {
	src := `void main() {
    vec4 c = vec4(1.0);
    vec3 a = c.xyz;
    float b = c.w;
    vec2 d = c.rg;
}
`
	tree := mustParse(t, src)

	swizzles := collect(tree, withOp(ast.OpVectorSwizzle))
	require.Len(t, swizzles, 2)
	assert.Equal(t, ast.VectorOf(ast.Float, 3), swizzles[0].Shape)
	selector := tree.Node(swizzles[0].Right())
	assert.Equal(t, ast.OpSwizzleSelector, selector.Op)
	assert.Len(t, selector.Children, 3)

	// single component swizzles are direct indexes
	indexes := collect(tree, withOp(ast.OpIndexDirect))
	require.Len(t, indexes, 1)
	assert.Equal(t, ast.ScalarOf(ast.Float), indexes[0].Shape)
	assert.Equal(t, int64(3), tree.Node(indexes[0].Right()).Value.Int)
}

func TestBuiltinsAndConstructors(t *testing.T) {
	src := `uniform sampler2D tex;
void main() {
    vec2 uv = vec2(0.5, 0.5);
    float l = length(uv);
    vec4 c = texture2D(tex, uv);
    vec3 m = mix(c.rgb, vec3(1.0), 0.5);
}
`
	tree := mustParse(t, src)

	builtins := collect(tree, func(n *ast.Node) bool { return n.Op == ast.OpBuiltin })
	require.Len(t, builtins, 3)

	assert.Equal(t, ast.KindUnary, builtins[0].Kind)
	assert.Equal(t, "length", builtins[0].Name)
	assert.Equal(t, ast.ScalarOf(ast.Float), builtins[0].Shape)

	assert.Equal(t, ast.KindAggregate, builtins[1].Kind)
	assert.Equal(t, "texture2D", builtins[1].Name)
	assert.Equal(t, ast.VectorOf(ast.Float, 4), builtins[1].Shape)

	assert.Equal(t, "mix", builtins[2].Name)
	assert.Equal(t, ast.VectorOf(ast.Float, 3), builtins[2].Shape)

	constructs := collect(tree, withOp(ast.OpConstruct))
	assert.Len(t, constructs, 2)
}

func TestMatrixProducts(t *testing.T) {
	src := `uniform mat4 mvp;
uniform mat3 n;
attribute vec4 pos;
void main() {
    gl_Position = mvp * pos;
    mat3 m = n * n;
    vec3 r = vec3(1.0) * n;
}
`
	tree := mustParse(t, src)

	muls := collect(tree, withOp(ast.OpMul))
	require.Len(t, muls, 3)
	assert.Equal(t, ast.VectorOf(ast.Float, 4), muls[0].Shape)
	assert.Equal(t, ast.MatrixOf(3, 3), muls[1].Shape)
	assert.Equal(t, ast.VectorOf(ast.Float, 3), muls[2].Shape)
}

func TestFunctionCalls(t *testing.T) {
	src := `float f(vec3 a, float b);
float f(float a) { return a * 2.0; }
float f(vec3 a, float b) { return a.x * b; }
void main() {
    float x = f(1.0) + f(vec3(1.0), 2.0);
}
`
	tree := mustParse(t, src)

	fns := collect(tree, func(n *ast.Node) bool { return n.Kind == ast.KindFunction })
	require.Len(t, fns, 3)
	assert.Equal(t, "f(float)", fns[0].Signature)
	assert.Equal(t, "f(vec3,float)", fns[1].Signature)
	assert.Equal(t, "main()", fns[2].Signature)

	calls := collect(tree, func(n *ast.Node) bool { return n.IsCall() })
	require.Len(t, calls, 2)
	assert.Equal(t, "f", calls[0].Name)
	assert.Equal(t, "f(float)", calls[0].Signature)
	assert.Equal(t, "f(vec3,float)", calls[1].Signature)
}

func TestConstantFolding(t *testing.T) {
	src := `#version 100
#define COUNT 8
const int N = 4;
const float SCALE = 2;
void main() {
    float acc = 0.0;
    for (int i = 0; i < COUNT; i++) { acc += SCALE; }
    for (int j = 0; j < N; j++) { acc -= 1.0; }
    for (int k = 0; k < -3; k++) { acc *= 0.5; }
}
`
	tree := mustParse(t, src)

	var bounds []ast.Constant
	tree.PostOrder(func(_ ast.NodeID, n *ast.Node) {
		if n.Kind == ast.KindLoop {
			bounds = append(bounds, tree.Node(tree.Node(n.Test).Right()).Value)
		}
	})
	require.Len(t, bounds, 3)
	assert.Equal(t, int64(8), bounds[0].Int)
	assert.Equal(t, int64(4), bounds[1].Int)
	assert.Equal(t, int64(-3), bounds[2].Int)

	adds := collect(tree, withOp(ast.OpAddAssign))
	require.Len(t, adds, 1)
	scale := tree.Node(adds[0].Right())
	assert.Equal(t, ast.KindConstant, scale.Kind)
	assert.Equal(t, ast.Float, scale.Value.Basic)
	assert.InDelta(t, 2.0, scale.Value.Float, 1e-9)
}

func TestStructsAndArrays(t *testing.T) {
	src := `struct Light {
    vec3 color;
    float power;
};
uniform Light lights[4];
void main() {
    vec3 total = vec3(0.0);
    for (int i = 0; i < 4; i++) {
        total += lights[i].color * lights[i].power;
    }
    Light l = Light(vec3(1.0), 2.0);
}
`
	tree := mustParse(t, src)

	fields := collect(tree, withOp(ast.OpIndexDirectStruct))
	require.Len(t, fields, 2)
	assert.Equal(t, ast.VectorOf(ast.Float, 3), fields[0].Shape)
	assert.Equal(t, ast.ScalarOf(ast.Float), fields[1].Shape)

	indirect := collect(tree, withOp(ast.OpIndexIndirect))
	require.Len(t, indirect, 2)
	assert.Equal(t, "Light", indirect[0].Shape.TypeName)
}

func TestControlFlow(t *testing.T) {
	src := `uniform float t;
void main() {
    float x = t > 0.5 ? 1.0 : 0.0;
    if (x == 1.0) {
        discard;
    } else {
        x = -x;
    }
    int n = 0;
    do { n++; } while (n < 3);
    while (x < 2.0) x += 1.0;
}
`
	tree := mustParse(t, src)

	selections := collect(tree, func(n *ast.Node) bool { return n.Kind == ast.KindSelection })
	assert.Len(t, selections, 2)

	branches := collect(tree, func(n *ast.Node) bool { return n.Kind == ast.KindBranch })
	require.Len(t, branches, 1)
	assert.Equal(t, ast.OpDiscard, branches[0].Op)

	negates := collect(tree, withOp(ast.OpNegate))
	assert.Len(t, negates, 1)

	loops := collect(tree, func(n *ast.Node) bool { return n.Kind == ast.KindLoop })
	require.Len(t, loops, 2)
	assert.True(t, loops[0].DoWhile)
	assert.False(t, loops[1].DoWhile)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		line    int
		message string
	}{
		{"undeclared", "void main() {\n  x = 1.0;\n}", 2, "'x' : undeclared identifier"},
		{"bad swizzle", "void main() {\n  vec2 a = vec2(1.0);\n  float b = a.z;\n}", 3, "'z' : vector swizzle selection out of range or illegal"},
		{"type mismatch", "void main() {\n  vec3 a = vec2(1.0);\n}", 2, "'=' : cannot convert from 'vec2' to 'vec3'"},
		{"unknown function", "void main() {\n  float a = g(1.0);\n}", 2, "'g' : no matching overloaded function found"},
		{"missing semicolon", "void main() {\n  float a = 1.0\n}", 3, "expected ;, got }"},
		{"conditional directive", "#ifdef GL_ES\nvoid main() {}\n", 1, "preprocessor directive #ifdef is not supported"},
		{"const write", "const float k = 1.0;\nuniform float u;\nvoid main() {\n  u = 2.0;\n}", 4, "'=' : l-value required (can't modify a const or uniform 'u')"},
		{"non-bool condition", "void main() {\n  if (1.0) {}\n}", 2, "boolean expression expected"},
		{"literal too big", "void main() {\n  int a = 4294967296;\n}", 2, "'4294967296' : integer literal too big"},
		{"macro literal too big", "#define BIG 99999999999\nvoid main() {}\n", 1, "'99999999999' : integer literal too big"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := parseError(t, tc.src)
			assert.Equal(t, tc.line, err.Line)
			assert.Equal(t, tc.message, err.Message)
		})
	}
}

func TestIntegerLiteralRange(t *testing.T) {
	src := `void main() {
    int a = 2147483647;
    int b = 0xFFFFFFFF;
    uint c = 4294967295u;
}
`
	tree := mustParse(t, src)

	var values []ast.Constant
	tree.PostOrder(func(_ ast.NodeID, n *ast.Node) {
		if n.Kind == ast.KindConstant {
			values = append(values, n.Value)
		}
	})
	require.Len(t, values, 3)
	assert.Equal(t, int64(2147483647), values[0].Int)
	assert.Equal(t, int64(-1), values[1].Int, "int literals keep their 32-bit pattern")
	assert.Equal(t, ast.Uint, values[2].Basic)
	assert.Equal(t, int64(4294967295), values[2].Int)
}

func TestParseErrorFormat(t *testing.T) {
	err := ParseError{Message: "syntax error", Line: 3, Column: 7}
	assert.Equal(t, "3:7: syntax error", err.Error())
}
