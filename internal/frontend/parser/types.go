package parser

import (
	"strings"

	"shadertune/internal/ast"
)

// ----------------------------------------------------------------------------
// Type Names
// ----------------------------------------------------------------------------

var builtinTypes = map[string]ast.Shape{
	"void":  ast.VoidShape,
	"float": ast.ScalarOf(ast.Float),
	"int":   ast.ScalarOf(ast.Int),
	"uint":  ast.ScalarOf(ast.Uint),
	"bool":  ast.ScalarOf(ast.Bool),

	"vec2": ast.VectorOf(ast.Float, 2), "vec3": ast.VectorOf(ast.Float, 3), "vec4": ast.VectorOf(ast.Float, 4),
	"ivec2": ast.VectorOf(ast.Int, 2), "ivec3": ast.VectorOf(ast.Int, 3), "ivec4": ast.VectorOf(ast.Int, 4),
	"uvec2": ast.VectorOf(ast.Uint, 2), "uvec3": ast.VectorOf(ast.Uint, 3), "uvec4": ast.VectorOf(ast.Uint, 4),
	"bvec2": ast.VectorOf(ast.Bool, 2), "bvec3": ast.VectorOf(ast.Bool, 3), "bvec4": ast.VectorOf(ast.Bool, 4),

	"mat2": ast.MatrixOf(2, 2), "mat3": ast.MatrixOf(3, 3), "mat4": ast.MatrixOf(4, 4),
	"mat2x2": ast.MatrixOf(2, 2), "mat2x3": ast.MatrixOf(2, 3), "mat2x4": ast.MatrixOf(2, 4),
	"mat3x2": ast.MatrixOf(3, 2), "mat3x3": ast.MatrixOf(3, 3), "mat3x4": ast.MatrixOf(3, 4),
	"mat4x2": ast.MatrixOf(4, 2), "mat4x3": ast.MatrixOf(4, 3), "mat4x4": ast.MatrixOf(4, 4),
}

var samplerTypes = []string{
	"sampler2D", "sampler3D", "samplerCube", "sampler2DShadow", "samplerCubeShadow",
	"sampler2DArray", "sampler2DArrayShadow", "isampler2D", "isampler3D",
	"isamplerCube", "usampler2D", "usampler3D", "usamplerCube", "samplerExternalOES",
}

func init() {
	for _, name := range samplerTypes {
		builtinTypes[name] = ast.Shape{Basic: ast.Sampler, TypeName: name}
	}
}

// ----------------------------------------------------------------------------
// Scopes
// ----------------------------------------------------------------------------

type variable struct {
	name  string
	shape ast.Shape
	readonly bool
	// set for const scalars with a literal initializer; uses fold to literals
	constant *ast.Constant
}

type scope struct {
	parent *scope
	vars   map[string]*variable
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*variable)}
}

func (s *scope) lookup(name string) *variable {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v
		}
	}
	return nil
}

type structField struct {
	name  string
	shape ast.Shape
}

type structDecl struct {
	name   string
	fields []structField
}

func (s *structDecl) field(name string) (int, *structField) {
	for i := range s.fields {
		if s.fields[i].name == name {
			return i, &s.fields[i]
		}
	}
	return -1, nil
}

type funcDecl struct {
	name      string
	signature string
	params    []ast.Shape
	ret       ast.Shape
	defined   bool
}

func signatureOf(name string, params []ast.Shape) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

var builtinVariables = map[string]ast.Shape{
	"gl_FragCoord":   ast.VectorOf(ast.Float, 4),
	"gl_FragColor":   ast.VectorOf(ast.Float, 4),
	"gl_FragDepth":   ast.ScalarOf(ast.Float),
	"gl_FrontFacing": ast.ScalarOf(ast.Bool),
	"gl_PointCoord":  ast.VectorOf(ast.Float, 2),
	"gl_Position":    ast.VectorOf(ast.Float, 4),
	"gl_PointSize":   ast.ScalarOf(ast.Float),
	"gl_VertexID":    ast.ScalarOf(ast.Int),
	"gl_InstanceID":  ast.ScalarOf(ast.Int),
	"gl_FragData":    {Basic: ast.Float, Rows: 4, Cols: 1, ArrayLen: 4},
}

// ----------------------------------------------------------------------------
// Built-in Functions
// ----------------------------------------------------------------------------

type builtinFunc struct {
	minArgs int
	maxArgs int
	result  func(args []ast.Shape) ast.Shape
}

func sameAs(i int) func([]ast.Shape) ast.Shape {
	return func(args []ast.Shape) ast.Shape {
		if i < 0 {
			return args[len(args)-1]
		}
		return args[i]
	}
}

func fixed(s ast.Shape) func([]ast.Shape) ast.Shape {
	return func([]ast.Shape) ast.Shape { return s }
}

func boolVectorOf(args []ast.Shape) ast.Shape {
	return ast.VectorOf(ast.Bool, args[0].Elements())
}

func intVectorOf(args []ast.Shape) ast.Shape {
	return ast.VectorOf(ast.Int, args[0].Elements())
}

func transposeOf(args []ast.Shape) ast.Shape {
	m := args[0]
	return ast.MatrixOf(int(m.Rows), int(m.Cols))
}

func outerProductOf(args []ast.Shape) ast.Shape {
	return ast.MatrixOf(args[1].Elements(), args[0].Elements())
}

var (
	float1 = ast.ScalarOf(ast.Float)
	vec3   = ast.VectorOf(ast.Float, 3)
	vec4   = ast.VectorOf(ast.Float, 4)
	ivec2  = ast.VectorOf(ast.Int, 2)
	bool1  = ast.ScalarOf(ast.Bool)
)

var builtinFuncs = map[string]builtinFunc{
	// Angle and trigonometry
	"radians": {1, 1, sameAs(0)}, "degrees": {1, 1, sameAs(0)},
	"sin": {1, 1, sameAs(0)}, "cos": {1, 1, sameAs(0)}, "tan": {1, 1, sameAs(0)},
	"asin": {1, 1, sameAs(0)}, "acos": {1, 1, sameAs(0)}, "atan": {1, 2, sameAs(0)},
	"sinh": {1, 1, sameAs(0)}, "cosh": {1, 1, sameAs(0)}, "tanh": {1, 1, sameAs(0)},

	// Exponential
	"pow": {2, 2, sameAs(0)}, "exp": {1, 1, sameAs(0)}, "log": {1, 1, sameAs(0)},
	"exp2": {1, 1, sameAs(0)}, "log2": {1, 1, sameAs(0)}, "sqrt": {1, 1, sameAs(0)},
	"inversesqrt": {1, 1, sameAs(0)},

	// Common
	"abs": {1, 1, sameAs(0)}, "sign": {1, 1, sameAs(0)}, "floor": {1, 1, sameAs(0)},
	"ceil": {1, 1, sameAs(0)}, "fract": {1, 1, sameAs(0)}, "trunc": {1, 1, sameAs(0)},
	"round": {1, 1, sameAs(0)}, "roundEven": {1, 1, sameAs(0)},
	"mod": {2, 2, sameAs(0)}, "min": {2, 2, sameAs(0)}, "max": {2, 2, sameAs(0)},
	"clamp": {3, 3, sameAs(0)}, "mix": {3, 3, sameAs(0)},
	"step": {2, 2, sameAs(-1)}, "smoothstep": {3, 3, sameAs(-1)},
	"floatBitsToInt": {1, 1, intVectorOf}, "isnan": {1, 1, boolVectorOf}, "isinf": {1, 1, boolVectorOf},

	// Geometric
	"length": {1, 1, fixed(float1)}, "distance": {2, 2, fixed(float1)},
	"dot": {2, 2, fixed(float1)}, "cross": {2, 2, fixed(vec3)},
	"normalize": {1, 1, sameAs(0)}, "faceforward": {3, 3, sameAs(0)},
	"reflect": {2, 2, sameAs(0)}, "refract": {3, 3, sameAs(0)},

	// Matrix
	"matrixCompMult": {2, 2, sameAs(0)}, "transpose": {1, 1, transposeOf},
	"inverse": {1, 1, sameAs(0)}, "determinant": {1, 1, fixed(float1)},
	"outerProduct": {2, 2, outerProductOf},

	// Vector relational
	"lessThan": {2, 2, boolVectorOf}, "lessThanEqual": {2, 2, boolVectorOf},
	"greaterThan": {2, 2, boolVectorOf}, "greaterThanEqual": {2, 2, boolVectorOf},
	"equal": {2, 2, boolVectorOf}, "notEqual": {2, 2, boolVectorOf},
	"any": {1, 1, fixed(bool1)}, "all": {1, 1, fixed(bool1)}, "not": {1, 1, sameAs(0)},

	// Derivatives
	"dFdx": {1, 1, sameAs(0)}, "dFdy": {1, 1, sameAs(0)}, "fwidth": {1, 1, sameAs(0)},

	// Texture lookup
	"texture2D": {2, 3, fixed(vec4)}, "texture2DProj": {2, 3, fixed(vec4)},
	"texture2DLod": {3, 3, fixed(vec4)}, "textureCube": {2, 3, fixed(vec4)},
	"textureCubeLod": {3, 3, fixed(vec4)}, "texture": {2, 3, fixed(vec4)},
	"textureLod": {3, 3, fixed(vec4)}, "textureProj": {2, 3, fixed(vec4)},
	"textureGrad": {4, 4, fixed(vec4)}, "texelFetch": {3, 3, fixed(vec4)},
	"textureOffset": {3, 4, fixed(vec4)}, "textureSize": {2, 2, fixed(ivec2)},
}
