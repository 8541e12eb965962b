package ast

import "fmt"

// Basic is the element type of a shape.
type Basic uint8

const (
	Void Basic = iota
	Float
	Int
	Uint
	Bool
	Sampler
	Struct
)

var basicNames = [...]string{
	Void:    "void",
	Float:   "float",
	Int:     "int",
	Uint:    "uint",
	Bool:    "bool",
	Sampler: "sampler",
	Struct:  "struct",
}

func (b Basic) String() string {
	if int(b) < len(basicNames) {
		return basicNames[b]
	}
	return "unknown"
}

// Shape describes the data a typed node produces. Vectors have Cols == 1 and
// Rows == width; matrices have both above one. Arrays, structs, samplers and
// void are opaque to the cost model.
type Shape struct {
	Basic    Basic
	Rows     uint8
	Cols     uint8
	ArrayLen int    // > 0 for sized arrays
	TypeName string // struct or sampler type name
}

// ScalarOf returns a scalar shape.
func ScalarOf(b Basic) Shape {
	return Shape{Basic: b, Rows: 1, Cols: 1}
}

// VectorOf returns a vector shape of the given width (1 yields a scalar).
func VectorOf(b Basic, n int) Shape {
	return Shape{Basic: b, Rows: uint8(n), Cols: 1}
}

// MatrixOf returns a cols x rows float matrix.
func MatrixOf(cols, rows int) Shape {
	return Shape{Basic: Float, Rows: uint8(rows), Cols: uint8(cols)}
}

// VoidShape is the shape of statements and void calls.
var VoidShape = Shape{Basic: Void}

func (s Shape) numeric() bool {
	return s.ArrayLen == 0 && (s.Basic == Float || s.Basic == Int || s.Basic == Uint || s.Basic == Bool)
}

// IsScalar reports whether s is a single numeric or boolean lane.
func (s Shape) IsScalar() bool {
	return s.numeric() && s.Rows == 1 && s.Cols == 1
}

// IsVector reports whether s is a vector of width 2 to 4.
func (s Shape) IsVector() bool {
	return s.numeric() && s.Cols == 1 && s.Rows > 1
}

// IsMatrix reports whether s is a matrix.
func (s Shape) IsMatrix() bool {
	return s.numeric() && s.Cols > 1 && s.Rows > 1
}

// IsArray reports whether s is a sized array.
func (s Shape) IsArray() bool {
	return s.ArrayLen > 0
}

// Elements is the number of scalar lanes of s: the vector width, rows*cols
// for a matrix, 1 for a scalar and 0 for anything opaque.
func (s Shape) Elements() int {
	switch {
	case s.IsVector():
		return int(s.Rows)
	case s.IsMatrix():
		return int(s.Rows) * int(s.Cols)
	case s.IsScalar():
		return 1
	default:
		return 0
	}
}

// ElementSize is the lane count of one indexed element: the column count for
// a matrix, 1 for vectors and scalars, 0 otherwise.
func (s Shape) ElementSize() int {
	switch {
	case s.IsMatrix():
		return int(s.Cols)
	case s.IsVector(), s.IsScalar():
		return 1
	default:
		return 0
	}
}

// Elem returns the shape of s[i].
func (s Shape) Elem() Shape {
	switch {
	case s.IsArray():
		e := s
		e.ArrayLen = 0
		return e
	case s.IsMatrix():
		return VectorOf(s.Basic, int(s.Rows))
	case s.IsVector():
		return ScalarOf(s.Basic)
	default:
		return VoidShape
	}
}

// Equal reports whether two shapes are interchangeable.
func (s Shape) Equal(o Shape) bool {
	return s == o
}

func (s Shape) String() string {
	var base string
	switch {
	case s.Basic == Struct || s.Basic == Sampler:
		base = s.TypeName
	case s.Basic == Void:
		base = "void"
	case s.Rows == 1 && s.Cols == 1:
		base = s.Basic.String()
	case s.Cols == 1:
		base = vectorPrefix(s.Basic) + fmt.Sprintf("vec%d", s.Rows)
	case s.Cols == s.Rows:
		base = fmt.Sprintf("mat%d", s.Cols)
	default:
		base = fmt.Sprintf("mat%dx%d", s.Cols, s.Rows)
	}
	if s.ArrayLen > 0 {
		return fmt.Sprintf("%s[%d]", base, s.ArrayLen)
	}
	return base
}

func vectorPrefix(b Basic) string {
	switch b {
	case Int:
		return "i"
	case Uint:
		return "u"
	case Bool:
		return "b"
	default:
		return ""
	}
}
