// Package ast defines the shader tree consumed by the cost engine.
//
// Nodes live in an arena owned by Tree and are addressed by NodeID. The tree
// is built once by the front-end and is read-only afterwards; every cost map
// produced by the engine is keyed by NodeID rather than by node value, so two
// structurally identical expressions never share an entry.
package ast

import "fmt"

// NodeID addresses a node inside a Tree.
type NodeID int32

// NoNode marks an absent child (a loop without a test, a bare return, ...).
const NoNode NodeID = -1

// Valid reports whether id refers to a node.
func (id NodeID) Valid() bool {
	return id >= 0
}

// NoFunction is the function key for nodes outside any function body.
const NoFunction = "(no_function)"

// ----------------------------------------------------------------------------
// Node kinds
// ----------------------------------------------------------------------------

// Kind is the closed set of node variants.
type Kind uint8

const (
	KindFunction  Kind = iota // function definition
	KindSequence              // statement list, parameter list, linker objects
	KindAggregate             // call, constructor, built-in, swizzle selector
	KindBinary
	KindUnary
	KindSymbol
	KindConstant
	KindLoop
	KindSelection // if/else and ?:
	KindBranch    // return, break, continue, discard
)

var kindNames = [...]string{
	KindFunction:  "function",
	KindSequence:  "sequence",
	KindAggregate: "aggregate",
	KindBinary:    "binary",
	KindUnary:     "unary",
	KindSymbol:    "symbol",
	KindConstant:  "constant",
	KindLoop:      "loop",
	KindSelection: "selection",
	KindBranch:    "branch",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsOperation reports whether nodes of this kind carry an operator tag that
// the cost passes look at.
func (k Kind) IsOperation() bool {
	return k == KindAggregate || k == KindBinary || k == KindUnary
}

// ----------------------------------------------------------------------------
// Node
// ----------------------------------------------------------------------------

// Node is one element of the tree. Which fields are meaningful depends on
// Kind:
//
//	KindFunction   Name, Signature, Children = [parameters, body]
//	KindSequence   Op, Children
//	KindAggregate  Op, Shape, Children (arguments); Name/Signature for calls
//	KindBinary     Op, Shape, Children = [left, right]
//	KindUnary      Op, Shape, Children = [operand]; Name for built-ins
//	KindSymbol     Name, Shape
//	KindConstant   Value, Shape
//	KindLoop       Test, Body, Terminal, DoWhile
//	KindSelection  Shape, Children = [cond, then, else?]
//	KindBranch     Op, Children = [value?]
type Node struct {
	Kind      Kind
	Op        Op
	Line      int
	Shape     Shape
	Name      string
	Signature string
	Value     Constant
	Children  []NodeID

	Test     NodeID
	Body     NodeID
	Terminal NodeID
	DoWhile  bool
}

// Left returns the left operand of a binary node.
func (n *Node) Left() NodeID {
	return n.child(0)
}

// Right returns the right operand of a binary node.
func (n *Node) Right() NodeID {
	return n.child(1)
}

// Operand returns the operand of a unary node.
func (n *Node) Operand() NodeID {
	return n.child(0)
}

func (n *Node) child(i int) NodeID {
	if i < len(n.Children) {
		return n.Children[i]
	}
	return NoNode
}

// IsCall reports whether n is a call to a user-defined function.
func (n *Node) IsCall() bool {
	return n.Kind == KindAggregate && n.Op == OpFunctionCall
}

// Counted reports whether the width pass assigns n a cost.
func (n *Node) Counted() bool {
	switch n.Kind {
	case KindSymbol, KindConstant:
		return true
	case KindAggregate, KindBinary, KindUnary:
		return n.Op.Counted()
	default:
		return false
	}
}

// ----------------------------------------------------------------------------
// Constants
// ----------------------------------------------------------------------------

// Constant is the value of a literal node.
type Constant struct {
	Basic Basic
	Int   int64
	Float float64
	Bool  bool
}

func (c Constant) String() string {
	switch c.Basic {
	case Int:
		return fmt.Sprintf("%d", c.Int)
	case Uint:
		return fmt.Sprintf("%du", c.Int)
	case Float:
		return fmt.Sprintf("%g", c.Float)
	case Bool:
		return fmt.Sprintf("%t", c.Bool)
	default:
		return "?"
	}
}

// ----------------------------------------------------------------------------
// Tree
// ----------------------------------------------------------------------------

// Tree is the arena holding every node of one shader.
type Tree struct {
	nodes []Node
	Root  NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes: make([]Node, 0, 256),
		Root:  NoNode,
	}
}

// Add appends a node and returns its id. Only the front-end calls Add.
func (t *Tree) Add(n Node) NodeID {
	if n.Kind != KindLoop {
		n.Test, n.Body, n.Terminal = NoNode, NoNode, NoNode
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Children returns the ids visited below id, in traversal order. For loops
// that is test, body, terminal (skipping absent parts), matching the order a
// loop executes them.
func (t *Tree) Children(id NodeID) []NodeID {
	n := &t.nodes[id]
	if n.Kind != KindLoop {
		return n.Children
	}
	out := make([]NodeID, 0, 3)
	if n.DoWhile {
		out = appendValid(out, n.Body, n.Test, n.Terminal)
	} else {
		out = appendValid(out, n.Test, n.Body, n.Terminal)
	}
	return out
}

func appendValid(out []NodeID, ids ...NodeID) []NodeID {
	for _, id := range ids {
		if id.Valid() {
			out = append(out, id)
		}
	}
	return out
}

// PostOrder calls fn for every node reachable from the root, children before
// parents.
func (t *Tree) PostOrder(fn func(id NodeID, n *Node)) {
	if !t.Root.Valid() {
		return
	}
	t.postOrder(t.Root, fn)
}

func (t *Tree) postOrder(id NodeID, fn func(NodeID, *Node)) {
	for _, c := range t.Children(id) {
		t.postOrder(c, fn)
	}
	fn(id, &t.nodes[id])
}
