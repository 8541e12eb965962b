// Package context holds the per-run state shared by the cost passes.
package context

import (
	"shadertune/internal/ast"
)

// AnalysisContext provides the derived maps of one analysis run. Each pass
// fills its own maps and only reads the ones filled before it.
type AnalysisContext struct {
	Tree *ast.Tree

	WidthCost      map[ast.NodeID]int
	LoopMultiplier map[ast.NodeID]int
	LoopContext    map[ast.NodeID]*LoopInfo
	FunctionOf     map[ast.NodeID]string

	// CallGraph maps a function key to every function it defines or calls.
	CallGraph map[string]*CallInfo
	Callers   []string // keys with at least one call site, in first-seen order

	RawCost         map[string]int // before callee costs are folded in
	FunctionCost    map[string]int
	Resolved        map[string]bool
	ResolveOrder    []string
	InvocationCount map[string]int

	LineCosts map[int]int
}

// CallInfo describes one function key in the call graph.
type CallInfo struct {
	Key        string
	Name       string
	Definition ast.NodeID // NoNode when only declared or never declared
	Line       int
	CallSites  []CallSite
}

// CallSite is one call from the owning function to Callee.
type CallSite struct {
	Callee string
	Node   ast.NodeID
	Line   int
}

// LoopInfo records the static bound the loop pass derived for a loop.
type LoopInfo struct {
	LoopNode   ast.NodeID
	Line       int
	BoundType  LoopBoundType
	Bound      int
	Depth      int
	Multiplier int // active value inside the loop
}

type LoopBoundType int

const (
	BoundUnknown  LoopBoundType = iota
	BoundConstant               // for (int i = 0; i < 10; i++)
)

func (b LoopBoundType) String() string {
	if b == BoundConstant {
		return "constant"
	}
	return "unknown"
}

// New creates an empty context for tree.
func New(tree *ast.Tree) *AnalysisContext {
	return &AnalysisContext{
		Tree:            tree,
		WidthCost:       make(map[ast.NodeID]int),
		LoopMultiplier:  make(map[ast.NodeID]int),
		LoopContext:     make(map[ast.NodeID]*LoopInfo),
		FunctionOf:      make(map[ast.NodeID]string),
		CallGraph:       make(map[string]*CallInfo),
		RawCost:         make(map[string]int),
		FunctionCost:    make(map[string]int),
		Resolved:        make(map[string]bool),
		InvocationCount: make(map[string]int),
		LineCosts:       make(map[int]int),
	}
}

// Function returns the call graph entry for key, creating it if needed.
func (c *AnalysisContext) Function(key string) *CallInfo {
	info, ok := c.CallGraph[key]
	if !ok {
		info = &CallInfo{Key: key, Name: key, Definition: ast.NoNode}
		c.CallGraph[key] = info
	}
	return info
}

// Invocations returns the invocation count of key; unset counts are 1.
func (c *AnalysisContext) Invocations(key string) int {
	if n, ok := c.InvocationCount[key]; ok {
		return n
	}
	return 1
}

// FunctionKey returns the function id is attributed to; nodes outside any
// function map to ast.NoFunction.
func (c *AnalysisContext) FunctionKey(id ast.NodeID) string {
	if key, ok := c.FunctionOf[id]; ok {
		return key
	}
	return ast.NoFunction
}
