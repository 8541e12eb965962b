package passes

import (
	"fmt"

	"shadertune/internal/ast"
	"shadertune/internal/context"
)

// NestingPolicy decides how the bound of a loop combines with the bounds of
// the loops around it.
type NestingPolicy string

const (
	// NestingAdditive sums the bounds of active loops: 10 inside 20 is 30.
	NestingAdditive NestingPolicy = "additive"
	// NestingMultiplicative multiplies non-zero bounds: 10 inside 20 is 200.
	NestingMultiplicative NestingPolicy = "multiplicative"
)

// ParseNestingPolicy validates a policy name. The empty string selects the
// additive default.
func ParseNestingPolicy(s string) (NestingPolicy, error) {
	switch NestingPolicy(s) {
	case "", NestingAdditive:
		return NestingAdditive, nil
	case NestingMultiplicative:
		return NestingMultiplicative, nil
	}
	return "", fmt.Errorf("unknown loop nesting policy %q (want %s or %s)", s, NestingAdditive, NestingMultiplicative)
}

// Combine folds a loop bound into the active value of the enclosing loops,
// saturating at math.MaxInt.
func (p NestingPolicy) Combine(active, bound int) int {
	if p == NestingMultiplicative {
		switch {
		case bound == 0:
			return active
		case active == 0:
			return bound
		default:
			return context.MulCap(active, bound)
		}
	}
	return context.AddCap(active, bound)
}

// LoopPass assigns every operation node the execution multiplier of the
// loops enclosing it.
type LoopPass struct {
	policy NestingPolicy
}

func NewLoopPass(policy NestingPolicy) *LoopPass {
	if policy == "" {
		policy = NestingAdditive
	}
	return &LoopPass{policy: policy}
}

func (p *LoopPass) Name() string {
	return "Loop Multiplier Pass"
}

func (p *LoopPass) Run(ctx *context.AnalysisContext) error {
	if ctx.Tree.Root.Valid() {
		p.walk(ctx, ctx.Tree.Root, 0, 0)
	}
	return nil
}

// walk threads the active value down the tree; leaving a loop restores the
// outer value by returning.
func (p *LoopPass) walk(ctx *context.AnalysisContext, id ast.NodeID, active, depth int) {
	tree := ctx.Tree
	n := tree.Node(id)

	if n.Kind == ast.KindLoop {
		bound, boundType := LoopBound(tree, n)
		inner := p.policy.Combine(active, bound)
		ctx.LoopContext[id] = &context.LoopInfo{
			LoopNode:   id,
			Line:       n.Line,
			BoundType:  boundType,
			Bound:      bound,
			Depth:      depth + 1,
			Multiplier: effective(inner),
		}
		for _, c := range tree.Children(id) {
			p.walk(ctx, c, inner, depth+1)
		}
		return
	}

	if n.Kind.IsOperation() {
		ctx.LoopMultiplier[id] = effective(active)
	}
	for _, c := range tree.Children(id) {
		p.walk(ctx, c, active, depth)
	}
}

func effective(active int) int {
	if active == 0 {
		return 1
	}
	return active
}

// LoopBound returns the static trip count of a loop. Only a "<" test whose
// right operand is an int literal is understood; anything else is 0.
func LoopBound(tree *ast.Tree, loop *ast.Node) (int, context.LoopBoundType) {
	if !loop.Test.Valid() {
		return 0, context.BoundUnknown
	}
	test := tree.Node(loop.Test)
	if test.Kind != ast.KindBinary || test.Op != ast.OpLessThan || !test.Right().Valid() {
		return 0, context.BoundUnknown
	}
	right := tree.Node(test.Right())
	if right.Kind != ast.KindConstant || right.Value.Basic != ast.Int {
		return 0, context.BoundUnknown
	}
	return max(int(right.Value.Int), 0), context.BoundConstant
}
