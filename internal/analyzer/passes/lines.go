package passes

import (
	"shadertune/internal/ast"
	"shadertune/internal/context"
)

// LinePass sums node costs per source line.
type LinePass struct{}

func NewLinePass() *LinePass {
	return &LinePass{}
}

func (p *LinePass) Name() string {
	return "Line Cost Aggregator"
}

func (p *LinePass) Run(ctx *context.AnalysisContext) error {
	ctx.Tree.PostOrder(func(id ast.NodeID, n *ast.Node) {
		if !n.Kind.IsOperation() || !n.Counted() {
			return
		}
		// the call line is a key, the cost lands on the callee's lines
		if n.IsCall() {
			ctx.LineCosts[n.Line] += 0
			return
		}
		ctx.LineCosts[n.Line] = context.AddCap(ctx.LineCosts[n.Line], NodeCost(ctx, id))
	})
	return nil
}

// NodeCost is the contribution of one counted, non-call operation node.
func NodeCost(ctx *context.AnalysisContext, id ast.NodeID) int {
	weighted := context.MulCap(ctx.WidthCost[id], ctx.LoopMultiplier[id])
	return context.MulCap(weighted, ctx.Invocations(ctx.FunctionKey(id)))
}
