package passes

import (
	"shadertune/internal/ast"
	"shadertune/internal/context"
)

// WidthPass assigns every counted node the number of scalar lanes it
// touches.
type WidthPass struct{}

func NewWidthPass() *WidthPass {
	return &WidthPass{}
}

func (p *WidthPass) Name() string {
	return "Width Cost Pass"
}

func (p *WidthPass) Run(ctx *context.AnalysisContext) error {
	tree := ctx.Tree
	tree.PostOrder(func(id ast.NodeID, n *ast.Node) {
		if !n.Counted() {
			return
		}

		switch n.Kind {
		case ast.KindSymbol, ast.KindConstant:
			ctx.WidthCost[id] = n.Shape.Elements()

		case ast.KindAggregate:
			// calls are costed through the callee
			if n.IsCall() {
				return
			}
			ctx.WidthCost[id] = n.Shape.Elements()

		case ast.KindBinary:
			ctx.WidthCost[id] = binaryWidth(ctx, n)

		case ast.KindUnary:
			ctx.WidthCost[id] = ctx.WidthCost[n.Operand()]
		}
	})
	return nil
}

func binaryWidth(ctx *context.AnalysisContext, n *ast.Node) int {
	tree := ctx.Tree
	left, right := n.Left(), n.Right()

	switch n.Op {
	case ast.OpVectorSwizzle:
		if right.Valid() {
			if sel := tree.Node(right); sel.Kind == ast.KindAggregate {
				return len(sel.Children)
			}
		}
	case ast.OpIndexDirect:
		if left.Valid() {
			return tree.Node(left).Shape.ElementSize()
		}
		return 0
	}

	return max(widthOf(ctx, left), widthOf(ctx, right))
}

func widthOf(ctx *context.AnalysisContext, id ast.NodeID) int {
	if !id.Valid() {
		return 0
	}
	return ctx.WidthCost[id]
}
