package passes

import (
	"slices"

	"shadertune/internal/context"
)

// InvocationPass propagates execution counts from callers to callees.
type InvocationPass struct{}

func NewInvocationPass() *InvocationPass {
	return &InvocationPass{}
}

func (p *InvocationPass) Name() string {
	return "Invocation Counter"
}

// Run walks the processing order backwards so that every caller's count is
// final before it is pushed into its callees.
func (p *InvocationPass) Run(ctx *context.AnalysisContext) error {
	order := ProcessingOrder(ctx)

	for i := len(order) - 1; i >= 0; i-- {
		fn := order[i]
		info, ok := ctx.CallGraph[fn]
		if !ok {
			continue
		}
		count := ctx.Invocations(fn)
		ctx.InvocationCount[fn] = count
		for _, site := range info.CallSites {
			ctx.InvocationCount[site.Callee] = context.AddCap(ctx.InvocationCount[site.Callee],
				context.MulCap(ctx.LoopMultiplier[site.Node], count))
		}
	}
	return nil
}

// ProcessingOrder lists every function exactly once: callees that call
// nothing (sorted), then callers in the order they resolved, then any
// caller left unresolved by a cycle.
func ProcessingOrder(ctx *context.AnalysisContext) []string {
	seen := make(map[string]bool, len(ctx.CallGraph))
	var leaves []string
	for _, info := range ctx.CallGraph {
		for _, site := range info.CallSites {
			callee := site.Callee
			if seen[callee] || len(ctx.CallGraph[callee].CallSites) > 0 {
				continue
			}
			seen[callee] = true
			leaves = append(leaves, callee)
		}
	}
	slices.Sort(leaves)

	order := leaves
	for _, fn := range ctx.ResolveOrder {
		if !seen[fn] {
			seen[fn] = true
			order = append(order, fn)
		}
	}

	var rest []string
	for _, fn := range ctx.Callers {
		if !seen[fn] {
			seen[fn] = true
			rest = append(rest, fn)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
