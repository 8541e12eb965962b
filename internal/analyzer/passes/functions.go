package passes

import (
	"fmt"

	"shadertune/internal/ast"
	"shadertune/internal/context"
)

// FunctionIdentity selects how functions are keyed in the call graph.
type FunctionIdentity string

const (
	// IdentityName keys by bare name; overloads share one entry.
	IdentityName FunctionIdentity = "name"
	// IdentitySignature keys by name and parameter shapes, e.g. f(vec3,float).
	IdentitySignature FunctionIdentity = "signature"
)

func ParseFunctionIdentity(s string) (FunctionIdentity, error) {
	switch FunctionIdentity(s) {
	case "", IdentityName:
		return IdentityName, nil
	case IdentitySignature:
		return IdentitySignature, nil
	}
	return "", fmt.Errorf("unknown function identity %q (want %s or %s)", s, IdentityName, IdentitySignature)
}

// Key returns the call graph key of a function definition or call node.
func (i FunctionIdentity) Key(n *ast.Node) string {
	if i == IdentitySignature && n.Signature != "" {
		return n.Signature
	}
	return n.Name
}

// FunctionPass attributes operation nodes to their enclosing function and
// records the call sites of every function.
type FunctionPass struct {
	identity FunctionIdentity
}

func NewFunctionPass(identity FunctionIdentity) *FunctionPass {
	if identity == "" {
		identity = IdentityName
	}
	return &FunctionPass{identity: identity}
}

func (p *FunctionPass) Name() string {
	return "Function Attribution Pass"
}

func (p *FunctionPass) Run(ctx *context.AnalysisContext) error {
	if ctx.Tree.Root.Valid() {
		p.walk(ctx, ctx.Tree.Root, ast.NoFunction)
	}
	return nil
}

func (p *FunctionPass) walk(ctx *context.AnalysisContext, id ast.NodeID, fn string) {
	tree := ctx.Tree
	n := tree.Node(id)

	switch {
	case n.Kind == ast.KindFunction:
		key := p.identity.Key(n)
		info := ctx.Function(key)
		info.Name = n.Name
		info.Definition = id
		info.Line = n.Line
		fn = key

	case n.IsCall():
		callee := p.identity.Key(n)
		ctx.Function(callee).Name = n.Name

		caller := ctx.Function(fn)
		if len(caller.CallSites) == 0 {
			ctx.Callers = append(ctx.Callers, fn)
		}
		caller.CallSites = append(caller.CallSites, context.CallSite{
			Callee: callee,
			Node:   id,
			Line:   n.Line,
		})
	}

	if n.Kind.IsOperation() {
		ctx.FunctionOf[id] = fn
	}
	for _, c := range tree.Children(id) {
		p.walk(ctx, c, fn)
	}
}
