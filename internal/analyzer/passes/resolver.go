package passes

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"shadertune/internal/context"
)

// RecursionMode is the contract for call graphs that never fully resolve.
type RecursionMode string

const (
	// RecursionModeError fails the run and names one cycle.
	RecursionModeError RecursionMode = "error"
	// RecursionModePartial keeps partially aggregated costs and carries on.
	RecursionModePartial RecursionMode = "partial"
)

func ParseRecursionMode(s string) (RecursionMode, error) {
	switch RecursionMode(s) {
	case "", RecursionModeError:
		return RecursionModeError, nil
	case RecursionModePartial:
		return RecursionModePartial, nil
	}
	return "", fmt.Errorf("unknown recursion mode %q (want %s or %s)", s, RecursionModeError, RecursionModePartial)
}

// ErrRecursion is matched by every *RecursionError.
var ErrRecursion = errors.New("recursion unsupported")

// RecursionError reports a call cycle that stopped cost resolution.
type RecursionError struct {
	Cycle []string // first and last entries are the same function
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRecursion, strings.Join(e.Cycle, " -> "))
}

func (e *RecursionError) Unwrap() error {
	return ErrRecursion
}

// ResolverPass folds callee costs into their callers until every function
// with call sites has a total.
type ResolverPass struct {
	mode RecursionMode
}

func NewResolverPass(mode RecursionMode) *ResolverPass {
	if mode == "" {
		mode = RecursionModeError
	}
	return &ResolverPass{mode: mode}
}

func (p *ResolverPass) Name() string {
	return "Function Cost Resolver"
}

func (p *ResolverPass) Run(ctx *context.AnalysisContext) error {
	p.rawCosts(ctx)

	callers := make([]string, 0, len(ctx.Callers))
	for key, info := range ctx.CallGraph {
		if len(info.CallSites) == 0 {
			ctx.Resolved[key] = true
		} else {
			callers = append(callers, key)
		}
	}
	slices.Sort(callers)

	// Each productive pass resolves at least one caller.
	for pass := 0; pass <= len(callers); pass++ {
		progress := false
		for _, caller := range callers {
			if ctx.Resolved[caller] || !p.ready(ctx, caller) {
				continue
			}
			for _, site := range ctx.CallGraph[caller].CallSites {
				ctx.FunctionCost[caller] = context.AddCap(ctx.FunctionCost[caller], ctx.FunctionCost[site.Callee])
			}
			ctx.Resolved[caller] = true
			ctx.ResolveOrder = append(ctx.ResolveOrder, caller)
			progress = true
		}
		if !progress {
			break
		}
	}

	unresolved := lo.Filter(callers, func(key string, _ int) bool {
		return !ctx.Resolved[key]
	})
	if len(unresolved) == 0 || p.mode == RecursionModePartial {
		return nil
	}
	return &RecursionError{Cycle: findCycle(ctx, unresolved)}
}

// rawCosts sums width times multiplier over the nodes of each function.
func (p *ResolverPass) rawCosts(ctx *context.AnalysisContext) {
	for key := range ctx.CallGraph {
		ctx.FunctionCost[key] += 0
	}
	for id, fn := range ctx.FunctionOf {
		ctx.FunctionCost[fn] = context.AddCap(ctx.FunctionCost[fn], context.MulCap(ctx.WidthCost[id], ctx.LoopMultiplier[id]))
	}
	for key, cost := range ctx.FunctionCost {
		ctx.RawCost[key] = cost
	}
}

func (p *ResolverPass) ready(ctx *context.AnalysisContext, caller string) bool {
	for _, site := range ctx.CallGraph[caller].CallSites {
		if !ctx.Resolved[site.Callee] {
			return false
		}
	}
	return true
}

// findCycle runs a depth-first search over the unresolved functions and
// returns the first cycle found, closed with its starting function.
func findCycle(ctx *context.AnalysisContext, unresolved []string) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(key string, path []string) []string
	dfs = func(key string, path []string) []string {
		visited[key] = true
		onStack[key] = true
		path = append(path, key)

		for _, site := range ctx.CallGraph[key].CallSites {
			if ctx.Resolved[site.Callee] {
				continue
			}
			if onStack[site.Callee] {
				return extractCycle(path, site.Callee)
			}
			if !visited[site.Callee] {
				if cycle := dfs(site.Callee, path); cycle != nil {
					return cycle
				}
			}
		}

		onStack[key] = false
		return nil
	}

	for _, key := range unresolved {
		if visited[key] {
			continue
		}
		if cycle := dfs(key, nil); cycle != nil {
			return cycle
		}
	}
	return unresolved
}

func extractCycle(path []string, start string) []string {
	for i, key := range path {
		if key == start {
			cycle := slices.Clone(path[i:])
			return append(cycle, start)
		}
	}
	return append(path, start)
}
