package analyzer

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"

	"shadertune/internal/analyzer/passes"
	"shadertune/internal/ast"
	"shadertune/internal/config"
	"shadertune/internal/context"
	"shadertune/internal/models"
)

// EngineOptions selects the cost model variants.
type EngineOptions struct {
	Nesting   passes.NestingPolicy
	Identity  passes.FunctionIdentity
	Recursion passes.RecursionMode
	Logger    *slog.Logger
}

// Engine runs the cost passes over one tree at a time. It keeps no state
// between runs and is safe for concurrent use.
type Engine struct {
	passes []passes.Pass
	logger *slog.Logger
}

func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		passes: []passes.Pass{
			passes.NewWidthPass(),
			passes.NewLoopPass(opts.Nesting),
			passes.NewFunctionPass(opts.Identity),
			passes.NewResolverPass(opts.Recursion),
			passes.NewInvocationPass(),
			passes.NewLinePass(),
		},
		logger: logger,
	}
}

// NewEngineWithConfig builds an engine from the analysis section of cfg.
func NewEngineWithConfig(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	nesting, err := passes.ParseNestingPolicy(cfg.Analysis.LoopNesting)
	if err != nil {
		return nil, err
	}
	identity, err := passes.ParseFunctionIdentity(cfg.Analysis.FunctionIdentity)
	if err != nil {
		return nil, err
	}
	recursion, err := passes.ParseRecursionMode(cfg.Analysis.Recursion)
	if err != nil {
		return nil, err
	}
	return NewEngine(EngineOptions{
		Nesting:   nesting,
		Identity:  identity,
		Recursion: recursion,
		Logger:    logger,
	}), nil
}

// Run executes every pass in order and returns the filled context.
func (e *Engine) Run(tree *ast.Tree) (*context.AnalysisContext, error) {
	ctx := context.New(tree)
	for _, pass := range e.passes {
		start := time.Now()
		if err := pass.Run(ctx); err != nil {
			e.logger.Debug("pass failed", "pass", pass.Name(), "error", err)
			return nil, err
		}
		e.logger.Debug("pass complete",
			"pass", pass.Name(),
			"nodes", tree.Len(),
			"duration", time.Since(start))
	}
	return ctx, nil
}

// Analyze runs the engine and summarizes the result for file name.
func (e *Engine) Analyze(name string, tree *ast.Tree) (*models.FileResult, error) {
	ctx, err := e.Run(tree)
	if err != nil {
		return nil, err
	}

	result := &models.FileResult{
		File:      name,
		LineCosts: models.LineCosts(ctx.LineCosts),
		Functions: functionSummaries(ctx),
		Loops:     loopSummaries(ctx),
	}
	result.TotalCost = result.LineCosts.Total()
	result.MaxCost = result.LineCosts.Max()

	e.logger.Debug("file analyzed",
		"file", name,
		"lines", len(result.LineCosts),
		"functions", len(result.Functions),
		"total_cost", result.TotalCost)
	return result, nil
}

// functionSummaries lists every function, most expensive first.
func functionSummaries(ctx *context.AnalysisContext) []models.FunctionSummary {
	// FunctionCost also holds top-level code, which has no call graph entry
	// unless it calls something.
	summaries := lo.MapToSlice(ctx.FunctionCost, func(key string, cost int) models.FunctionSummary {
		summary := models.FunctionSummary{
			Key:         key,
			Name:        key,
			RawCost:     ctx.RawCost[key],
			Cost:        cost,
			Invocations: ctx.Invocations(key),
			Resolved:    ctx.Resolved[key],
		}
		if info, ok := ctx.CallGraph[key]; ok {
			summary.Name = info.Name
			summary.Line = info.Line
			summary.Defined = info.Definition.Valid()
			summary.CallSites = len(info.CallSites)
		} else {
			summary.Resolved = true
		}
		return summary
	})
	slices.SortFunc(summaries, func(a, b models.FunctionSummary) int {
		if c := cmp.Compare(b.Total(), a.Total()); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return summaries
}

func loopSummaries(ctx *context.AnalysisContext) []models.LoopSummary {
	loops := lo.MapToSlice(ctx.LoopContext, func(_ ast.NodeID, info *context.LoopInfo) models.LoopSummary {
		return models.LoopSummary{
			Line:       info.Line,
			Bound:      info.Bound,
			BoundType:  info.BoundType.String(),
			Depth:      info.Depth,
			Multiplier: info.Multiplier,
		}
	})
	slices.SortFunc(loops, func(a, b models.LoopSummary) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Depth, b.Depth)
	})
	return loops
}
